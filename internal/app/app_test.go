package app

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/orbit/internal/concept"
	"github.com/abhisek/orbit/internal/config"
	"github.com/abhisek/orbit/internal/progress"
	"github.com/abhisek/orbit/internal/router"
	"github.com/abhisek/orbit/internal/screens/common"
	"github.com/abhisek/orbit/internal/screens/detail"
	"github.com/abhisek/orbit/internal/screens/explorer"
	"github.com/abhisek/orbit/internal/screens/landing"
	"github.com/abhisek/orbit/internal/store"
)

func testModel(t *testing.T) (AppModel, *common.Deps) {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	st, err := store.Open("file:" + name + "?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	root := concept.Default()
	tr, err := progress.NewTracker(context.Background(), root, st.MasteryRepo(), st.AttemptRepo())
	require.NoError(t, err)
	deps := &common.Deps{
		Root:      root,
		Source:    "builtin",
		Tracker:   tr,
		Snapshots: st.SnapshotRepo(),
		Diagram:   config.Default().Diagram,
		Logger:    slog.New(slog.DiscardHandler),
	}
	m := newAppModel(deps)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(AppModel), deps
}

// step feeds msg to the model and then the message its command produces,
// which is how navigation requests reach the router.
func step(t *testing.T, m AppModel, msg tea.Msg) AppModel {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(AppModel)
	if cmd == nil {
		return m
	}
	switch out := cmd().(type) {
	case router.PushScreenMsg, router.PopScreenMsg, router.ReplaceScreenMsg, router.ResetScreenMsg:
		next, _ = m.Update(out)
		m = next.(AppModel)
	}
	return m
}

func TestStartsOnLanding(t *testing.T) {
	m, _ := testModel(t)
	assert.IsType(t, &landing.Screen{}, m.router.Active())
	assert.NotNil(t, m.Init())
	assert.Contains(t, m.render(), "Start Exploring")
}

func TestLandingToExplorerToDetail(t *testing.T) {
	m, _ := testModel(t)

	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	require.IsType(t, &explorer.Screen{}, m.router.Active())
	assert.Equal(t, 1, m.router.Depth())
	assert.Contains(t, m.render(), "% mastered")

	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyTab})
	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	require.IsType(t, &detail.Screen{}, m.router.Active())
	assert.Equal(t, 2, m.router.Depth())

	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyEscape})
	assert.IsType(t, &explorer.Screen{}, m.router.Active())
}

func TestCtrlC_SavesExplorerState(t *testing.T) {
	m, deps := testModel(t)
	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})

	_, cmd := m.Update(tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	snap, err := deps.Snapshots.Latest(context.Background())
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "builtin", snap.Data.Source)
}

func TestView_TooSmall(t *testing.T) {
	m, _ := testModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 30, Height: 10})
	assert.Contains(t, next.(AppModel).render(), "Current: 30 x 10")
}

func TestReloadReachesLanding(t *testing.T) {
	m, deps := testModel(t)
	root := &concept.Node{ID: "x", Name: "X"}
	m = step(t, m, common.ReloadMsg{Doc: &concept.Document{Root: root}})
	assert.Same(t, root, deps.Root)
}

func TestReplacedScreen_ReceivesSizeAndAnimates(t *testing.T) {
	m, deps := testModel(t)
	next, cmd := m.Update(router.ReplaceScreenMsg{Screen: explorer.New(deps)})
	m = next.(AppModel)
	require.IsType(t, &explorer.Screen{}, m.router.Active())
	// The explorer lays out its first frame from the size it was handed and
	// schedules animation ticks for the entering nodes.
	assert.NotNil(t, cmd)
}

func TestRender_ContentHeightMatchesScreenSize(t *testing.T) {
	m, _ := testModel(t)
	m = step(t, m, tea.KeyPressMsg{Code: tea.KeyEnter})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 70, Height: 30})
	m = next.(AppModel)
	assert.Equal(t, 30, strings.Count(m.render(), "\n")+1)
}
