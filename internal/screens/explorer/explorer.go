// Package explorer is the main screen: the radial concept diagram with a
// search box and a status line.
package explorer

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/orbit/internal/canvas"
	"github.com/abhisek/orbit/internal/concept"
	"github.com/abhisek/orbit/internal/diagram"
	"github.com/abhisek/orbit/internal/geom"
	"github.com/abhisek/orbit/internal/interaction"
	"github.com/abhisek/orbit/internal/router"
	"github.com/abhisek/orbit/internal/screen"
	"github.com/abhisek/orbit/internal/screens/common"
	"github.com/abhisek/orbit/internal/screens/completion"
	"github.com/abhisek/orbit/internal/screens/detail"
	"github.com/abhisek/orbit/internal/store"
	"github.com/abhisek/orbit/internal/ui/components"
	"github.com/abhisek/orbit/internal/ui/layout"
)

const (
	tickInterval = 60 * time.Millisecond
	panStep      = 4.0
	zoomStep     = 1.25
	// canvasTop is the terminal row of the first canvas row: the header
	// plus the search line.
	canvasTop = layout.HeaderHeight + 1
	// keptSnapshots bounds the snapshot table.
	keptSnapshots = 20
)

type tickMsg time.Time

// Screen hosts one diagram.
type Screen struct {
	deps    *common.Deps
	diagram *diagram.Diagram
	search  components.SearchInput
	now     func() time.Time

	width, height int
	cols, rows    int

	resetToggle bool
	ticking     bool
	dragging    bool
	dragX       int
	dragY       int

	// celebrated is set once the completion screen has been shown.
	celebrated bool

	// status is the last problem worth showing, such as a bad reload.
	status string
}

var _ screen.Screen = (*Screen)(nil)

// New creates the explorer over deps.Root and restores the last saved
// state for the same concept source.
func New(deps *common.Deps) *Screen {
	return newWithClock(deps, time.Now)
}

func newWithClock(deps *common.Deps, now func() time.Time) *Screen {
	s := &Screen{
		deps: deps,
		diagram: diagram.New(
			diagram.WithLogger(deps.Logger),
			diagram.WithTransition(deps.Diagram.Transition()),
			diagram.WithRevealMatches(deps.Diagram.RevealMatches),
			diagram.WithCollapseDepth(deps.Diagram.CollapseDepth),
		),
		search: components.NewSearchInput("search concepts", 64),
		now:    now,
	}
	t := now()
	if err := s.diagram.SetData(t, deps.Root); err != nil {
		s.status = err.Error()
	}
	s.diagram.SetResetToggle(t, s.resetToggle)
	s.diagram.SetMastered(deps.Tracker.Mastered())
	s.restore(t)
	return s
}

func (s *Screen) Init() tea.Cmd {
	return nil
}

func (s *Screen) Title() string {
	return "AI Concept Map"
}

// Resume refreshes mastery after a detail screen closes and moves on to
// the completion screen once everything is mastered.
func (s *Screen) Resume() tea.Cmd {
	s.diagram.SetMastered(s.deps.Tracker.Mastered())
	if s.deps.Tracker.Complete() && !s.celebrated {
		s.celebrated = true
		return pushCmd(completion.New(s.deps))
	}
	return nil
}

func (s *Screen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	now := s.now()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.resize(now, msg.Width, layout.ContentHeight(msg.Height))
		return s, s.animate(now)

	case tickMsg:
		s.ticking = false
		s.diagram.Tick(now)
		return s, s.animate(now)

	case common.ReloadMsg:
		return s, s.reload(now, msg)

	case common.SaveMsg:
		s.save()
		return s, nil

	case tea.MouseClickMsg:
		return s, s.mouseClick(now, msg.Mouse())

	case tea.MouseMotionMsg:
		s.mouseMotion(now, msg.Mouse())
		return s, s.animate(now)

	case tea.MouseReleaseMsg:
		s.dragging = false
		return s, nil

	case tea.MouseWheelMsg:
		m := msg.Mouse()
		factor := zoomStep
		if m.Button == tea.MouseWheelDown {
			factor = 1 / zoomStep
		}
		s.diagram.ZoomAt(now, factor, s.pointAt(m.X, m.Y))
		return s, s.animate(now)

	case tea.KeyMsg:
		if s.search.Focused() {
			return s, s.searchKey(now, msg)
		}
		return s, s.key(now, msg)
	}

	return s, nil
}

func (s *Screen) key(now time.Time, msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "/":
		return s.search.Focus()
	case "tab":
		s.diagram.FocusNext()
	case "shift+tab":
		s.diagram.FocusPrev()
	case "enter":
		return s.handle(now, s.diagram.Activate(now, false))
	case "space", " ":
		s.diagram.Activate(now, true)
		s.save()
	case "left", "h":
		s.diagram.Pan(now, panStep, 0)
	case "right", "l":
		s.diagram.Pan(now, -panStep, 0)
	case "up", "k":
		s.diagram.Pan(now, 0, panStep*2)
	case "down", "j":
		s.diagram.Pan(now, 0, -panStep*2)
	case "+", "=":
		s.diagram.ZoomAt(now, zoomStep, s.center())
	case "-", "_":
		s.diagram.ZoomAt(now, 1/zoomStep, s.center())
	case "r":
		s.reset(now)
	case "esc":
		s.diagram.Deselect()
	case "q":
		s.save()
		return tea.Quit
	}
	return s.animate(now)
}

func (s *Screen) searchKey(now time.Time, msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter", "tab":
		s.search.Blur()
		s.save()
		return nil
	case "esc":
		s.search.Blur()
		if s.search.Value() != "" {
			s.search.SetValue("")
			s.setSearch(now, "")
		}
		return s.animate(now)
	}

	var cmd tea.Cmd
	var changed bool
	s.search, cmd, changed = s.search.Update(msg)
	if changed {
		s.setSearch(now, s.search.Value())
	}
	return tea.Batch(cmd, s.animate(now))
}

// setSearch applies a new term. A new search drops the selection.
func (s *Screen) setSearch(now time.Time, term string) {
	s.diagram.ClearSelection()
	s.diagram.SetSearchTerm(now, term)
}

// reset clears the search and the selection and recenters the view.
func (s *Screen) reset(now time.Time) {
	s.search.SetValue("")
	s.diagram.SetSearchTerm(now, "")
	s.diagram.ClearSelection()
	s.resetToggle = !s.resetToggle
	s.diagram.SetResetToggle(now, s.resetToggle)
}

func (s *Screen) mouseClick(now time.Time, m tea.Mouse) tea.Cmd {
	if m.Button != tea.MouseLeft {
		return nil
	}
	if s.search.Focused() {
		s.search.Blur()
	}
	id, ok := s.hitAt(m.X, m.Y)
	if !ok {
		s.dragging, s.dragX, s.dragY = true, m.X, m.Y
		return nil
	}
	var mods interaction.Modifiers
	if m.Mod&tea.ModCtrl != 0 {
		mods |= interaction.ModCtrl
	}
	if m.Mod&tea.ModMeta != 0 {
		mods |= interaction.ModMeta
	}
	if m.Mod&tea.ModShift != 0 {
		mods |= interaction.ModShift
	}
	if m.Mod&tea.ModAlt != 0 {
		// Alt-click toggles too; many terminals take ctrl-click.
		mods |= interaction.ModCtrl
	}
	intents := s.diagram.Click(now, id, mods)
	if mods.Toggles() {
		s.save()
	}
	return tea.Batch(s.handle(now, intents), s.animate(now))
}

func (s *Screen) mouseMotion(now time.Time, m tea.Mouse) {
	if s.dragging && m.Button == tea.MouseLeft {
		dx, dy := m.X-s.dragX, m.Y-s.dragY
		s.dragX, s.dragY = m.X, m.Y
		s.diagram.Pan(now, float64(dx), float64(dy*2))
		return
	}
	s.dragging = false
	if id, ok := s.hitAt(m.X, m.Y); ok {
		s.diagram.Hover(id)
		return
	}
	s.diagram.Leave()
}

// handle opens the detail screen for a plain selection. A toggle also
// selects, but only updates the status line.
func (s *Screen) handle(now time.Time, intents []interaction.Intent) tea.Cmd {
	toggled := false
	for _, in := range intents {
		if in.Kind == interaction.Toggle {
			toggled = true
		}
	}
	for _, in := range intents {
		if in.Kind == interaction.Select && !toggled && in.Concept != nil {
			return pushCmd(detail.New(s.deps, in.Concept))
		}
	}
	return s.animate(now)
}

func (s *Screen) reload(now time.Time, msg common.ReloadMsg) tea.Cmd {
	if msg.Err != nil {
		s.status = "reload failed: " + msg.Err.Error()
		s.deps.Logger.Warn("concept reload failed", "error", msg.Err)
		return nil
	}
	if err := s.diagram.SetData(now, msg.Doc.Root); err != nil {
		s.status = "reload rejected: " + err.Error()
		s.deps.Logger.Warn("concept reload rejected", "error", err)
		return nil
	}
	s.status = ""
	s.deps.Root = msg.Doc.Root
	s.deps.Tracker.SetConcepts(msg.Doc.Root)
	if s.deps.Insight != nil {
		s.deps.Insight.Forget()
	}
	s.diagram.SetMastered(s.deps.Tracker.Mastered())
	s.diagram.SetSearchTerm(now, s.search.Value())
	s.deps.Logger.Info("concepts reloaded", "source", s.deps.Source, "count", concept.Count(msg.Doc.Root))
	return s.animate(now)
}

// resize lays the diagram out for a content area of width by height,
// less the search and status lines. Repeating the current size is a no-op
// so the user's zoom survives redundant size messages.
func (s *Screen) resize(now time.Time, width, height int) {
	if width == s.width && height == s.height {
		return
	}
	s.width, s.height = width, height
	s.cols, s.rows = width, max(height-2, 0)
	w, h := canvas.DiagramSize(s.cols, s.rows)
	s.diagram.Resize(now, w, h)
}

// animate schedules the next frame while anything is still moving.
func (s *Screen) animate(now time.Time) tea.Cmd {
	if s.ticking || !s.diagram.Animating(now) {
		return nil
	}
	s.ticking = true
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// hitAt maps a terminal position to the node drawn there.
func (s *Screen) hitAt(x, y int) (string, bool) {
	now := s.now()
	if s.cols > 0 && s.rows > 0 {
		if id, ok := s.render(now).HitTest(x, y-canvasTop); ok {
			return id, true
		}
	}
	return s.diagram.NodeAt(now, s.pointAt(x, y))
}

func (s *Screen) pointAt(x, y int) geom.Point {
	return canvas.CellCenter(x, y-canvasTop)
}

func (s *Screen) center() geom.Point {
	w, h := s.diagram.Size()
	return geom.Point{X: w / 2, Y: h / 2}
}

// restore applies the latest snapshot saved for the same source.
func (s *Screen) restore(now time.Time) {
	if s.deps.Snapshots == nil {
		return
	}
	snap, err := s.deps.Snapshots.Latest(context.Background())
	if err != nil {
		s.deps.Logger.Warn("load explorer snapshot", "error", err)
		return
	}
	if snap == nil || snap.Data.Source != s.deps.Source {
		return
	}
	st := snap.Data
	s.diagram.Restore(now, st.Expanded)
	if st.Search != "" {
		s.search.SetValue(st.Search)
		s.diagram.SetSearchTerm(now, st.Search)
	}
	if st.Selected != "" {
		s.diagram.Expand(now, st.Selected)
		s.diagram.Click(now, st.Selected, 0)
	}
}

// save writes the explorer state. Failures are logged, never shown.
func (s *Screen) save() {
	if s.deps.Snapshots == nil || s.diagram.Tree() == nil {
		return
	}
	st := store.ExplorerState{
		Source:   s.deps.Source,
		Expanded: s.diagram.Expanded(),
		Search:   s.search.Value(),
	}
	if sel := s.diagram.Selected(); sel != nil {
		st.Selected = sel.ID
	}
	ctx := context.Background()
	if err := s.deps.Snapshots.Save(ctx, &store.Snapshot{Data: st}); err != nil {
		s.deps.Logger.Warn("save explorer snapshot", "error", err)
		return
	}
	if err := s.deps.Snapshots.Prune(ctx, keptSnapshots); err != nil {
		s.deps.Logger.Warn("prune explorer snapshots", "error", err)
	}
}

func pushCmd(sc screen.Screen) tea.Cmd {
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: sc}
	}
}
