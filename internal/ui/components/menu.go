package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
)

// MenuItem is one pill of the landing menu. Key, when set, triggers the
// item directly.
type MenuItem struct {
	Key    string
	Label  string
	Action func() tea.Cmd
}

// Menu is a vertical list of pill buttons. Selection wraps around.
type Menu struct {
	Items    []MenuItem
	Selected int
}

func NewMenu(items ...MenuItem) Menu {
	return Menu{Items: items}
}

func (m Menu) Update(msg tea.Msg) (Menu, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok || len(m.Items) == 0 {
		return m, nil
	}

	n := len(m.Items)
	switch k := kmsg.String(); k {
	case "up", "k", "shift+tab":
		m.Selected = (m.Selected + n - 1) % n
	case "down", "j", "tab":
		m.Selected = (m.Selected + 1) % n
	case "enter":
		return m, m.run(m.Selected)
	default:
		for i, item := range m.Items {
			if item.Key != "" && item.Key == k {
				m.Selected = i
				return m, m.run(i)
			}
		}
	}
	return m, nil
}

func (m Menu) run(i int) tea.Cmd {
	if a := m.Items[i].Action; a != nil {
		return a()
	}
	return nil
}

// View stacks the items as pills no wider than width.
func (m Menu) View(width int) string {
	pills := make([]string, len(m.Items))
	for i, item := range m.Items {
		label := item.Label
		if item.Key != "" {
			label += "  " + item.Key
		}
		pills[i] = PillButton(label, i == m.Selected, width)
	}
	return strings.Join(pills, "\n")
}
