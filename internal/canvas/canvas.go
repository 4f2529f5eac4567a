// Package canvas rasterizes a diagram frame into terminal cells. One cell
// is one diagram unit wide and two tall, which keeps the rings round on a
// typical terminal font.
package canvas

import (
	"math"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/orbit/internal/diagram"
	"github.com/abhisek/orbit/internal/geom"
	"github.com/abhisek/orbit/internal/reconcile"
	"github.com/abhisek/orbit/internal/search"
	"github.com/abhisek/orbit/internal/ui/theme"
)

// MaxLabel is the longest label drawn, in runes.
const MaxLabel = 28

// DiagramSize returns the diagram dimensions for a canvas of cols x rows.
func DiagramSize(cols, rows int) (width, height float64) {
	return float64(cols), float64(rows * 2)
}

// CellCenter returns the diagram point at the centre of a cell.
func CellCenter(col, row int) geom.Point {
	return geom.Point{X: float64(col) + 0.5, Y: float64(row)*2 + 1}
}

func toCell(p geom.Point) (col, row int) {
	return int(math.Floor(p.X)), int(math.Floor(p.Y / 2))
}

type ink int

const (
	inkBlank ink = iota
	inkLink
	inkLinkMatch
	inkLinkDim
	inkLeaf
	inkParent
	inkMastered
	inkEmphasis
	inkMatch
	inkDim
	inkLabel
	inkLabelDim
	inkLabelEmphasis
	inkLabelSelected
)

var inkStyles = map[ink]lipgloss.Style{
	inkBlank:         lipgloss.NewStyle(),
	inkLink:          lipgloss.NewStyle().Foreground(theme.Link),
	inkLinkMatch:     lipgloss.NewStyle().Foreground(theme.Match),
	inkLinkDim:       lipgloss.NewStyle().Foreground(theme.Border),
	inkLeaf:          lipgloss.NewStyle().Foreground(theme.TextDim),
	inkParent:        lipgloss.NewStyle().Foreground(theme.Primary),
	inkMastered:      lipgloss.NewStyle().Foreground(theme.Success).Bold(true),
	inkEmphasis:      lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true),
	inkMatch:         lipgloss.NewStyle().Foreground(theme.Match).Bold(true),
	inkDim:           lipgloss.NewStyle().Foreground(theme.Faint),
	inkLabel:         lipgloss.NewStyle().Foreground(theme.Text),
	inkLabelDim:      lipgloss.NewStyle().Foreground(theme.Faint),
	inkLabelEmphasis: lipgloss.NewStyle().Foreground(theme.Text).Bold(true),
	inkLabelSelected: lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Underline(true),
}

type cell struct {
	r   rune
	ink ink
}

// Raster is a rendered frame plus the id of the node drawn in each cell.
type Raster struct {
	cols  int
	rows  int
	cells []cell
	hits  []string
}

// Render draws f on a cols x rows grid: links first, then markers, then
// labels, so markers are never covered by edges.
func Render(f diagram.Frame, cols, rows int) *Raster {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	r := &Raster{
		cols:  cols,
		rows:  rows,
		cells: make([]cell, cols*rows),
		hits:  make([]string, cols*rows),
	}
	for i := range r.cells {
		r.cells[i] = cell{r: ' '}
	}

	for _, l := range f.Links {
		r.drawLink(l)
	}

	// Emphasized nodes go last so their labels win overlaps.
	nodes := make([]diagram.NodeView, 0, len(f.Nodes))
	var top []diagram.NodeView
	for _, n := range f.Nodes {
		if n.Style.Emphasized() || n.Style.Selected {
			top = append(top, n)
			continue
		}
		nodes = append(nodes, n)
	}
	nodes = append(nodes, top...)

	for _, n := range nodes {
		r.drawMarker(n)
	}
	for _, n := range nodes {
		if n.Phase != reconcile.Exiting {
			r.drawLabel(n)
		}
	}
	return r
}

// Size returns the raster dimensions.
func (r *Raster) Size() (cols, rows int) { return r.cols, r.rows }

// HitTest returns the node drawn at a cell, marker or label.
func (r *Raster) HitTest(col, row int) (string, bool) {
	i, ok := r.index(col, row)
	if !ok || r.hits[i] == "" {
		return "", false
	}
	return r.hits[i], true
}

// Plain returns the raster as text without styling.
func (r *Raster) Plain() string {
	var b strings.Builder
	for row := 0; row < r.rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		for col := 0; col < r.cols; col++ {
			b.WriteRune(r.cells[row*r.cols+col].r)
		}
	}
	return b.String()
}

// String returns the raster styled for the terminal. Runs of cells with
// the same ink share one styled segment.
func (r *Raster) String() string {
	var b strings.Builder
	for row := 0; row < r.rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		var run strings.Builder
		cur := inkBlank
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if cur == inkBlank {
				b.WriteString(run.String())
			} else {
				b.WriteString(inkStyles[cur].Render(run.String()))
			}
			run.Reset()
		}
		for col := 0; col < r.cols; col++ {
			c := r.cells[row*r.cols+col]
			if c.ink != cur {
				flush()
				cur = c.ink
			}
			run.WriteRune(c.r)
		}
		flush()
	}
	return b.String()
}

func (r *Raster) index(col, row int) (int, bool) {
	if col < 0 || row < 0 || col >= r.cols || row >= r.rows {
		return 0, false
	}
	return row*r.cols + col, true
}

func (r *Raster) set(col, row int, ch rune, k ink, id string) {
	i, ok := r.index(col, row)
	if !ok {
		return
	}
	r.cells[i] = cell{r: ch, ink: k}
	if id != "" {
		r.hits[i] = id
	}
}

func (r *Raster) drawLink(l diagram.LinkView) {
	w, h := DiagramSize(r.cols, r.rows)
	from, to, ok := clipSegment(l.From, l.To, w, h)
	if !ok {
		return
	}
	x0, y0 := toCell(from)
	x1, y1 := toCell(to)
	ch := linkGlyph(l.To.X-l.From.X, l.To.Y-l.From.Y)
	k := inkLink
	switch l.State {
	case search.BridgesMatch:
		k = inkLinkMatch
	case search.LinkDimmed:
		k = inkLinkDim
	}

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	for {
		if i, ok := r.index(x0, y0); ok && r.cells[i].ink <= inkLinkDim {
			r.cells[i] = cell{r: ch, ink: k}
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

// clipSegment cuts the segment a-b to the rectangle [0,w) x [0,h), so a
// link that runs far off screen costs no more than one that crosses it.
// It reports false when nothing of the segment is inside.
func clipSegment(a, b geom.Point, w, h float64) (geom.Point, geom.Point, bool) {
	// Keep the far edges just inside so they floor to the last cell.
	maxX, maxY := math.Nextafter(w, 0), math.Nextafter(h, 0)
	dx, dy := b.X-a.X, b.Y-a.Y
	t0, t1 := 0.0, 1.0
	for _, edge := range [4][2]float64{
		{-dx, a.X},
		{dx, maxX - a.X},
		{-dy, a.Y},
		{dy, maxY - a.Y},
	} {
		p, q := edge[0], edge[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			t0 = max(t0, r)
		} else {
			t1 = min(t1, r)
		}
		if t0 > t1 {
			return a, b, false
		}
	}
	at := func(t float64) geom.Point { return geom.Point{X: a.X + t*dx, Y: a.Y + t*dy} }
	return at(t0), at(t1), true
}

// linkGlyph picks a line character from a direction in diagram units,
// where one row is two units tall.
func linkGlyph(dx, dy float64) rune {
	ax, ay := math.Abs(dx), math.Abs(dy)/2
	switch {
	case ax > 2*ay:
		return '─'
	case ay > 2*ax:
		return '│'
	case (dx > 0) == (dy > 0):
		return '╲'
	default:
		return '╱'
	}
}

func markerGlyph(s diagram.Style) rune {
	switch {
	case s.Emphasized():
		return '◉'
	case s.Collapsed:
		return '⊕'
	case s.HasChildren:
		return '●'
	case s.Application:
		return '◆'
	default:
		return '•'
	}
}

func markerInk(s diagram.Style) ink {
	switch {
	case s.Emphasized() || s.Selected:
		return inkEmphasis
	case s.Search == search.DirectMatch:
		return inkMatch
	case s.Mastered:
		return inkMastered
	case s.Search == search.Dimmed:
		return inkDim
	case s.HasChildren:
		return inkParent
	default:
		return inkLeaf
	}
}

func (r *Raster) drawMarker(n diagram.NodeView) {
	col, row := toCell(n.Point)
	r.set(col, row, markerGlyph(n.Style), markerInk(n.Style), n.ID)
}

func (r *Raster) drawLabel(n diagram.NodeView) {
	label := []rune(n.Name)
	if len(label) > MaxLabel {
		label = append(label[:MaxLabel-1], '…')
	}
	if n.Style.Mastered {
		label = append(label, ' ', '✓')
	}

	k := inkLabel
	switch {
	case n.Style.Selected:
		k = inkLabelSelected
	case n.Style.Emphasized():
		k = inkLabelEmphasis
	case n.Style.Search == search.Dimmed:
		k = inkLabelDim
	}

	col, row := toCell(n.Point)
	start := col + 2
	if n.Style.LabelLeft {
		start = col - 1 - len(label)
	}
	for i, ch := range label {
		c := start + i
		if idx, ok := r.index(c, row); ok && r.cells[idx].ink >= inkLeaf && r.cells[idx].ink <= inkDim {
			continue
		}
		r.set(c, row, ch, k, n.ID)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}
