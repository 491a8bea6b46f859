package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/marketgraph/pkg/metrics"
	"github.com/vanderheijden86/marketgraph/pkg/model"
)

// cell is one rendered glyph of the graph canvas.
type cell struct {
	r     rune
	style lipgloss.Style
	set   bool
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.engine == nil {
		return "measuring viewport..."
	}
	defer metrics.Timer(metrics.UIRender)()

	gw, gh := m.graphArea()
	canvas := m.renderCanvas(gw, gh)

	var body string
	if m.width-panelWidth >= 10 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, canvas, m.renderPanel(gh))
	} else {
		body = canvas
	}

	return strings.Join([]string{m.renderTitle(), body, m.renderStatus()}, "\n")
}

// renderCanvas projects every node through the viewport transform onto the
// cell grid, cluster edges first so nodes draw over them.
func (m Model) renderCanvas(gw, gh int) string {
	grid := make([][]cell, gh)
	for y := range grid {
		grid[y] = make([]cell, gw)
	}

	st := m.selector.State()
	t := m.view.Current()
	pos := m.engine.Positions()

	// Edges inside the focused cluster only; the full edge set is noise at
	// cell resolution.
	if st.Active() {
		for i := range m.data.Connections {
			if !st.ConnectionIndices[i] {
				continue
			}
			c := &m.data.Connections[i]
			from, ok := pos[c.Source]
			to, ok2 := pos[c.Target]
			if !ok || !ok2 {
				continue
			}
			x1, y1 := t.ApplyTo(from.X, from.Y)
			x2, y2 := t.ApplyTo(to.X, to.Y)
			plotLine(grid, int(x1), int(y1), int(x2), int(y2), styleCluster)
		}
	}

	type placed struct {
		n *model.Node
		x int
		y int
	}
	var labels []placed
	for i := range m.data.Nodes {
		n := &m.data.Nodes[i]
		p, ok := pos[n.ID]
		if !ok {
			continue
		}
		sx, sy := t.ApplyTo(p.X, p.Y)
		x, y := int(math.Round(sx)), int(math.Round(sy))
		if x < 0 || x >= gw || y < 0 || y >= gh {
			continue
		}

		r := '●'
		style := styleNode
		switch {
		case st.SelectedID == n.ID:
			r = '◉'
			style = styleSelected
		case st.Active() && st.NodeIDs[n.ID]:
			style = styleCluster
		case st.Active():
			r = '·'
			style = styleNodeDim
		}
		grid[y][x] = cell{r: r, style: style, set: true}
		if st.SelectedID == n.ID || (!st.Active() && m.adj.Degree(n.ID) >= 4) {
			labels = append(labels, placed{n: n, x: x, y: y})
		}
	}

	// Labels after nodes; clipped to the canvas, never overwriting a node.
	for _, l := range labels {
		name := runewidth.Truncate(l.n.Name, 18, "…")
		for j, r := range []rune(name) {
			x := l.x + 2 + j
			if x >= gw || l.y >= gh {
				break
			}
			if !grid[l.y][x].set {
				grid[l.y][x] = cell{r: r, style: styleStatusBar, set: true}
			}
		}
	}

	var b strings.Builder
	for y := 0; y < gh; y++ {
		for x := 0; x < gw; x++ {
			c := grid[y][x]
			if !c.set {
				b.WriteByte(' ')
				continue
			}
			b.WriteString(c.style.Render(string(c.r)))
		}
		if y < gh-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// plotLine draws a Bresenham line of faint dots, skipping out-of-bounds
// cells.
func plotLine(grid [][]cell, x1, y1, x2, y2 int, style lipgloss.Style) {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx + dy
	x, y := x1, y1
	for {
		if y >= 0 && y < len(grid) && x >= 0 && x < len(grid[y]) && !grid[y][x].set {
			grid[y][x] = cell{r: '·', style: style, set: true}
		}
		if x == x2 && y == y2 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func (m Model) renderTitle() string {
	title := styleTitle.Render("marketgraph")
	info := styleStatusBar.Render(fmt.Sprintf("  %d markets · %d connections · density %.3f",
		m.stats.NodeCount, m.stats.EdgeCount, m.stats.Density))
	return title + info
}

func (m Model) renderStatus() string {
	if m.searchOn {
		return m.search.View()
	}
	zoom := fmt.Sprintf("zoom %.1fx", m.view.Current().Scale)
	help := "wheel: zoom · drag: move/pan · /: search · esc: reset · q: quit"
	return styleStatusBar.Render(fmt.Sprintf("%s · %s · %s", m.status, zoom, help))
}

// renderPanel lists hot trades and the focused market's neighbors.
func (m Model) renderPanel(gh int) string {
	var lines []string
	lines = append(lines, styleTitle.Render("Hot Trades"))
	if len(m.data.HotTrades) == 0 {
		lines = append(lines, styleStatusBar.Render("none"))
	}
	for i, h := range m.data.HotTrades {
		if i >= 5 {
			break
		}
		var as lipgloss.Style
		switch h.Action {
		case model.ActionLong:
			as = styleLong
		case model.ActionShort:
			as = styleShort
		default:
			as = styleNeutral
		}
		lines = append(lines,
			fmt.Sprintf("%s %s", as.Render(string(h.Action)), runewidth.Truncate(h.Title, panelWidth-10, "…")),
			styleStatusBar.Render(fmt.Sprintf("  confidence %.0f%%", h.Confidence*100)))
	}

	if st := m.selector.State(); st.Active() {
		lines = append(lines, "", styleTitle.Render("Cluster"))
		if n := m.data.NodeByID(st.SelectedID); n != nil {
			lines = append(lines, styleSelected.Render(runewidth.Truncate(n.Name, panelWidth-4, "…")))
			lines = append(lines, styleStatusBar.Render(fmt.Sprintf("vol $%.0f · volatility %.2f", n.Volume, n.Volatility)))
		}
		neighbors := m.adj.NeighborIDs(st.SelectedID)
		for i, nid := range neighbors {
			if i >= 8 {
				lines = append(lines, styleStatusBar.Render(fmt.Sprintf("… %d more", len(neighbors)-i)))
				break
			}
			if n := m.data.NodeByID(nid); n != nil {
				lines = append(lines, styleCluster.Render("· "+runewidth.Truncate(n.Name, panelWidth-6, "…")))
			}
		}
	}

	panel := stylePanel.Width(panelWidth - 2).Height(gh - 2).Render(strings.Join(lines, "\n"))
	return panel
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
