// Package ui is the terminal viewer for the market graph: a bubbletea
// program that runs the force simulation, renders the node field, and maps
// mouse and key input onto the selection, drag, and viewport controllers.
//
// All engine, selector, viewport, and drag state is touched only from
// Update, so the bubbletea event loop is the single scheduler the engine
// family is specified against.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vanderheijden86/marketgraph/pkg/cluster"
	"github.com/vanderheijden86/marketgraph/pkg/config"
	"github.com/vanderheijden86/marketgraph/pkg/debug"
	"github.com/vanderheijden86/marketgraph/pkg/graph"
	"github.com/vanderheijden86/marketgraph/pkg/interaction"
	"github.com/vanderheijden86/marketgraph/pkg/layout"
	"github.com/vanderheijden86/marketgraph/pkg/metrics"
	"github.com/vanderheijden86/marketgraph/pkg/model"
	"github.com/vanderheijden86/marketgraph/pkg/viewport"
)

const (
	frameInterval = 33 * time.Millisecond // ~30fps
	panelWidth    = 34
	zoomStep      = 1.2
)

// frameMsg drives one simulation/animation frame.
type frameMsg time.Time

// ReloadMsg asks the model to re-ingest graph data (sent when the watcher
// sees the data file change).
type ReloadMsg struct{}

// WatchCmd turns a watcher change channel into a bubbletea message stream.
func WatchCmd(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return ReloadMsg{}
	}
}

// LoadFunc re-reads graph data on demand; wired by the caller so the UI has
// no opinion about where the data lives.
type LoadFunc func() (*model.GraphData, error)

// Model is the bubbletea model for the graph viewer.
type Model struct {
	data     *model.GraphData
	stats    *graph.Stats
	adj      *graph.AdjacencyIndex
	engine   *layout.Engine
	selector *cluster.Selector
	view     *viewport.Controller
	drag     *interaction.DragController

	cfg      config.Config
	reload   LoadFunc
	watchCh  <-chan struct{}
	search   textinput.Model
	searchOn bool

	width, height int
	status        string
	pending       *pendingIntent
	quitting      bool
}

// pendingIntent carries click intents from the drag controller's callbacks
// into the next frame. It lives on the heap so every copy of the bubbletea
// model shares it; callbacks registered in mount outlive the copy they were
// registered on.
type pendingIntent struct {
	selectID string
	clear    bool
}

// NewModel builds the viewer over sanitized graph data. The engine and
// controllers are constructed on the first window-size message, once the
// viewport has real dimensions.
func NewModel(data *model.GraphData, cfg config.Config, reload LoadFunc, watchCh <-chan struct{}) Model {
	ti := textinput.New()
	ti.Placeholder = "market name..."
	ti.Prompt = "/"
	ti.CharLimit = 60
	return Model{
		data:    data,
		cfg:     cfg,
		stats:   graph.Analyze(data),
		adj:     graph.NewAdjacencyIndex(data),
		reload:  reload,
		watchCh: watchCh,
		search:  ti,
		status:  "click a market to focus its cluster",
		pending: &pendingIntent{},
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })}
	if m.watchCh != nil {
		cmds = append(cmds, WatchCmd(m.watchCh))
	}
	return tea.Batch(cmds...)
}

// mount builds the engine/controller set for the measured viewport. The
// previous engine, if any, is fully stopped first so two schedulers never
// tick overlapping bodies.
func (m *Model) mount() {
	if m.engine != nil {
		m.engine.Stop()
	}
	gw, gh := m.graphArea()
	phys := m.cfg.Physics
	m.engine = layout.New(m.data, layout.Config{
		Width:          float64(gw),
		Height:         float64(gh),
		LinkDistance:   phys.LinkDistance,
		LinkStrength:   phys.LinkStrength,
		ChargeStrength: phys.ChargeStrength,
		ChargeRadius:   phys.ChargeRadius,
		CollidePadding: phys.CollidePadding,
		CenterStrength: phys.CenterStrength,
		VelocityDecay:  phys.VelocityDecay,
		// Terminal cells are coarse; shrink the shared radius mapping so a
		// hub is a few cells wide, not a blob.
		Radius: func(n *model.Node, degree int) float64 {
			return graph.NodeRadius(degree, n.Volatility) / 6
		},
	})
	m.selector = cluster.NewSelector(m.data, m.adj)
	view := m.cfg.View
	m.view = viewport.New(viewport.Config{
		Width:           float64(gw),
		Height:          float64(gh),
		MinScale:        view.MinScale,
		MaxScale:        view.MaxScale,
		MaxClusterZoom:  view.MaxClusterZoom,
		ZoomDuration:    view.ZoomDuration,
		ClusterDuration: view.ClusterDuration,
	})
	m.drag = interaction.NewDragController(m.engine, m.view, 1.5)

	p := m.pending
	m.drag.OnNodeClick(func(id string) { p.selectID = id })
	m.drag.OnBackgroundClick(func() { p.clear = true })
}

// graphArea returns the cell dimensions of the graph canvas (everything
// except the side panel and the two chrome rows).
func (m Model) graphArea() (int, int) {
	w := m.width - panelWidth
	if w < 10 {
		w = m.width
	}
	h := m.height - 2
	if h < 1 {
		h = 1
	}
	return w, h
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		first := m.engine == nil
		m.width, m.height = msg.Width, msg.Height
		if first {
			m.mount()
		} else {
			gw, gh := m.graphArea()
			m.engine.Resize(float64(gw), float64(gh))
			m.view.Resize(float64(gw), float64(gh))
		}
		return m, nil

	case frameMsg:
		if m.engine != nil {
			stop := metrics.Timer(metrics.LayoutTick)
			m.engine.Step()
			stop()
			m.view.Tick(time.Time(msg))
		}
		m.applyPending()
		return m, tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })

	case ReloadMsg:
		m.reloadData()
		cmds := []tea.Cmd{}
		if m.watchCh != nil {
			cmds = append(cmds, WatchCmd(m.watchCh))
		}
		return m, tea.Batch(cmds...)

	case tea.MouseMsg:
		return m.updateMouse(msg), nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

// applyPending consumes selection intents queued by the drag controller's
// click handlers, so selection and zoom change in the same frame.
func (m *Model) applyPending() {
	switch {
	case m.pending.selectID != "":
		id := m.pending.selectID
		m.pending.selectID = ""
		m.selectNode(id)
	case m.pending.clear:
		m.pending.clear = false
		m.clearSelection()
	}
}

// selectNode routes a node click through the selector and frames the
// resulting cluster. Toggling the current selection clears it instead.
func (m *Model) selectNode(id string) {
	st := m.selector.Select(id)
	if !st.Active() {
		m.clearSelection()
		return
	}
	points := make([]layout.Point, 0, len(st.NodeIDs))
	for nid := range st.NodeIDs {
		if p, ok := m.engine.Position(nid); ok {
			points = append(points, p)
		}
	}
	m.view.ZoomToCluster(points, 0)
	if n := m.data.NodeByID(id); n != nil {
		m.status = fmt.Sprintf("%s — %d connected markets", n.Name, m.adj.Degree(id))
	}
}

func (m *Model) clearSelection() {
	m.selector.Clear()
	m.view.ResetZoom()
	m.status = "click a market to focus its cluster"
}

func (m *Model) reloadData() {
	if m.reload == nil {
		return
	}
	data, err := m.reload()
	if err != nil {
		m.status = fmt.Sprintf("reload failed: %v", err)
		return
	}
	debug.Log("reloaded graph: %d nodes, %d connections", len(data.Nodes), len(data.Connections))
	m.data = data
	m.stats = graph.Analyze(data)
	m.adj = graph.NewAdjacencyIndex(data)
	if m.width > 0 {
		m.mount()
	}
	m.status = fmt.Sprintf("data reloaded (%d markets)", len(data.Nodes))
}

func (m Model) updateMouse(msg tea.MouseMsg) Model {
	if m.drag == nil {
		return m
	}
	x, y := float64(msg.X), float64(msg.Y-1) // graph canvas starts below the title row

	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if err := m.view.ZoomIn(zoomStep); err != nil {
			m.status = "zoom limit reached"
		}
		return m
	case tea.MouseButtonWheelDown:
		if err := m.view.ZoomOut(zoomStep); err != nil {
			m.status = "zoom limit reached"
		}
		return m
	}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button == tea.MouseButtonLeft {
			m.drag.PointerDown(x, y)
		}
	case tea.MouseActionMotion:
		m.drag.PointerMove(x, y)
	case tea.MouseActionRelease:
		m.drag.PointerUp(x, y)
	}
	return m
}

func (m Model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searchOn {
		switch msg.Type {
		case tea.KeyEnter:
			m.searchOn = false
			query := strings.TrimSpace(m.search.Value())
			m.search.Blur()
			m.search.SetValue("")
			if query != "" {
				m.searchSelect(query)
			}
			return m, nil
		case tea.KeyEsc:
			m.searchOn = false
			m.search.Blur()
			m.search.SetValue("")
			return m, nil
		}
		var cmd tea.Cmd
		m.search, cmd = m.search.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		if m.engine != nil {
			m.engine.Stop()
		}
		m.quitting = true
		return m, tea.Quit
	case "/":
		m.searchOn = true
		m.search.Focus()
		return m, textinput.Blink
	case "esc":
		m.clearSelection()
	case "+", "=":
		if err := m.view.ZoomIn(zoomStep); err != nil {
			m.status = "zoom limit reached"
		}
	case "-":
		if err := m.view.ZoomOut(zoomStep); err != nil {
			m.status = "zoom limit reached"
		}
	case "0":
		m.view.ResetZoom()
	case "y":
		if st := m.selector.State(); st.Active() {
			if err := clipboard.WriteAll(st.SelectedID); err == nil {
				m.status = fmt.Sprintf("copied %s", st.SelectedID)
			}
		}
	}
	return m, nil
}

// searchSelect selects the first market whose name or ID contains the query
// (case-insensitive) and frames its cluster.
func (m *Model) searchSelect(query string) {
	q := strings.ToLower(query)
	for i := range m.data.Nodes {
		n := &m.data.Nodes[i]
		if strings.Contains(strings.ToLower(n.Name), q) || strings.Contains(strings.ToLower(n.ID), q) {
			// Force a fresh selection even if the hit is already selected.
			if m.selector.State().SelectedID == n.ID {
				return
			}
			m.selectNode(n.ID)
			return
		}
	}
	m.status = fmt.Sprintf("no market matching %q", query)
}
