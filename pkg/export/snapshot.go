// Package export renders a settled market graph to a static image. The
// layout engine is run to convergence synchronously, then the node circles,
// correlation edges, and an optional cluster focus are drawn to SVG or PNG.
package export

import (
	"fmt"
	"hash/fnv"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"git.sr.ht/~sbinet/gg"
	svg "github.com/ajstarks/svgo"
	"golang.org/x/image/font/basicfont"

	"github.com/vanderheijden86/marketgraph/pkg/cluster"
	"github.com/vanderheijden86/marketgraph/pkg/graph"
	"github.com/vanderheijden86/marketgraph/pkg/layout"
	"github.com/vanderheijden86/marketgraph/pkg/model"
)

// SnapshotOptions controls snapshot export behaviour.
type SnapshotOptions struct {
	Path   string // output path; format inferred from extension when Format empty
	Format string // "svg" or "png" (case-insensitive); empty infers from Path
	Title  string // optional title rendered in the summary block

	Graph   *model.GraphData
	Cluster cluster.State // zero value renders everything at full opacity

	Width, Height int // canvas size; defaults 1280x900
	MaxTicks      int // layout budget; default 300
	DataHash      string
}

// SaveSnapshot settles the layout and writes a static image.
func SaveSnapshot(opts SnapshotOptions) error {
	if opts.Graph == nil || len(opts.Graph.Nodes) == 0 {
		return fmt.Errorf("no markets to export")
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}
	if opts.Width <= 0 {
		opts.Width = 1280
	}
	if opts.Height <= 0 {
		opts.Height = 900
	}
	if opts.MaxTicks <= 0 {
		opts.MaxTicks = 300
	}

	format := strings.ToLower(strings.TrimPrefix(opts.Format, "."))
	if format == "" {
		switch strings.ToLower(filepath.Ext(opts.Path)) {
		case ".png":
			format = "png"
		case ".svg":
			format = "svg"
		default:
			format = "svg" // safe default
			if filepath.Ext(opts.Path) == "" {
				opts.Path = opts.Path + ".svg"
			}
		}
	}
	if format != "svg" && format != "png" {
		return fmt.Errorf("unsupported format %q (want svg or png)", format)
	}

	if dir := filepath.Dir(opts.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create parent dir: %w", err)
		}
	}

	scene := settle(opts)

	file, err := os.Create(opts.Path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer file.Close()

	if format == "svg" {
		return renderSVG(file, scene)
	}
	return renderPNG(file, scene)
}

// --- layout settling -------------------------------------------------------

type sceneNode struct {
	ID      string
	Name    string
	X, Y    float64
	Radius  float64
	Fill    color.RGBA
	Opacity float64
}

type sceneEdge struct {
	X1, Y1, X2, Y2 float64
	Width          float64
	Opacity        float64
}

type scene struct {
	Nodes         []sceneNode
	Edges         []sceneEdge
	Width, Height int
	Title         string
	DataHash      string
	NodeCount     int
	EdgeCount     int
	Ticks         int
}

// settle runs the simulation to convergence and projects the result into
// draw-ready primitives with cluster weights applied.
func settle(opts SnapshotOptions) scene {
	stats := graph.Analyze(opts.Graph)
	eng := layout.New(opts.Graph, layout.Config{
		Width:  float64(opts.Width),
		Height: float64(opts.Height) - summaryHeight,
		Radius: func(n *model.Node, degree int) float64 {
			return graph.NodeRadius(degree, n.Volatility)
		},
	})
	ticks := eng.Run(opts.MaxTicks)
	eng.Stop()

	sc := scene{
		Width:     opts.Width,
		Height:    opts.Height,
		Title:     opts.Title,
		DataHash:  opts.DataHash,
		NodeCount: len(opts.Graph.Nodes),
		EdgeCount: len(opts.Graph.Connections),
		Ticks:     ticks,
	}
	if sc.Title == "" {
		sc.Title = "Market Graph Snapshot"
	}

	pos := eng.Positions()
	for i := range opts.Graph.Nodes {
		n := &opts.Graph.Nodes[i]
		p, ok := pos[n.ID]
		if !ok {
			continue
		}
		scale := cluster.NodeScale(opts.Cluster, n.ID)
		sc.Nodes = append(sc.Nodes, sceneNode{
			ID:      n.ID,
			Name:    n.Name,
			X:       p.X,
			Y:       p.Y + summaryHeight,
			Radius:  graph.NodeRadius(stats.Degree[n.ID], n.Volatility) * scale,
			Fill:    groupColor(n.Group),
			Opacity: cluster.NodeOpacity(opts.Cluster, n.ID),
		})
	}
	for i, c := range opts.Graph.Connections {
		from, ok := pos[c.Source]
		to, ok2 := pos[c.Target]
		if !ok || !ok2 {
			continue
		}
		sc.Edges = append(sc.Edges, sceneEdge{
			X1: from.X, Y1: from.Y + summaryHeight,
			X2: to.X, Y2: to.Y + summaryHeight,
			Width:   1 + 3*c.Pressure,
			Opacity: cluster.EdgeOpacity(opts.Cluster, i) * (0.3 + 0.7*c.Correlation),
		})
	}
	return sc
}

// --- rendering -------------------------------------------------------------

const summaryHeight = 72.0

var (
	colorBackdrop = color.RGBA{0x0f, 0x12, 0x1a, 0xff}
	colorHeaderBG = color.RGBA{0x1a, 0x1f, 0x2b, 0xff}
	colorText     = color.RGBA{0xe8, 0xea, 0xf0, 0xff}
	colorSubtle   = color.RGBA{0x8a, 0x91, 0xa3, 0xff}
	colorEdge     = color.RGBA{0x6b, 0x80, 0xbf, 0xff}
)

// groupPalette cycles per category tag; unknown groups hash into it.
var groupPalette = []color.RGBA{
	{0x4c, 0xaf, 0x88, 0xff}, // green
	{0xe0, 0x6c, 0x75, 0xff}, // red
	{0x61, 0xaf, 0xef, 0xff}, // blue
	{0xe5, 0xc0, 0x7b, 0xff}, // yellow
	{0xc6, 0x78, 0xdd, 0xff}, // purple
	{0x56, 0xb6, 0xc2, 0xff}, // cyan
}

func groupColor(group string) color.RGBA {
	h := fnv.New32a()
	h.Write([]byte(group))
	return groupPalette[h.Sum32()%uint32(len(groupPalette))]
}

func css(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func renderSVG(w io.Writer, sc scene) error {
	canvas := svg.New(w)
	canvas.Start(sc.Width, sc.Height)
	canvas.Rect(0, 0, sc.Width, sc.Height, fmt.Sprintf("fill:%s", css(colorBackdrop)))
	canvas.Roundrect(12, 12, sc.Width-24, int(summaryHeight)-20, 8, 8, fmt.Sprintf("fill:%s", css(colorHeaderBG)))

	canvas.Text(28, 36, sc.Title, fmt.Sprintf("fill:%s;font-size:15px;font-family:monospace;font-weight:bold", css(colorText)))
	canvas.Text(28, 54, fmt.Sprintf("markets: %d  connections: %d  ticks: %d  data_hash: %s",
		sc.NodeCount, sc.EdgeCount, sc.Ticks, sc.DataHash),
		fmt.Sprintf("fill:%s;font-size:12px;font-family:monospace", css(colorSubtle)))

	for _, e := range sc.Edges {
		canvas.Line(int(e.X1), int(e.Y1), int(e.X2), int(e.Y2),
			fmt.Sprintf("stroke:%s;stroke-width:%.1f;stroke-opacity:%.2f", css(colorEdge), e.Width, e.Opacity))
	}
	for _, n := range sc.Nodes {
		canvas.Circle(int(n.X), int(n.Y), int(math.Round(n.Radius)),
			fmt.Sprintf("fill:%s;fill-opacity:%.2f", css(n.Fill), n.Opacity))
		if n.Opacity >= cluster.FullOpacity {
			canvas.Text(int(n.X)+int(n.Radius)+4, int(n.Y)+4, truncate(n.Name, 32),
				fmt.Sprintf("fill:%s;font-size:11px;font-family:monospace", css(colorText)))
		}
	}

	canvas.End()
	return nil
}

func renderPNG(w io.Writer, sc scene) error {
	dc := gg.NewContext(sc.Width, sc.Height)
	dc.SetFontFace(basicfont.Face7x13)
	dc.SetColor(colorBackdrop)
	dc.Clear()

	dc.SetColor(colorHeaderBG)
	dc.DrawRoundedRectangle(12, 12, float64(sc.Width)-24, summaryHeight-20, 8)
	dc.Fill()
	dc.SetColor(colorText)
	dc.DrawStringAnchored(sc.Title, 28, 34, 0, 0.5)
	dc.SetColor(colorSubtle)
	dc.DrawStringAnchored(fmt.Sprintf("markets: %d  connections: %d  ticks: %d  data_hash: %s",
		sc.NodeCount, sc.EdgeCount, sc.Ticks, sc.DataHash), 28, 52, 0, 0.5)

	for _, e := range sc.Edges {
		dc.SetRGBA(float64(colorEdge.R)/255, float64(colorEdge.G)/255, float64(colorEdge.B)/255, e.Opacity)
		dc.SetLineWidth(e.Width)
		dc.DrawLine(e.X1, e.Y1, e.X2, e.Y2)
		dc.Stroke()
	}
	for _, n := range sc.Nodes {
		dc.SetRGBA(float64(n.Fill.R)/255, float64(n.Fill.G)/255, float64(n.Fill.B)/255, n.Opacity)
		dc.DrawCircle(n.X, n.Y, n.Radius)
		dc.Fill()
		if n.Opacity >= cluster.FullOpacity {
			dc.SetColor(colorText)
			dc.DrawStringAnchored(truncate(n.Name, 32), n.X+n.Radius+4, n.Y, 0, 0.5)
		}
	}

	if err := dc.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
