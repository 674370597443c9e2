// Package rendering draws knowledge graphs as PNG images.
package rendering

import (
	"bytes"
	"math"

	"github.com/fogleman/gg"

	"github.com/turtacn/EcoExpand-AI/internal/domain/knowledge"
	"github.com/turtacn/EcoExpand-AI/pkg/errors"
)

// Title is drawn at the top of every image.
const Title = "Knowledge Graph Visualization"

const (
	defaultWidth  = 1200
	defaultHeight = 800
	nodeRadius    = 18.0
	arrowSize     = 10.0
	margin        = 70.0
)

// PNGRenderer lays nodes out on a circle and draws each relation as a
// labelled arrow.
type PNGRenderer struct {
	width  int
	height int
}

// NewPNGRenderer returns a renderer for width x height images. Non-positive
// sizes fall back to 1200x800.
func NewPNGRenderer(width, height int) *PNGRenderer {
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	return &PNGRenderer{width: width, height: height}
}

func (r *PNGRenderer) ContentType() string { return "image/png" }

// Render draws g. An empty graph yields an image with only the title.
func (r *PNGRenderer) Render(g *knowledge.Graph) ([]byte, error) {
	if g == nil {
		g = &knowledge.Graph{}
	}
	dc := gg.NewContext(r.width, r.height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	dc.SetRGB(0.1, 0.1, 0.1)
	dc.DrawStringAnchored(Title, float64(r.width)/2, 24, 0.5, 0.5)

	pos := r.layout(g.Nodes)

	dc.SetLineWidth(1.5)
	for _, e := range g.Edges {
		from, okFrom := pos[e.Source]
		to, okTo := pos[e.Target]
		if !okFrom || !okTo {
			continue
		}
		if e.Source == e.Target {
			drawLoop(dc, from, e.Relation)
			continue
		}
		drawArrow(dc, from, to, e.Relation)
	}

	for _, n := range g.Nodes {
		p := pos[n.Name]
		dc.DrawCircle(p.X, p.Y, nodeRadius)
		dc.SetRGB(0.53, 0.81, 0.92)
		dc.FillPreserve()
		dc.SetRGB(0.2, 0.4, 0.6)
		dc.Stroke()
		dc.SetRGB(0, 0, 0)
		dc.DrawStringAnchored(n.Name, p.X, p.Y+nodeRadius+12, 0.5, 0.5)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeGraphRenderFailed, "failed to encode graph image")
	}
	return buf.Bytes(), nil
}

// layout places nodes clockwise from the top of a circle in the order given.
func (r *PNGRenderer) layout(nodes []knowledge.Entity) map[string]gg.Point {
	cx, cy := float64(r.width)/2, float64(r.height)/2+15
	radius := math.Min(float64(r.width), float64(r.height))/2 - margin
	if radius < nodeRadius {
		radius = nodeRadius
	}
	pos := make(map[string]gg.Point, len(nodes))
	if len(nodes) == 1 {
		pos[nodes[0].Name] = gg.Point{X: cx, Y: cy}
		return pos
	}
	for i, n := range nodes {
		angle := 2*math.Pi*float64(i)/float64(len(nodes)) - math.Pi/2
		pos[n.Name] = gg.Point{X: cx + radius*math.Cos(angle), Y: cy + radius*math.Sin(angle)}
	}
	return pos
}

func drawArrow(dc *gg.Context, from, to gg.Point, label string) {
	dx, dy := to.X-from.X, to.Y-from.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	ux, uy := dx/length, dy/length
	start := gg.Point{X: from.X + ux*nodeRadius, Y: from.Y + uy*nodeRadius}
	tip := gg.Point{X: to.X - ux*nodeRadius, Y: to.Y - uy*nodeRadius}

	dc.SetRGB(0.45, 0.45, 0.45)
	dc.DrawLine(start.X, start.Y, tip.X, tip.Y)
	dc.Stroke()

	angle := math.Atan2(uy, ux)
	dc.MoveTo(tip.X, tip.Y)
	dc.LineTo(tip.X-arrowSize*math.Cos(angle-math.Pi/7), tip.Y-arrowSize*math.Sin(angle-math.Pi/7))
	dc.LineTo(tip.X-arrowSize*math.Cos(angle+math.Pi/7), tip.Y-arrowSize*math.Sin(angle+math.Pi/7))
	dc.ClosePath()
	dc.Fill()

	if label != "" {
		dc.SetRGB(0.7, 0.1, 0.1)
		dc.DrawStringAnchored(label, (start.X+tip.X)/2, (start.Y+tip.Y)/2-6, 0.5, 0.5)
	}
}

func drawLoop(dc *gg.Context, at gg.Point, label string) {
	cy := at.Y - nodeRadius*1.6
	dc.SetRGB(0.45, 0.45, 0.45)
	dc.DrawCircle(at.X, cy, nodeRadius*0.8)
	dc.Stroke()
	if label != "" {
		dc.SetRGB(0.7, 0.1, 0.1)
		dc.DrawStringAnchored(label, at.X, cy-nodeRadius-6, 0.5, 0.5)
	}
}

var _ knowledge.Renderer = (*PNGRenderer)(nil)
