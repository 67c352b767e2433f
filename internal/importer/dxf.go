package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/BoxPack/internal/model"
)

type point struct {
	X, Y float64
}

// outline is a closed polygon; the last point connects back to the first.
type outline []point

func (o outline) bounds() (lo, hi point) {
	if len(o) == 0 {
		return point{}, point{}
	}
	lo, hi = o[0], o[0]
	for _, p := range o[1:] {
		lo.X, lo.Y = math.Min(lo.X, p.X), math.Min(lo.Y, p.Y)
		hi.X, hi.Y = math.Max(hi.X, p.X), math.Max(hi.Y, p.Y)
	}
	return lo, hi
}

// area uses the shoelace formula.
func (o outline) area() float64 {
	if len(o) < 3 {
		return 0
	}
	var a float64
	for i := range o {
		j := (i + 1) % len(o)
		a += o[i].X*o[j].Y - o[j].X*o[i].Y
	}
	return math.Abs(a) / 2
}

type segment struct {
	start, end point
}

// ImportDXF turns every closed shape of a DXF drawing (LWPOLYLINE, CIRCLE,
// or a chain of LINEs and ARCs) into a rectangle covering its bounding box.
func ImportDXF(path string) ImportResult {
	var result ImportResult

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var outlines []outline
	var segments []segment
	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			if o := lwPolylineOutline(e); len(o) >= 3 {
				outlines = append(outlines, o)
			} else {
				result.Warnings = append(result.Warnings, "Skipped LWPOLYLINE with fewer than 3 vertices")
			}
		case *entity.Circle:
			outlines = append(outlines, circleOutline(e, 64))
		case *entity.Arc:
			segments = append(segments, pointsToSegments(arcPoints(e, 32))...)
		case *entity.Line:
			segments = append(segments, segment{
				start: point{X: e.Start[0], Y: e.Start[1]},
				end:   point{X: e.End[0], Y: e.End[1]},
			})
		}
	}
	outlines = append(outlines, chainSegments(segments, 0.01)...)

	if len(outlines) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
		return result
	}

	for i, o := range outlines {
		lo, hi := o.bounds()
		w, h := hi.X-lo.X, hi.Y-lo.Y
		if w < 0.01 || h < 0.01 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Skipped degenerate shape %d (%.2f x %.2f)", i+1, w, h))
			continue
		}
		result.Rectangles = append(result.Rectangles,
			model.NewRectangle(len(result.Rectangles), int(math.Ceil(w-1e-9)), int(math.Ceil(h-1e-9))))
	}
	if len(result.Rectangles) > model.MaxRectangles {
		result.Errors = append(result.Errors, fmt.Sprintf("DXF file holds more than %d shapes", model.MaxRectangles))
	}
	return result
}

// lwPolylineOutline interpolates arcs on vertices with a non-zero bulge.
func lwPolylineOutline(lw *entity.LwPolyline) outline {
	var o outline
	for i, v := range lw.Vertices {
		cur := point{X: v[0], Y: v[1]}
		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}
		if math.Abs(bulge) < 1e-9 {
			o = append(o, cur)
			continue
		}
		nv := lw.Vertices[(i+1)%len(lw.Vertices)]
		arc := bulgeArcPoints(cur, point{X: nv[0], Y: nv[1]}, bulge, 32)
		o = append(o, arc[:len(arc)-1]...)
	}
	return o
}

// bulgeArcPoints samples the arc between p1 and p2 whose bulge is the
// tangent of a quarter of the included angle.
func bulgeArcPoints(p1, p2 point, bulge float64, n int) []point {
	dx, dy := p2.X-p1.X, p2.Y-p1.Y
	chord := math.Hypot(dx, dy)
	if chord < 1e-9 {
		return []point{p1, p2}
	}

	sagitta := math.Abs(bulge) * chord / 2
	radius := (chord*chord/(4*sagitta) + sagitta) / 2

	perpX, perpY := -dy/chord, dx/chord
	if bulge > 0 {
		perpX, perpY = -perpX, -perpY
	}
	dist := radius - sagitta
	cx := (p1.X+p2.X)/2 + perpX*dist
	cy := (p1.Y+p2.Y)/2 + perpY*dist

	start := math.Atan2(p1.Y-cy, p1.X-cx)
	end := math.Atan2(p2.Y-cy, p2.X-cx)
	if bulge < 0 && end > start {
		end -= 2 * math.Pi
	} else if bulge > 0 && end < start {
		end += 2 * math.Pi
	}
	return sampleArc(cx, cy, radius, start, end, n)
}

func sampleArc(cx, cy, r, start, end float64, n int) []point {
	pts := make([]point, n+1)
	for i := range pts {
		a := start + float64(i)/float64(n)*(end-start)
		pts[i] = point{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)}
	}
	return pts
}

func circleOutline(c *entity.Circle, n int) outline {
	pts := sampleArc(c.Center[0], c.Center[1], c.Radius, 0, 2*math.Pi, n)
	return outline(pts[:n])
}

func arcPoints(a *entity.Arc, n int) []point {
	start := a.Angle[0] * math.Pi / 180
	end := a.Angle[1] * math.Pi / 180
	if end <= start {
		end += 2 * math.Pi
	}
	return sampleArc(a.Circle.Center[0], a.Circle.Center[1], a.Circle.Radius, start, end, n)
}

func pointsToSegments(pts []point) []segment {
	if len(pts) < 2 {
		return nil
	}
	segs := make([]segment, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		segs = append(segs, segment{start: pts[i], end: pts[i+1]})
	}
	return segs
}

// chainSegments joins segments whose endpoints lie within tolerance into
// outlines, largest area first.
func chainSegments(segs []segment, tolerance float64) []outline {
	used := make([]bool, len(segs))
	var outlines []outline

	for first := range segs {
		if used[first] {
			continue
		}
		used[first] = true
		chain := []point{segs[first].start, segs[first].end}

		for extended := true; extended; {
			extended = false
			tail := chain[len(chain)-1]
			for i, seg := range segs {
				if used[i] {
					continue
				}
				switch {
				case pointsClose(tail, seg.start, tolerance):
					chain = append(chain, seg.end)
				case pointsClose(tail, seg.end, tolerance):
					chain = append(chain, seg.start)
				default:
					continue
				}
				used[i] = true
				extended = true
				break
			}
		}

		if len(chain) >= 3 && pointsClose(chain[0], chain[len(chain)-1], tolerance) {
			chain = chain[:len(chain)-1]
		}
		if len(chain) >= 3 {
			outlines = append(outlines, outline(chain))
		}
	}

	sort.SliceStable(outlines, func(i, j int) bool {
		return outlines[i].area() > outlines[j].area()
	})
	return outlines
}

func pointsClose(a, b point, tolerance float64) bool {
	return math.Hypot(a.X-b.X, a.Y-b.Y) <= tolerance
}
