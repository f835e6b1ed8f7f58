package mesh

import (
	"fmt"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/stlview/pkg/math"
	"github.com/Faultbox/stlview/pkg/stl"
)

// minNormalLength is the accumulated normal length below which a vertex is
// given the zero normal.
const minNormalLength = 1e-8

// Indexed is a welded mesh. Positions and Normals are parallel arrays;
// Indices holds three entries per triangle, in input face order.
type Indexed struct {
	Positions []math.Vec3
	Normals   []math.Vec3
	Indices   []uint32
}

// vertex is the per-key working state of a weld pass.
type vertex struct {
	pos    math.Vec3
	normal math.Vec3 // running sum, not normalized
}

// Welder merges coincident vertices of a triangle soup.
type Welder struct {
	log *zap.Logger
}

// NewWelder creates a welder. A nil logger disables logging.
func NewWelder(log *zap.Logger) *Welder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Welder{log: log}
}

// Weld welds faces with a silent welder.
func Weld(faces []stl.Face) *Indexed {
	return NewWelder(nil).Weld(faces)
}

// Weld converts faces into an indexed mesh. The first occurrence of a
// quantization bucket fixes the vertex position; every incident face adds
// its normal to the vertex, and the sums are normalized at the end.
func (w *Welder) Weld(faces []stl.Face) *Indexed {
	lookup := make(map[Key]uint32, len(faces))
	verts := make([]vertex, 0, len(faces))
	indices := make([]uint32, 0, len(faces)*3)

	for _, f := range faces {
		for _, p := range f.Vertices {
			key := KeyOf(p)
			idx, ok := lookup[key]
			if !ok {
				idx = uint32(len(verts))
				lookup[key] = idx
				verts = append(verts, vertex{pos: p})
			}
			verts[idx].normal = verts[idx].normal.Add(f.Normal)
			indices = append(indices, idx)
		}
	}

	m := &Indexed{
		Positions: make([]math.Vec3, len(verts)),
		Normals:   make([]math.Vec3, len(verts)),
		Indices:   indices,
	}
	degenerate := 0
	for i, v := range verts {
		m.Positions[i] = v.pos
		n := v.normal
		l := math32.Sqrt(n.X*n.X + n.Y*n.Y + n.Z*n.Z)
		if l > minNormalLength {
			m.Normals[i] = math.Vec3{X: n.X / l, Y: n.Y / l, Z: n.Z / l}
		} else {
			degenerate++
		}
	}

	w.log.Debug("welded triangle soup",
		zap.Int("faces", len(faces)),
		zap.Int("vertices", len(verts)),
		zap.Int("degenerate_normals", degenerate),
	)
	return m
}

// VertexCount returns the number of unique vertices.
func (m *Indexed) VertexCount() int {
	return len(m.Positions)
}

// TriangleCount returns the number of triangles.
func (m *Indexed) TriangleCount() int {
	return len(m.Indices) / 3
}

// DegenerateNormals counts vertices whose normals cancelled out.
func (m *Indexed) DegenerateNormals() int {
	n := 0
	for _, v := range m.Normals {
		if v == (math.Vec3{}) {
			n++
		}
	}
	return n
}

// Bounds returns the axis-aligned bounding box of the positions.
// ok is false for an empty mesh.
func (m *Indexed) Bounds() (lo, hi math.Vec3, ok bool) {
	if len(m.Positions) == 0 {
		return math.Vec3{}, math.Vec3{}, false
	}
	lo, hi = m.Positions[0], m.Positions[0]
	for _, p := range m.Positions[1:] {
		lo = lo.Min(p)
		hi = hi.Max(p)
	}
	return lo, hi, true
}

// PositionData returns positions as a flat x0,y0,z0,x1,... array.
func (m *Indexed) PositionData() []float32 {
	return flatten(m.Positions)
}

// NormalData returns normals as a flat x0,y0,z0,x1,... array.
func (m *Indexed) NormalData() []float32 {
	return flatten(m.Normals)
}

func flatten(vs []math.Vec3) []float32 {
	out := make([]float32, 0, len(vs)*3)
	for _, v := range vs {
		out = append(out, v.X, v.Y, v.Z)
	}
	return out
}

// Validate checks the structural invariants of the mesh.
func (m *Indexed) Validate() error {
	if len(m.Positions) != len(m.Normals) {
		return fmt.Errorf("%d positions but %d normals", len(m.Positions), len(m.Normals))
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("index count %d is not a multiple of 3", len(m.Indices))
	}
	for i, idx := range m.Indices {
		if int(idx) >= len(m.Positions) {
			return fmt.Errorf("index %d out of range: %d >= %d", i, idx, len(m.Positions))
		}
	}
	return nil
}
