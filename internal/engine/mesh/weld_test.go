package mesh

import (
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/stlview/pkg/math"
	"github.com/Faultbox/stlview/pkg/stl"
)

func tri(n math.Vec3, a, b, c math.Vec3) stl.Face {
	return stl.Face{Normal: n, Vertices: [3]math.Vec3{a, b, c}}
}

// cubeFaces returns 12 triangles of an axis-aligned unit cube centered on the
// origin. Each side is pushed out along its normal by offset, so a non-zero
// offset gives every side its own copy of its four corners.
func cubeFaces(offset float32) []stl.Face {
	sides := []struct {
		n    math.Vec3
		u, v math.Vec3
	}{
		{math.Vec3{X: 1}, math.Vec3{Y: 1}, math.Vec3{Z: 1}},
		{math.Vec3{X: -1}, math.Vec3{Z: 1}, math.Vec3{Y: 1}},
		{math.Vec3{Y: 1}, math.Vec3{Z: 1}, math.Vec3{X: 1}},
		{math.Vec3{Y: -1}, math.Vec3{X: 1}, math.Vec3{Z: 1}},
		{math.Vec3{Z: 1}, math.Vec3{X: 1}, math.Vec3{Y: 1}},
		{math.Vec3{Z: -1}, math.Vec3{Y: 1}, math.Vec3{X: 1}},
	}

	var faces []stl.Face
	for _, s := range sides {
		center := s.n.Scale(0.5 + offset)
		corner := func(a, b float32) math.Vec3 {
			return center.Add(s.u.Scale(a)).Add(s.v.Scale(b))
		}
		p00, p10 := corner(-0.5, -0.5), corner(0.5, -0.5)
		p11, p01 := corner(0.5, 0.5), corner(-0.5, 0.5)
		faces = append(faces,
			tri(s.n, p00, p10, p11),
			tri(s.n, p00, p11, p01),
		)
	}
	return faces
}

func assertInvariants(t *testing.T, faces []stl.Face, m *Indexed) {
	t.Helper()
	if err := m.Validate(); err != nil {
		t.Fatalf("invalid mesh: %v", err)
	}
	if len(m.Indices) != 3*len(faces) {
		t.Errorf("index count %d, want %d", len(m.Indices), 3*len(faces))
	}
	if m.VertexCount() > 3*len(faces) {
		t.Errorf("vertex count %d exceeds %d", m.VertexCount(), 3*len(faces))
	}
	for i, n := range m.Normals {
		if n == (math.Vec3{}) {
			continue
		}
		if l := n.Length(); l < 1-1e-6 || l > 1+1e-6 {
			t.Errorf("normal %d has length %v", i, l)
		}
	}
}

func TestWeldEmpty(t *testing.T) {
	m := Weld(nil)
	if m.VertexCount() != 0 || len(m.Indices) != 0 {
		t.Errorf("expected empty mesh, got %d vertices %d indices", m.VertexCount(), len(m.Indices))
	}
	if _, _, ok := m.Bounds(); ok {
		t.Error("expected no bounds for empty mesh")
	}
}

func TestWeldSharedCube(t *testing.T) {
	faces := cubeFaces(0)
	m := Weld(faces)
	assertInvariants(t, faces, m)

	if m.VertexCount() != 8 {
		t.Fatalf("expected 8 unique corners, got %d", m.VertexCount())
	}
	if m.DegenerateNormals() != 0 {
		t.Errorf("expected no degenerate normals, got %d", m.DegenerateNormals())
	}
	// Every corner normal leans out towards its own corner.
	for i, p := range m.Positions {
		n := m.Normals[i]
		if n.X*p.X <= 0 || n.Y*p.Y <= 0 || n.Z*p.Z <= 0 {
			t.Errorf("corner %v has inward normal %v", p, n)
		}
	}
}

func TestWeldSplitCube(t *testing.T) {
	faces := cubeFaces(0.01)
	m := Weld(faces)
	assertInvariants(t, faces, m)

	if m.VertexCount() != 24 {
		t.Fatalf("expected 24 per-side corners, got %d", m.VertexCount())
	}
	// Each corner belongs to one side only, so it keeps that side's normal.
	for _, f := range faces {
		for _, p := range f.Vertices {
			idx := indexOf(t, m, p)
			if m.Normals[idx] != f.Normal {
				t.Errorf("corner %v normal %v, want %v", p, m.Normals[idx], f.Normal)
			}
		}
	}
}

func TestWeldCancellingSliver(t *testing.T) {
	a := math.Vec3{X: 0, Y: 0, Z: 0}
	b := math.Vec3{X: 1, Y: 0, Z: 0}
	c := math.Vec3{X: 0, Y: 1, Z: 0}
	d := math.Vec3{X: 1, Y: 1, Z: 0}
	up := math.Vec3{Z: 1}
	down := math.Vec3{Z: -1}
	faces := []stl.Face{
		tri(up, a, b, c),
		tri(down, b, c, d),
	}

	m := Weld(faces)
	assertInvariants(t, faces, m)

	if m.VertexCount() != 4 {
		t.Fatalf("expected 4 vertices, got %d", m.VertexCount())
	}
	want := map[math.Vec3]math.Vec3{
		a: up,
		b: {},
		c: {},
		d: down,
	}
	for p, n := range want {
		if got := m.Normals[indexOf(t, m, p)]; got != n {
			t.Errorf("normal at %v = %v, want %v", p, got, n)
		}
	}
	if m.DegenerateNormals() != 2 {
		t.Errorf("expected 2 degenerate normals, got %d", m.DegenerateNormals())
	}
	wantIdx := []uint32{0, 1, 2, 1, 2, 3}
	for i := range wantIdx {
		if m.Indices[i] != wantIdx[i] {
			t.Errorf("indices = %v, want %v", m.Indices, wantIdx)
			break
		}
	}
}

func TestWeldTolerance(t *testing.T) {
	base := math.Vec3{X: 1, Y: 1, Z: 1}
	n := math.Vec3{Z: 1}
	other := math.Vec3{X: 5, Y: 5, Z: 5}
	third := math.Vec3{X: 6, Y: 5, Z: 5}

	tests := []struct {
		name  string
		p     math.Vec3
		welds bool
	}{
		{"identical", base, true},
		{"within on all axes", math.Vec3{X: 1.00004, Y: 0.99996, Z: 1.00002}, true},
		{"beyond on x", math.Vec3{X: 1.00011, Y: 1, Z: 1}, false},
		{"beyond on z only", math.Vec3{X: 1, Y: 1.00001, Z: 0.9998}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Weld([]stl.Face{
				tri(n, base, other, third),
				tri(n, tt.p, third, other),
			})
			want := 3
			if !tt.welds {
				want = 4
			}
			if m.VertexCount() != want {
				t.Errorf("vertex count %d, want %d", m.VertexCount(), want)
			}
		})
	}
}

func TestWeldFirstOccurrenceWins(t *testing.T) {
	first := math.Vec3{X: 2, Y: 2, Z: 2}
	later := math.Vec3{X: 2.00003, Y: 2, Z: 2}
	n := math.Vec3{Y: 1}
	faces := []stl.Face{
		tri(n, first, math.Vec3{X: 3}, math.Vec3{Z: 3}),
		tri(n, math.Vec3{Z: 3}, later, math.Vec3{X: 3}),
	}

	m := Weld(faces)
	if m.VertexCount() != 3 {
		t.Fatalf("expected 3 vertices, got %d", m.VertexCount())
	}
	if m.Positions[0] != first {
		t.Errorf("canonical position %v, want first occurrence %v", m.Positions[0], first)
	}

	// Reversing the faces keeps the other raw position instead.
	faces[0], faces[1] = faces[1], faces[0]
	m = Weld(faces)
	if got := m.Positions[m.Indices[1]]; got != later {
		t.Errorf("canonical position %v, want %v", got, later)
	}
}

func TestWeldOrderIndependent(t *testing.T) {
	faces := cubeFaces(0)
	reversed := make([]stl.Face, len(faces))
	for i, f := range faces {
		reversed[len(faces)-1-i] = f
	}

	a := Weld(faces)
	b := Weld(reversed)

	if a.VertexCount() != b.VertexCount() {
		t.Fatalf("vertex counts differ: %d vs %d", a.VertexCount(), b.VertexCount())
	}
	for i, p := range a.Positions {
		j := indexOf(t, b, p)
		if d := a.Normals[i].Sub(b.Normals[j]).Length(); d > 1e-6 {
			t.Errorf("normal at %v differs: %v vs %v", p, a.Normals[i], b.Normals[j])
		}
	}
}

func TestWeldRandomSoup(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	// A coarse grid makes many corners collide.
	coord := func() float32 { return float32(r.IntN(4)) * 0.5 }
	point := func() math.Vec3 { return math.Vec3{X: coord(), Y: coord(), Z: coord()} }

	faces := make([]stl.Face, 500)
	for i := range faces {
		faces[i] = tri(point(), point(), point(), point())
	}

	m := Weld(faces)
	assertInvariants(t, faces, m)
	if m.VertexCount() > 64 {
		t.Errorf("expected at most 64 grid vertices, got %d", m.VertexCount())
	}
	for i, f := range faces {
		for j, p := range f.Vertices {
			if got := m.Positions[m.Indices[i*3+j]]; got != p {
				t.Fatalf("face %d vertex %d resolves to %v, want %v", i, j, got, p)
			}
		}
	}
}

func TestIndexedData(t *testing.T) {
	m := &Indexed{
		Positions: []math.Vec3{{X: 1, Y: 2, Z: 3}, {X: 4, Y: 5, Z: 6}},
		Normals:   []math.Vec3{{X: 0, Y: 0, Z: 1}, {X: 0, Y: 1, Z: 0}},
		Indices:   []uint32{0, 1, 1},
	}
	pos := m.PositionData()
	want := []float32{1, 2, 3, 4, 5, 6}
	if len(pos) != len(want) {
		t.Fatalf("PositionData length %d, want %d", len(pos), len(want))
	}
	for i := range want {
		if pos[i] != want[i] {
			t.Errorf("PositionData = %v, want %v", pos, want)
			break
		}
	}
	if nrm := m.NormalData(); nrm[2] != 1 || nrm[4] != 1 {
		t.Errorf("NormalData = %v", nrm)
	}
	if m.TriangleCount() != 1 {
		t.Errorf("TriangleCount = %d, want 1", m.TriangleCount())
	}
	lo, hi, ok := m.Bounds()
	if !ok || lo != m.Positions[0] || hi != m.Positions[1] {
		t.Errorf("Bounds = %v %v %v", lo, hi, ok)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		m    Indexed
		want string
	}{
		{
			name: "length mismatch",
			m:    Indexed{Positions: make([]math.Vec3, 2), Normals: make([]math.Vec3, 1)},
			want: "normals",
		},
		{
			name: "partial triangle",
			m:    Indexed{Positions: make([]math.Vec3, 1), Normals: make([]math.Vec3, 1), Indices: []uint32{0, 0}},
			want: "multiple of 3",
		},
		{
			name: "out of range",
			m:    Indexed{Positions: make([]math.Vec3, 2), Normals: make([]math.Vec3, 2), Indices: []uint32{0, 1, 2}},
			want: "out of range",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.m.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.stl")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create file: %v", err)
	}
	if err := stl.EncodeBinary(f, "cube", cubeFaces(0)); err != nil {
		t.Fatalf("failed to write STL: %v", err)
	}
	f.Close()

	m, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if m.VertexCount() != 8 || m.TriangleCount() != 12 {
		t.Errorf("got %d vertices %d triangles, want 8 and 12", m.VertexCount(), m.TriangleCount())
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.stl")
	if err := os.WriteFile(garbage, []byte("not a mesh"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	tests := []struct {
		name string
		path string
		want error
	}{
		{"missing", filepath.Join(dir, "missing.stl"), os.ErrNotExist},
		{"unparsable", garbage, stl.ErrTruncated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := LoadFile(tt.path)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if m != nil {
				t.Error("expected no mesh on failure")
			}
			if err != nil && !strings.Contains(err.Error(), tt.path) {
				t.Errorf("error %q should name the path", err)
			}
		})
	}
}

// indexOf finds the welded vertex holding exactly p.
func indexOf(t *testing.T, m *Indexed, p math.Vec3) int {
	t.Helper()
	for i, q := range m.Positions {
		if q == p {
			return i
		}
	}
	t.Fatalf("position %v not in mesh %v", p, m.Positions)
	return -1
}
