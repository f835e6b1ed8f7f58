package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/qmuntal/gltf"

	"github.com/Faultbox/stlview/pkg/stl"
)

const asciiTetra = `solid tetra
facet normal 0 0 -1
  outer loop
    vertex 0 0 0
    vertex 0 1 0
    vertex 1 0 0
  endloop
endfacet
facet normal 0 -1 0
  outer loop
    vertex 0 0 0
    vertex 1 0 0
    vertex 0 0 1
  endloop
endfacet
facet normal -1 0 0
  outer loop
    vertex 0 0 0
    vertex 0 0 1
    vertex 0 1 0
  endloop
endfacet
facet normal 0.577 0.577 0.577
  outer loop
    vertex 1 0 0
    vertex 0 1 0
    vertex 0 0 1
  endloop
endfacet
endsolid tetra
`

func writeTetra(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tetra.stl")
	if err := os.WriteFile(path, []byte(asciiTetra), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestInfo(t *testing.T) {
	path := writeTetra(t)

	var out bytes.Buffer
	if err := run("info", []string{path}, &out); err != nil {
		t.Fatalf("info failed: %v", err)
	}
	for _, want := range []string{"Format:    ascii", "Name:      tetra", "Triangles: 4", "Max:       1.0000 1.0000 1.0000"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestWeld(t *testing.T) {
	path := writeTetra(t)

	var out bytes.Buffer
	if err := run("weld", []string{path}, &out); err != nil {
		t.Fatalf("weld failed: %v", err)
	}
	for _, want := range []string{"Raw vertices:       12", "Unique vertices:    4", "Indices:            12", "Weld ratio:         3.00"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestExport(t *testing.T) {
	path := writeTetra(t)
	dst := filepath.Join(t.TempDir(), "tetra.glb")

	var out bytes.Buffer
	if err := run("export", []string{path, dst}, &out); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	doc, err := gltf.Open(dst)
	if err != nil {
		t.Fatalf("failed to open export: %v", err)
	}
	if len(doc.Meshes) != 1 || doc.Meshes[0].Name != "tetra" {
		t.Fatalf("unexpected meshes %+v", doc.Meshes)
	}
	pos := doc.Accessors[doc.Meshes[0].Primitives[0].Attributes[gltf.POSITION]]
	if pos.Count != 4 {
		t.Errorf("exported %d positions, want 4", pos.Count)
	}
}

func TestConvert(t *testing.T) {
	path := writeTetra(t)
	dst := filepath.Join(t.TempDir(), "tetra-bin.stl")

	var out bytes.Buffer
	if err := run("convert", []string{path, dst}, &out); err != nil {
		t.Fatalf("convert failed: %v", err)
	}

	s, err := stl.ParseFile(dst)
	if err != nil {
		t.Fatalf("failed to parse converted file: %v", err)
	}
	if s.Format != stl.FormatBinary {
		t.Errorf("Format = %v, want binary", s.Format)
	}
	if s.Name != "tetra" {
		t.Errorf("Name = %q, want tetra", s.Name)
	}
	if len(s.Faces) != 4 {
		t.Fatalf("got %d faces, want 4", len(s.Faces))
	}
	if s.Faces[3].Vertices[2].Z != 1 {
		t.Errorf("last vertex = %v", s.Faces[3].Vertices[2])
	}
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		command string
		args    []string
	}{
		{"bogus", nil},
		{"info", nil},
		{"weld", nil},
		{"export", []string{"only-one.stl"}},
		{"convert", nil},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			var out bytes.Buffer
			if err := run(tt.command, tt.args, &out); !errors.Is(err, errUsage) {
				t.Errorf("expected usage error, got %v", err)
			}
		})
	}
}

func TestMissingInput(t *testing.T) {
	var out bytes.Buffer
	err := run("weld", []string{filepath.Join(t.TempDir(), "missing.stl")}, &out)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
