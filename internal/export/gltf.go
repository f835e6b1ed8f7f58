// Package export writes welded meshes as glTF 2.0 binaries.
package export

import (
	"errors"
	"fmt"
	"io"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/stlview/internal/engine/mesh"
)

// ErrEmptyMesh is returned when there is nothing to export.
var ErrEmptyMesh = errors.New("mesh has no triangles")

// Document builds a single-node glTF document holding m as one indexed
// triangle primitive with POSITION and NORMAL attributes.
func Document(name string, m *mesh.Indexed) (*gltf.Document, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if len(m.Indices) == 0 {
		return nil, ErrEmptyMesh
	}

	doc := gltf.NewDocument()
	doc.Asset.Generator = "stlview meshtool"

	positions := make([][3]float32, len(m.Positions))
	for i, p := range m.Positions {
		positions[i] = p.Array()
	}
	normals := make([][3]float32, len(m.Normals))
	for i, n := range m.Normals {
		normals[i] = n.Array()
	}

	pos := modeler.WritePosition(doc, positions)
	nrm := modeler.WriteNormal(doc, normals)
	idx := modeler.WriteIndices(doc, m.Indices)

	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: name,
		Primitives: []*gltf.Primitive{{
			Indices: gltf.Index(idx),
			Attributes: gltf.PrimitiveAttributes{
				gltf.POSITION: pos,
				gltf.NORMAL:   nrm,
			},
		}},
	})
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: name, Mesh: gltf.Index(len(doc.Meshes) - 1)})
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	return doc, nil
}

// WriteGLB encodes m as a binary glTF to w.
func WriteGLB(w io.Writer, name string, m *mesh.Indexed) error {
	doc, err := Document(name, m)
	if err != nil {
		return fmt.Errorf("export %s: %w", name, err)
	}
	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("export %s: %w", name, err)
	}
	return nil
}

// SaveGLB writes m as a binary glTF file.
func SaveGLB(path, name string, m *mesh.Indexed) error {
	doc, err := Document(name, m)
	if err != nil {
		return fmt.Errorf("export %s: %w", name, err)
	}
	return gltf.SaveBinary(doc, path)
}
