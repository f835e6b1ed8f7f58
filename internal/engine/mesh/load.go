package mesh

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/stlview/pkg/stl"
)

// LoadFile parses an STL file and welds it.
// Open and parse failures abort the load; no partial mesh is returned.
func (w *Welder) LoadFile(path string) (*Indexed, error) {
	start := time.Now()

	surface, err := stl.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	m := w.Weld(surface.Faces)

	w.log.Info("mesh loaded",
		zap.String("path", path),
		zap.Stringer("format", surface.Format),
		zap.Int("faces", len(surface.Faces)),
		zap.Int("vertices", m.VertexCount()),
		zap.Int("degenerate_normals", m.DegenerateNormals()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return m, nil
}

// LoadFile loads and welds an STL file with a silent welder.
func LoadFile(path string) (*Indexed, error) {
	return NewWelder(nil).LoadFile(path)
}
