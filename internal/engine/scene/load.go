package scene

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Faultbox/stlview/internal/engine/mesh"
	"github.com/Faultbox/stlview/pkg/math"
)

// UploadFunc hands a welded mesh to the GPU layer.
type UploadFunc func(*mesh.Indexed) (MeshHandle, error)

// ObjectSpec describes one STL file to place in the scene.
type ObjectSpec struct {
	Path         string
	Position     math.Vec3
	Angle        float32
	AngularSpeed float32
	Scale        float32
}

// LoadObjects welds and uploads every spec in order. On any failure the
// meshes uploaded so far are released and no objects are returned.
func LoadObjects(specs []ObjectSpec, welder *mesh.Welder, upload UploadFunc) ([]*Object, error) {
	objects := make([]*Object, 0, len(specs))
	release := func() {
		for _, o := range objects {
			o.Mesh.Release()
		}
	}

	for _, spec := range specs {
		m, err := welder.LoadFile(spec.Path)
		if err != nil {
			release()
			return nil, err
		}
		handle, err := upload(m)
		if err != nil {
			release()
			return nil, fmt.Errorf("uploading %s: %w", spec.Path, err)
		}

		o := NewObject(objectName(spec.Path), handle, spec.Position)
		o.Angle = spec.Angle
		o.AngularSpeed = spec.AngularSpeed
		o.ScaleFactor = spec.Scale
		objects = append(objects, o)
	}
	return objects, nil
}

func objectName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
