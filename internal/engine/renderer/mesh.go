package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/stlview/internal/engine/mesh"
)

// Attribute locations shared with mesh.vert.
const (
	attribPosition = 0
	attribNormal   = 1
)

// GPUMesh is a welded mesh uploaded to one VAO with separate position and
// normal buffers and an element buffer.
type GPUMesh struct {
	vao, positionVBO, normalVBO, ebo uint32
	indexCount                       int32
}

// UploadMesh copies m to the GPU. The mesh must satisfy Validate.
func UploadMesh(m *mesh.Indexed) (*GPUMesh, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	if len(m.Indices) == 0 {
		return nil, fmt.Errorf("upload: mesh has no triangles")
	}

	g := &GPUMesh{indexCount: int32(len(m.Indices))}

	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)

	g.positionVBO = uploadAttribute(attribPosition, m.PositionData())
	g.normalVBO = uploadAttribute(attribNormal, m.NormalData())

	gl.GenBuffers(1, &g.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, gl.Ptr(m.Indices), gl.STATIC_DRAW)

	gl.BindVertexArray(0)
	return g, nil
}

func uploadAttribute(location uint32, data []float32) uint32 {
	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
	gl.VertexAttribPointerWithOffset(location, 3, gl.FLOAT, false, 3*4, 0)
	gl.EnableVertexAttribArray(location)
	return vbo
}

// IndexCount returns the number of indices drawn.
func (g *GPUMesh) IndexCount() int32 {
	return g.indexCount
}

// Release deletes the GPU buffers. Calling it twice is safe.
func (g *GPUMesh) Release() {
	if g.vao == 0 {
		return
	}
	buffers := []uint32{g.positionVBO, g.normalVBO, g.ebo}
	gl.DeleteBuffers(int32(len(buffers)), &buffers[0])
	gl.DeleteVertexArrays(1, &g.vao)
	g.vao, g.positionVBO, g.normalVBO, g.ebo = 0, 0, 0, 0
}

func (g *GPUMesh) draw() {
	gl.BindVertexArray(g.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, g.indexCount, gl.UNSIGNED_INT, 0)
}
