// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// MeshVertexShader transforms welded mesh vertices and their normals.
//
//go:embed mesh.vert
var MeshVertexShader string

// MeshFragmentShader shades meshes with one directional light.
//
//go:embed mesh.frag
var MeshFragmentShader string
