package renderer

import (
	"encoding/binary"
	"math"
)

// VertexSize is the byte size of one marshaled Vertex (vec3 position + vec2 uv).
const VertexSize = 20

// Vertex is one corner of the shared box mesh.
type Vertex struct {
	Position [3]float32 // offset 0
	UV       [2]float32 // offset 12
}

// boxFaces lists the four corners of each face of a unit cube centered on the origin, counter-clockwise
// when viewed from outside.
var boxFaces = [6][4][3]float32{
	{{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5}},     // +z
	{{0.5, -0.5, -0.5}, {-0.5, -0.5, -0.5}, {-0.5, 0.5, -0.5}, {0.5, 0.5, -0.5}}, // -z
	{{0.5, -0.5, 0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {0.5, 0.5, 0.5}},     // +x
	{{-0.5, -0.5, -0.5}, {-0.5, -0.5, 0.5}, {-0.5, 0.5, 0.5}, {-0.5, 0.5, -0.5}}, // -x
	{{-0.5, 0.5, 0.5}, {0.5, 0.5, 0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5}},     // +y
	{{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, -0.5, 0.5}, {-0.5, -0.5, 0.5}}, // -y
}

var faceUVs = [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

// BoxMesh returns the vertices and triangle-list indices of a unit cube with per-face UVs.
// Instances scale it vertically by their height and translate it to their position.
//
// Returns:
//   - []Vertex: 24 vertices, four per face
//   - []uint32: 36 indices, two triangles per face
func BoxMesh() ([]Vertex, []uint32) {
	vertices := make([]Vertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, face := range boxFaces {
		base := uint32(len(vertices))
		for i, corner := range face {
			vertices = append(vertices, Vertex{Position: corner, UV: faceUVs[i]})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return vertices, indices
}

func marshalVertices(vertices []Vertex) []byte {
	buf := make([]byte, len(vertices)*VertexSize)
	for i, v := range vertices {
		off := i * VertexSize
		binary.LittleEndian.PutUint32(buf[off:], math.Float32bits(v.Position[0]))
		binary.LittleEndian.PutUint32(buf[off+4:], math.Float32bits(v.Position[1]))
		binary.LittleEndian.PutUint32(buf[off+8:], math.Float32bits(v.Position[2]))
		binary.LittleEndian.PutUint32(buf[off+12:], math.Float32bits(v.UV[0]))
		binary.LittleEndian.PutUint32(buf[off+16:], math.Float32bits(v.UV[1]))
	}
	return buf
}

func marshalIndices(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}
