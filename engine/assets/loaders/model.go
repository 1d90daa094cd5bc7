package loaders

import (
	"fmt"
	"io"
	"os"

	"github.com/mokiat/go-data-front/decoder/obj"

	"github.com/vesta-engine/vesta/engine/math"
)

// MeshData is a triangulated model with one interleaved vertex stream.
type MeshData struct {
	Vertices []math.Vertex3D
	Indices  []uint32
}

// LoadModel reads a Wavefront OBJ file. Polygonal faces are triangulated
// with a fan so quads from common exporters work too.
func LoadModel(path string) (*MeshData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model %s: %w", path, err)
	}
	defer f.Close()

	md, err := decodeModel(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode model %s: %w", path, err)
	}
	return md, nil
}

func decodeModel(r io.Reader) (*MeshData, error) {
	decoder := obj.NewDecoder(obj.DefaultLimits())
	model, err := decoder.Decode(r)
	if err != nil {
		return nil, err
	}

	md := &MeshData{}
	for _, object := range model.Objects {
		for _, mesh := range object.Meshes {
			for _, face := range mesh.Faces {
				if len(face.References) < 3 {
					continue
				}
				base := uint32(len(md.Vertices))
				for _, ref := range face.References {
					md.Vertices = append(md.Vertices, vertexFromReference(model, ref))
				}
				for i := uint32(2); i < uint32(len(face.References)); i++ {
					md.Indices = append(md.Indices, base, base+i-1, base+i)
				}
			}
		}
	}

	if len(md.Vertices) == 0 {
		return nil, fmt.Errorf("model contains no faces")
	}
	return md, nil
}

func vertexFromReference(model *obj.Model, ref obj.Reference) math.Vertex3D {
	v := model.Vertices[ref.VertexIndex]
	vertex := math.Vertex3D{
		Position: math.NewVec3(float32(v.X), float32(v.Y), float32(v.Z)),
		Colour:   math.NewVec4One(),
	}
	if ref.HasTexCoord() {
		tc := model.TexCoords[ref.TexCoordIndex]
		vertex.Texcoord = math.NewVec2(float32(tc.U), 1.0-float32(tc.V))
	}
	if ref.HasNormal() {
		n := model.Normals[ref.NormalIndex]
		vertex.Normal = math.NewVec3(float32(n.X), float32(n.Y), float32(n.Z))
	}
	return vertex
}
