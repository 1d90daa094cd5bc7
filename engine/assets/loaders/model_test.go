package loaders

import (
	"strings"
	"testing"
)

const triangleOBJ = `
v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vt 1 0
vt 0 1
vn 0 0 1
f 1/1/1 2/2/1 3/3/1
`

const quadOBJ = `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
f 1 2 3 4
`

func TestDecodeModelTriangle(t *testing.T) {
	md, err := decodeModel(strings.NewReader(triangleOBJ))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(md.Vertices) != 3 {
		t.Fatalf("expected 3 vertices, got %d", len(md.Vertices))
	}
	if len(md.Indices) != 3 {
		t.Fatalf("expected 3 indices, got %d", len(md.Indices))
	}
	if md.Vertices[1].Position.X != 1 {
		t.Fatalf("vertex positions out of order: %+v", md.Vertices[1])
	}
	if md.Vertices[0].Normal.Z != 1 {
		t.Fatalf("normal not carried through: %+v", md.Vertices[0])
	}
	// OBJ texture space is flipped on V relative to Vulkan.
	if md.Vertices[2].Texcoord.Y != 0 {
		t.Fatalf("texcoord V should be flipped, got %+v", md.Vertices[2].Texcoord)
	}
}

func TestDecodeModelTriangulatesQuads(t *testing.T) {
	md, err := decodeModel(strings.NewReader(quadOBJ))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(md.Indices) != 6 {
		t.Fatalf("a quad should triangulate to 6 indices, got %d", len(md.Indices))
	}
	want := []uint32{0, 1, 2, 0, 2, 3}
	for i, idx := range want {
		if md.Indices[i] != idx {
			t.Fatalf("fan triangulation wrong at %d: got %v want %v", i, md.Indices, want)
		}
	}
}

func TestDecodeModelDefaultsWithoutTexcoordsAndNormals(t *testing.T) {
	md, err := decodeModel(strings.NewReader(quadOBJ))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range md.Vertices {
		if v.Colour.X != 1 || v.Colour.W != 1 {
			t.Fatalf("vertex %d colour should default to white, got %+v", i, v.Colour)
		}
		if v.Texcoord.X != 0 || v.Texcoord.Y != 0 {
			t.Fatalf("vertex %d texcoord should stay zero, got %+v", i, v.Texcoord)
		}
		if v.Normal.X != 0 || v.Normal.Y != 0 || v.Normal.Z != 0 {
			t.Fatalf("vertex %d normal should stay zero, got %+v", i, v.Normal)
		}
	}
}

func TestDecodeModelRejectsEmpty(t *testing.T) {
	if _, err := decodeModel(strings.NewReader("v 0 0 0\n")); err == nil {
		t.Fatal("expected an error for a model with no faces")
	}
}
