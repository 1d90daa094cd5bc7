package math

// Vertex3D is the vertex layout used by the renderer. All fields are plain
// float32 so the struct maps byte for byte onto the vertex buffer.
type Vertex3D struct {
	Position Vec3
	Normal   Vec3
	Texcoord Vec2
	Colour   Vec4
}
