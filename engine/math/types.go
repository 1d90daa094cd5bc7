package math

type Vec2 struct {
	X, Y float32
}

type Vec3 struct {
	X, Y, Z float32
}

type Vec4 struct {
	X, Y, Z, W float32
}

// Mat4 is a 4x4 matrix stored in column-major order, matching what the
// shaders expect without transposition.
type Mat4 struct {
	Data [16]float32
}
