package layoutview

import "math"

// Matrix represents a 2D affine transformation matrix.
// It uses a 2x3 matrix in row-major order:
//
//	| A  B  C |
//	| D  E  F |
//
// This represents the transformation:
//
//	x' = A*x + B*y + C
//	y' = D*x + E*y + F
type Matrix struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transformation matrix.
func Identity() Matrix {
	return Matrix{
		A: 1, B: 0, C: 0,
		D: 0, E: 1, F: 0,
	}
}

// Translate creates a translation matrix.
func Translate(x, y float64) Matrix {
	return Matrix{
		A: 1, B: 0, C: x,
		D: 0, E: 1, F: y,
	}
}

// Scale creates a scaling matrix.
func Scale(x, y float64) Matrix {
	return Matrix{
		A: x, B: 0, C: 0,
		D: 0, E: y, F: 0,
	}
}

// Rotate creates a rotation matrix (angle in radians).
func Rotate(angle float64) Matrix {
	sin, cos := math.Sincos(angle)
	return Matrix{
		A: cos, B: -sin, C: 0,
		D: sin, E: cos, F: 0,
	}
}

// RotateDegrees creates a rotation matrix from an angle in degrees.
// Cardinal angles (multiples of 90) produce exact matrix entries, so a
// 90-degree placement maps integer coordinates to integer coordinates.
// Layout formats express rotation in degrees and cardinal placements
// dominate real designs, so the exactness matters downstream.
func RotateDegrees(deg float64) Matrix {
	switch math.Mod(math.Mod(deg, 360)+360, 360) {
	case 0:
		return Identity()
	case 90:
		return Matrix{A: 0, B: -1, C: 0, D: 1, E: 0, F: 0}
	case 180:
		return Matrix{A: -1, B: 0, C: 0, D: 0, E: -1, F: 0}
	case 270:
		return Matrix{A: 0, B: 1, C: 0, D: -1, E: 0, F: 0}
	}
	return Rotate(deg * math.Pi / 180)
}

// ReflectX creates a reflection about the x axis.
func ReflectX() Matrix {
	return Scale(1, -1)
}

// Multiply multiplies two matrices (m * other).
// The combined transform applies other first, then m.
func (m Matrix) Multiply(other Matrix) Matrix {
	return Matrix{
		A: m.A*other.A + m.B*other.D,
		B: m.A*other.B + m.B*other.E,
		C: m.A*other.C + m.B*other.F + m.C,
		D: m.D*other.A + m.E*other.D,
		E: m.D*other.B + m.E*other.E,
		F: m.D*other.C + m.E*other.F + m.F,
	}
}

// TransformPoint applies the transformation to a point.
func (m Matrix) TransformPoint(p Point) Point {
	return Point{
		X: m.A*p.X + m.B*p.Y + m.C,
		Y: m.D*p.X + m.E*p.Y + m.F,
	}
}

// TransformVector applies the transformation to a vector (no translation).
func (m Matrix) TransformVector(p Point) Point {
	return Point{
		X: m.A*p.X + m.B*p.Y,
		Y: m.D*p.X + m.E*p.Y,
	}
}

// TransformRect returns the axis-aligned bounding box of the transformed
// rectangle corners.
func (m Matrix) TransformRect(r Rect) Rect {
	if r.IsEmpty() {
		return r
	}
	out := EmptyRect()
	out = out.UnionPoint(m.TransformPoint(Pt(r.MinX, r.MinY)))
	out = out.UnionPoint(m.TransformPoint(Pt(r.MaxX, r.MinY)))
	out = out.UnionPoint(m.TransformPoint(Pt(r.MaxX, r.MaxY)))
	out = out.UnionPoint(m.TransformPoint(Pt(r.MinX, r.MaxY)))
	return out
}

// Invert returns the inverse matrix.
// Returns the identity matrix if the matrix is not invertible.
func (m Matrix) Invert() Matrix {
	det := m.A*m.E - m.B*m.D
	if math.Abs(det) < 1e-10 {
		return Identity()
	}

	invDet := 1.0 / det
	return Matrix{
		A: m.E * invDet,
		B: -m.B * invDet,
		C: (m.B*m.F - m.C*m.E) * invDet,
		D: -m.D * invDet,
		E: m.A * invDet,
		F: (m.C*m.D - m.A*m.F) * invDet,
	}
}

// IsIdentity returns true if the matrix is the identity matrix.
func (m Matrix) IsIdentity() bool {
	return m.A == 1 && m.B == 0 && m.C == 0 &&
		m.D == 0 && m.E == 1 && m.F == 0
}

// Det returns the determinant of the linear part.
// A negative determinant means the transform flips orientation
// (an odd number of reflections).
func (m Matrix) Det() float64 {
	return m.A*m.E - m.B*m.D
}
