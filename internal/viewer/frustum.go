package viewer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	NearPlane float32 = 0.1
	FarPlane  float32 = 1000.0
)

// Frustum represents the 6 planes of a view frustum for culling
type Frustum struct {
	planes [6]Plane // left, right, bottom, top, near, far
}

// Plane represents a plane in 3D space (ax + by + cz + d = 0)
type Plane struct {
	normal   rl.Vector3
	distance float32
}

// ExtractFrustum builds the frustum of camera at the given aspect ratio.
func ExtractFrustum(camera rl.Camera3D, aspect float32) Frustum {
	view := rl.MatrixLookAt(camera.Position, camera.Target, camera.Up)

	var proj rl.Matrix
	if camera.Projection == rl.CameraPerspective {
		proj = rl.MatrixPerspective(camera.Fovy*rl.Deg2rad, aspect, NearPlane, FarPlane)
	} else {
		halfH := camera.Fovy / 2.0
		halfW := halfH * aspect
		proj = rl.MatrixOrtho(-halfW, halfW, -halfH, halfH, NearPlane, FarPlane)
	}

	// Combine view and projection: VP = P * V
	return FrustumFromMatrix(rl.MatrixMultiply(view, proj))
}

// FrustumFromMatrix extracts the planes of a view-projection matrix with the
// Gribb/Hartmann method.
func FrustumFromMatrix(vp rl.Matrix) Frustum {
	// Rows of the matrix as (x, y, z, w)
	row := func(i int) [4]float32 {
		switch i {
		case 0:
			return [4]float32{vp.M0, vp.M4, vp.M8, vp.M12}
		case 1:
			return [4]float32{vp.M1, vp.M5, vp.M9, vp.M13}
		case 2:
			return [4]float32{vp.M2, vp.M6, vp.M10, vp.M14}
		}
		return [4]float32{vp.M3, vp.M7, vp.M11, vp.M15}
	}
	w := row(3)
	plane := func(r [4]float32, sign float32) Plane {
		return normalizePlane(Plane{
			normal:   rl.Vector3{X: w[0] + sign*r[0], Y: w[1] + sign*r[1], Z: w[2] + sign*r[2]},
			distance: w[3] + sign*r[3],
		})
	}

	var f Frustum
	f.planes[0] = plane(row(0), 1)  // left
	f.planes[1] = plane(row(0), -1) // right
	f.planes[2] = plane(row(1), 1)  // bottom
	f.planes[3] = plane(row(1), -1) // top
	f.planes[4] = plane(row(2), 1)  // near
	f.planes[5] = plane(row(2), -1) // far
	return f
}

// normalizePlane normalizes a plane equation
func normalizePlane(p Plane) Plane {
	length := rl.Vector3Length(p.normal)
	if length == 0 {
		return p
	}
	return Plane{
		normal:   rl.Vector3Scale(p.normal, 1.0/length),
		distance: p.distance / length,
	}
}

// ContainsSphere tests if a sphere is inside or intersects the frustum
// Returns true if the sphere should be rendered
func (f *Frustum) ContainsSphere(center rl.Vector3, radius float32) bool {
	for i := 0; i < 6; i++ {
		// If sphere is completely behind any plane, it's outside
		if rl.Vector3DotProduct(f.planes[i].normal, center)+f.planes[i].distance < -radius {
			return false
		}
	}
	return true
}

// ContainsPoint tests if a point is inside the frustum
func (f *Frustum) ContainsPoint(point rl.Vector3) bool {
	for i := 0; i < 6; i++ {
		if rl.Vector3DotProduct(f.planes[i].normal, point)+f.planes[i].distance < 0 {
			return false
		}
	}
	return true
}
