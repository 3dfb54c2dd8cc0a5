package physics

import (
	"rigid3d/internal/collision"
	"rigid3d/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
	"golang.org/x/exp/slices"
)

// Collider is the per-tick view of one collider component.
type Collider struct {
	Entity      uint64
	Body        int // index into the body slice, or StaticBody
	Shape       collision.Shape
	Offset      rl.Vector3 // body-frame offset of the shape center
	Friction    float32
	Restitution float32
	Density     float32
	IsSensor    bool
	Position    rl.Vector3
	Rotation    rl.Quaternion
	AABB        collision.AABB
}

func (c *Collider) Instance() collision.Instance {
	return collision.Instance{Entity: c.Entity, Shape: c.Shape, Position: c.Position, Rotation: c.Rotation}
}

// follow moves the collider with its body.
func (c *Collider) follow(b *Body) {
	c.Position = rl.Vector3Add(b.Position, rl.Vector3RotateByQuaternion(c.Offset, b.Rotation))
	c.Rotation = b.Rotation
	c.AABB = c.Shape.WorldAABB(c.Position, c.Rotation)
}

// BodyState is the committed pose and velocity of one body after a tick.
type BodyState struct {
	Entity          uint64
	Position        rl.Vector3
	Rotation        rl.Quaternion
	LinearVelocity  rl.Vector3
	AngularVelocity rl.Vector3
}

// Snapshot returns the committed body states sorted by entity.
func (w *World) Snapshot() []BodyState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]BodyState, 0, len(w.current))
	for _, s := range w.current {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b BodyState) int {
		switch {
		case a.Entity < b.Entity:
			return -1
		case a.Entity > b.Entity:
			return 1
		}
		return 0
	})
	return out
}

// Interpolated blends the last two committed states of an entity. alpha
// normally comes from the accumulator's InterpolationAlpha.
func (w *World) Interpolated(entity uint64, alpha float32) (rl.Vector3, rl.Quaternion, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	cur, ok := w.current[entity]
	if !ok {
		return rl.Vector3{}, rl.QuaternionIdentity(), false
	}
	prev, ok := w.previous[entity]
	if !ok {
		return cur.Position, cur.Rotation, true
	}
	alpha = collision.Clamp(alpha, 0, 1)
	return rl.Vector3Lerp(prev.Position, cur.Position, alpha),
		rl.QuaternionSlerp(prev.Rotation, cur.Rotation, alpha), true
}

// RaycastHit is a world ray query result.
type RaycastHit struct {
	Entity uint64
	collision.RayHit
}

// CastRay returns the closest non-sensor collider hit by the ray, using the
// state committed by the last tick.
func (w *World) CastRay(origin, direction rl.Vector3, maxDistance float32) (RaycastHit, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	dir := rl.Vector3Normalize(direction)
	var best RaycastHit
	best.Distance = maxDistance
	found := false
	for i := range w.colliders {
		c := &w.colliders[i]
		if c.IsSensor {
			continue
		}
		if _, ok := collision.RayAABB(origin, dir, c.AABB, best.Distance); !ok {
			continue
		}
		hit, ok := collision.RayShape(origin, dir, c.Shape, c.Position, c.Rotation, best.Distance)
		if ok && hit.Distance <= best.Distance {
			best = RaycastHit{Entity: c.Entity, RayHit: hit}
			found = true
		}
	}
	return best, found
}

// Raycast implements engine.WorldAccess.
func (w *World) Raycast(origin, direction rl.Vector3, maxDistance float32) (engine.RaycastResult, bool) {
	hit, ok := w.CastRay(origin, direction, maxDistance)
	if !ok {
		return engine.RaycastResult{}, false
	}
	w.mu.RLock()
	scene := w.scene
	w.mu.RUnlock()
	var obj *engine.GameObject
	if scene != nil {
		obj = scene.FindByUID(hit.Entity)
	}
	return engine.RaycastResult{
		GameObject: obj,
		Point:      hit.Point,
		Normal:     hit.Normal,
		Distance:   hit.Distance,
	}, true
}

// QueryAABB returns the entities whose committed bounds overlap box, sorted
// and unique.
func (w *World) QueryAABB(box collision.AABB) []uint64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	var out []uint64
	for i := range w.colliders {
		if w.colliders[i].AABB.Overlaps(box) {
			out = append(out, w.colliders[i].Entity)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
