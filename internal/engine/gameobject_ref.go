package engine

// GameObjectRef points at another GameObject by UID so components such as
// joints can name their partner in a scene file. UID 0 means none.
type GameObjectRef struct {
	UID uint64
}

// Get resolves the reference, or nil when it is empty or dangling.
func (r GameObjectRef) Get(scene *Scene) *GameObject {
	if r.UID == 0 || scene == nil {
		return nil
	}
	return scene.FindByUID(r.UID)
}

func (r GameObjectRef) IsValid() bool {
	return r.UID != 0
}

// Set points the reference at g. Pass nil to clear it.
func (r *GameObjectRef) Set(g *GameObject) {
	if g == nil {
		r.UID = 0
	} else {
		r.UID = g.UID
	}
}

func (r *GameObjectRef) Clear() {
	r.UID = 0
}

// RefFromData reads a reference stored as a UID, or as a JSON number.
func RefFromData(v any) GameObjectRef {
	switch n := v.(type) {
	case uint64:
		return GameObjectRef{UID: n}
	case float64:
		if n > 0 {
			return GameObjectRef{UID: uint64(n)}
		}
	}
	return GameObjectRef{}
}
