package engine

import "testing"

// newTestScene builds a scene with a parent/child pair and a loose object.
func newTestScene() (*Scene, *GameObject, *GameObject, *GameObject) {
	scene := NewScene("Test")
	parent := NewGameObject("Crate")
	child := NewGameObject("Lid")
	ball := NewGameObject("Ball")
	parent.Tags = []string{"dynamic", "stack"}
	ball.Tags = []string{"dynamic"}
	scene.AddGameObject(parent)
	scene.AddGameObject(child)
	scene.AddGameObject(ball)
	parent.AddChild(child)
	return scene, parent, child, ball
}

func TestSceneLookups(t *testing.T) {
	scene, parent, child, ball := newTestScene()

	for _, g := range []*GameObject{parent, child, ball} {
		if g.Scene != scene {
			t.Errorf("Expected %s to reference the scene", g.Name)
		}
		if got := scene.FindByUID(g.UID); got != g {
			t.Errorf("FindByUID(%d): expected %s, got %v", g.UID, g.Name, got)
		}
	}
	if scene.FindByUID(99999) != nil {
		t.Error("FindByUID should return nil for an unknown UID")
	}

	if scene.FindByName("Lid") != child || scene.FindByName("Missing") != nil {
		t.Error("FindByName returned the wrong object")
	}

	tags := map[string]int{"dynamic": 2, "stack": 1, "static": 0}
	for tag, want := range tags {
		if got := len(scene.FindByTag(tag)); got != want {
			t.Errorf("FindByTag(%q): expected %d, got %d", tag, want, got)
		}
	}
}

func TestSceneRemoveFiresOnRemoveForChildren(t *testing.T) {
	scene, parent, child, ball := newTestScene()

	var removed []uint64
	scene.OnRemove.AddListener(func(g *GameObject) {
		// The object has already left the UID map.
		if scene.FindByUID(g.UID) != nil {
			t.Errorf("Expected %s gone from the UID map when OnRemove fires", g.Name)
		}
		removed = append(removed, g.UID)
	})

	scene.RemoveGameObject(parent)

	if len(removed) != 2 || removed[0] != child.UID || removed[1] != parent.UID {
		t.Errorf("Expected child then parent removed, got %v", removed)
	}
	if len(scene.GameObjects) != 1 || scene.GameObjects[0] != ball {
		t.Errorf("Expected only the ball left, got %d objects", len(scene.GameObjects))
	}
	if parent.Scene != nil || child.Scene != nil {
		t.Error("Removed objects should no longer reference the scene")
	}

	// Removing again, or removing a stranger, fires nothing.
	scene.RemoveGameObject(parent)
	scene.RemoveGameObject(NewGameObject("Stranger"))
	if len(removed) != 2 {
		t.Errorf("Expected no extra events, got %d", len(removed))
	}
}

func TestSceneZeroValueInitializesUIDMap(t *testing.T) {
	var scene Scene
	obj := NewGameObject("Test")
	scene.AddGameObject(obj)

	if scene.FindByUID(obj.UID) != obj {
		t.Error("Expected the first AddGameObject to create the UID map")
	}
}

func TestEventRemoveListener(t *testing.T) {
	var ev EventWithArg[int]
	var got []int
	first := ev.AddListener(func(v int) { got = append(got, v) })
	ev.AddListener(func(v int) { got = append(got, v*10) })

	if ev.AddListener(nil) != 0 || ev.ListenerCount() != 2 {
		t.Errorf("Expected a nil callback to be ignored, got %d listeners", ev.ListenerCount())
	}

	ev.Invoke(1)
	if !ev.RemoveListener(first) {
		t.Error("Expected the first listener to be removed")
	}
	if ev.RemoveListener(first) {
		t.Error("Expected a second removal to report false")
	}
	ev.Invoke(2)

	want := []int{1, 10, 20}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %v, got %v", want, got)
			break
		}
	}
}
