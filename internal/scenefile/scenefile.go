// Package scenefile reads and writes scenes as JSON. Components are stored by
// their registered type name and rebuilt through the engine registry.
package scenefile

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	_ "rigid3d/internal/components" // component factories
	"rigid3d/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// --- JSON types ---

type File struct {
	Name    string      `json:"name,omitempty"`
	Objects []ObjectDef `json:"objects"`
}

type ObjectDef struct {
	UID      uint64     `json:"uid,omitempty"`
	Name     string     `json:"name"`
	Tags     []string   `json:"tags,omitempty"`
	Parent   uint64     `json:"parent,omitempty"`
	Inactive bool       `json:"inactive,omitempty"`
	Position [3]float32 `json:"position"`
	Rotation [3]float32 `json:"rotation"` // Euler degrees
	Scale    [3]float32 `json:"scale"`

	Components []map[string]any `json:"components,omitempty"`
}

// --- Loading ---

// Load reads a scene file from disk.
func Load(path string) (*engine.Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene: %w", err)
	}
	return Parse(data)
}

// Parse builds a scene from JSON. Unknown component types are logged and
// skipped; a parent UID that isn't in the file leaves the object at the root.
func Parse(data []byte) (*engine.Scene, error) {
	var sf File
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, fmt.Errorf("parse scene: %w", err)
	}

	name := sf.Name
	if name == "" {
		name = "Scene"
	}
	scene := engine.NewScene(name)

	byUID := make(map[uint64]*engine.GameObject, len(sf.Objects))
	objects := make([]*engine.GameObject, len(sf.Objects))
	for i, def := range sf.Objects {
		g, err := buildObject(def)
		if err != nil {
			return nil, fmt.Errorf("parse scene: %w", err)
		}
		if _, dup := byUID[g.UID]; dup {
			return nil, fmt.Errorf("parse scene: duplicate uid %d", g.UID)
		}
		byUID[g.UID] = g
		objects[i] = g
	}

	for i, def := range sf.Objects {
		if def.Parent == 0 {
			continue
		}
		parent, ok := byUID[def.Parent]
		if !ok || parent == objects[i] {
			log.Printf("Scene: %q has unknown parent %d, keeping it at the root", def.Name, def.Parent)
			continue
		}
		parent.AddChild(objects[i])
	}

	for _, g := range objects {
		scene.AddGameObject(g)
	}
	return scene, nil
}

func buildObject(def ObjectDef) (*engine.GameObject, error) {
	g := engine.NewGameObject(def.Name)
	if def.UID != 0 {
		engine.ReserveUID(def.UID)
		g.UID = def.UID
	}
	g.Tags = def.Tags
	g.Active = !def.Inactive
	g.Transform.Position = toVec3(def.Position)
	g.Transform.SetEulerDegrees(toVec3(def.Rotation))

	// Default scale to 1 if zero
	if def.Scale == [3]float32{} {
		g.Transform.Scale = rl.Vector3{X: 1, Y: 1, Z: 1}
	} else {
		g.Transform.Scale = toVec3(def.Scale)
	}

	for _, data := range def.Components {
		typeName, ok := data["type"].(string)
		if !ok {
			return nil, fmt.Errorf("object %q: component without a type", def.Name)
		}
		c, err := engine.CreateComponent(typeName, data)
		if err != nil {
			log.Printf("Scene: skipping component on %q: %v", def.Name, err)
			continue
		}
		g.AddComponent(c)
	}
	return g, nil
}

// --- Saving ---

// Encode writes every object of scene with its serializable components.
func Encode(scene *engine.Scene) ([]byte, error) {
	sf := File{Name: scene.Name}

	for _, g := range scene.GameObjects {
		def := ObjectDef{
			UID:      g.UID,
			Name:     g.Name,
			Tags:     g.Tags,
			Inactive: !g.Active,
			Position: fromVec3(g.Transform.Position),
			Rotation: fromVec3(g.Transform.EulerDegrees()),
			Scale:    fromVec3(g.Transform.Scale),
		}
		if g.Parent != nil {
			def.Parent = g.Parent.UID
		}

		for _, c := range g.Components() {
			typeName, data, ok := engine.SerializeComponent(c)
			if !ok {
				continue
			}
			data["type"] = typeName
			def.Components = append(def.Components, data)
		}

		sf.Objects = append(sf.Objects, def)
	}

	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal scene: %w", err)
	}
	return data, nil
}

func Save(scene *engine.Scene, path string) error {
	data, err := Encode(scene)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write scene: %w", err)
	}
	return nil
}

func toVec3(v [3]float32) rl.Vector3 {
	return rl.Vector3{X: v[0], Y: v[1], Z: v[2]}
}

func fromVec3(v rl.Vector3) [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}
