package components

import (
	"fmt"

	"rigid3d/internal/engine"

	rl "github.com/gen2brain/raylib-go/raylib"
)

func init() {
	engine.RegisterComponent("Tint", func() engine.Serializable {
		return NewTint(rl.White)
	})
}

// Tint is the color viewers draw an object's collider with.
type Tint struct {
	engine.BaseComponent
	Color rl.Color
}

func NewTint(c rl.Color) *Tint {
	return &Tint{Color: c}
}

var colorByName = map[string]rl.Color{
	"Red":       rl.Red,
	"Blue":      rl.Blue,
	"Green":     rl.Green,
	"Purple":    rl.Purple,
	"Orange":    rl.Orange,
	"Yellow":    rl.Yellow,
	"Pink":      rl.Pink,
	"SkyBlue":   rl.SkyBlue,
	"Lime":      rl.Lime,
	"Magenta":   rl.Magenta,
	"White":     rl.White,
	"LightGray": rl.LightGray,
	"Gray":      rl.Gray,
	"DarkGray":  rl.DarkGray,
	"Black":     rl.Black,
	"Brown":     rl.Brown,
	"Beige":     rl.Beige,
	"Maroon":    rl.Maroon,
	"Gold":      rl.Gold,
}

var nameByColor map[rl.Color]string

func init() {
	nameByColor = make(map[rl.Color]string, len(colorByName))
	for name, c := range colorByName {
		nameByColor[c] = name
	}
}

// LookupColor resolves a color name or a #rrggbbaa string. Unknown values
// are white.
func LookupColor(name string) rl.Color {
	if c, ok := colorByName[name]; ok {
		return c
	}
	var r, g, b, a uint8
	if n, _ := fmt.Sscanf(name, "#%02x%02x%02x%02x", &r, &g, &b, &a); n == 4 {
		return rl.Color{R: r, G: g, B: b, A: a}
	}
	return rl.White
}

func LookupColorName(c rl.Color) string {
	if name, ok := nameByColor[c]; ok {
		return name
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// TypeName implements engine.Serializable
func (t *Tint) TypeName() string {
	return "Tint"
}

// Serialize implements engine.Serializable
func (t *Tint) Serialize() map[string]any {
	return map[string]any{
		"type":  "Tint",
		"color": LookupColorName(t.Color),
	}
}

// Deserialize implements engine.Serializable
func (t *Tint) Deserialize(data map[string]any) {
	if name, ok := data["color"].(string); ok {
		t.Color = LookupColor(name)
	}
}
