package engine

import (
	"errors"
	"testing"
)

// Mock component for testing
type MockBody struct {
	BaseComponent
	Speed  float32
	Health int
}

func (m *MockBody) TypeName() string { return "MockBody" }

func (m *MockBody) Serialize() map[string]any {
	return map[string]any{
		"type":   "MockBody",
		"speed":  m.Speed,
		"health": m.Health,
	}
}

func (m *MockBody) Deserialize(data map[string]any) {
	if v, ok := data["speed"].(float64); ok {
		m.Speed = float32(v)
	}
	if v, ok := data["health"].(float64); ok {
		m.Health = int(v)
	}
}

func mockFactory() Serializable {
	return &MockBody{Health: 100}
}

func TestRegisterComponent(t *testing.T) {
	// Clear registry for clean test
	componentRegistry = map[string]ComponentFactory{}

	RegisterComponent("MockBody", mockFactory)

	if _, exists := componentRegistry["MockBody"]; !exists {
		t.Error("Component not registered")
	}
}

func TestRegisterComponentDuplicate(t *testing.T) {
	componentRegistry = map[string]ComponentFactory{}

	RegisterComponent("Duplicate", mockFactory)

	// Should panic on duplicate registration
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic on duplicate registration")
		}
	}()

	RegisterComponent("Duplicate", mockFactory)
}

func TestCreateComponent(t *testing.T) {
	componentRegistry = map[string]ComponentFactory{}
	RegisterComponent("MockBody", mockFactory)

	c, err := CreateComponent("MockBody", map[string]any{"speed": 5.5})
	if err != nil {
		t.Fatalf("CreateComponent returned error: %v", err)
	}
	body, ok := c.(*MockBody)
	if !ok {
		t.Fatalf("Expected *MockBody, got %T", c)
	}
	if body.Speed != 5.5 {
		t.Errorf("Expected speed 5.5, got %f", body.Speed)
	}
	if body.Health != 100 {
		t.Errorf("Expected factory default health 100, got %d", body.Health)
	}
}

func TestCreateComponentUnknown(t *testing.T) {
	componentRegistry = map[string]ComponentFactory{}

	_, err := CreateComponent("Missing", nil)
	if !errors.Is(err, ErrUnknownComponent) {
		t.Errorf("Expected ErrUnknownComponent, got %v", err)
	}
}

func TestSerializeComponent(t *testing.T) {
	name, data, ok := SerializeComponent(&MockBody{Speed: 2, Health: 7})
	if !ok {
		t.Fatal("Expected MockBody to serialize")
	}
	if name != "MockBody" {
		t.Errorf("Expected name 'MockBody', got '%s'", name)
	}
	if data["health"] != 7 {
		t.Errorf("Expected health 7, got %v", data["health"])
	}

	if _, _, ok := SerializeComponent(&BaseComponent{}); ok {
		t.Error("BaseComponent should not serialize")
	}
}

func TestRegisteredComponentsSorted(t *testing.T) {
	componentRegistry = map[string]ComponentFactory{}
	RegisterComponent("Zebra", mockFactory)
	RegisterComponent("Apple", mockFactory)
	RegisterComponent("Mango", mockFactory)

	names := RegisteredComponents()
	expected := []string{"Apple", "Mango", "Zebra"}
	if len(names) != len(expected) {
		t.Fatalf("Expected %d components, got %d", len(expected), len(names))
	}
	for i, name := range expected {
		if names[i] != name {
			t.Errorf("Expected names[%d] = %s, got %s", i, name, names[i])
		}
	}
}
