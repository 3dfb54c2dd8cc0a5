package engine

import (
	"errors"
	"fmt"

	"golang.org/x/exp/slices"
)

// ErrUnknownComponent is returned when a scene names a component type that
// was never registered.
var ErrUnknownComponent = errors.New("unknown component type")

// ComponentFactory creates a zero-configured component ready for Deserialize.
type ComponentFactory func() Serializable

var componentRegistry = map[string]ComponentFactory{}

// RegisterComponent registers a named component factory. Component packages
// call this from init().
func RegisterComponent(name string, factory ComponentFactory) {
	if _, exists := componentRegistry[name]; exists {
		panic(fmt.Sprintf("component %q already registered", name))
	}
	componentRegistry[name] = factory
}

// CreateComponent builds a registered component and applies data to it.
func CreateComponent(name string, data map[string]any) (Serializable, error) {
	factory, ok := componentRegistry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownComponent, name)
	}
	c := factory()
	if data != nil {
		c.Deserialize(data)
	}
	return c, nil
}

// SerializeComponent returns the type name and data for c, or false when c
// does not support serialization.
func SerializeComponent(c Component) (string, map[string]any, bool) {
	s, ok := c.(Serializable)
	if !ok {
		return "", nil, false
	}
	return s.TypeName(), s.Serialize(), true
}

// RegisteredComponents returns a sorted list of all registered component names.
func RegisteredComponents() []string {
	names := make([]string, 0, len(componentRegistry))
	for name := range componentRegistry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
