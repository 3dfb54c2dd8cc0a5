// Package validate checks a scene for physics setups that are known to
// misbehave before the first tick runs: bodies that start far above any
// floor, bodies that start inside each other, and degenerate scales.
package validate

import (
	"fmt"
	"io"

	"rigid3d/internal/collision"
	"rigid3d/internal/components"
	"rigid3d/internal/engine"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"gopkg.in/yaml.v3"
)

const (
	GapWarning       = 2.0  // warn when a body starts this far above its floor
	GapError         = 10.0 // collision is unlikely beyond this gap
	ThinFloorHeight  = 0.1
	LargeScaleLimit  = 100.0
	NonUniformLimit  = 0.01
	OverlapTolerance = 1e-3 // resting contact is not a penetration
)

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// MarshalYAML writes the severity by name.
func (s Severity) MarshalYAML() (any, error) {
	return s.String(), nil
}

type Kind string

const (
	NoOverlap          Kind = "no_overlap"
	FloatingObject     Kind = "floating_object"
	InitialPenetration Kind = "initial_penetration"
	InvalidScale       Kind = "invalid_scale"
	MissingCollider    Kind = "missing_collider"
	ThinFloor          Kind = "thin_floor"
	LargeScale         Kind = "large_scale"
	NonUniformScale    Kind = "non_uniform_scale"
)

// Diagnostic is one finding about one object. Value carries the measured
// quantity when there is one (gap, height, thickness, scale).
type Diagnostic struct {
	Severity Severity `yaml:"severity"`
	Kind     Kind     `yaml:"kind"`
	Entity   uint64   `yaml:"entity"`
	Name     string   `yaml:"name"`
	Message  string   `yaml:"message"`
	Value    float32  `yaml:"value,omitempty"`
}

type Report struct {
	Scene       string       `yaml:"scene"`
	Valid       bool         `yaml:"valid"`
	Diagnostics []Diagnostic `yaml:"diagnostics,omitempty"`
	Suggestions []string     `yaml:"suggestions,omitempty"`
}

func (r *Report) add(d Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, d)
}

func (r Report) filter(s Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Severity == s {
			out = append(out, d)
		}
	}
	return out
}

func (r Report) Errors() []Diagnostic {
	return r.filter(SeverityError)
}

func (r Report) Warnings() []Diagnostic {
	return r.filter(SeverityWarning)
}

func (r Report) Has(kind Kind) bool {
	for _, d := range r.Diagnostics {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

// YAML renders the report for tooling.
func (r Report) YAML() ([]byte, error) {
	data, err := yaml.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return data, nil
}

// WriteText renders the report for a terminal, with a fix hint under each
// error.
func (r Report) WriteText(w io.Writer) {
	fmt.Fprintf(w, "Scene: %s\n", r.Scene)
	fmt.Fprintf(w, "Valid: %v\n", r.Valid)

	if errs := r.Errors(); len(errs) > 0 {
		fmt.Fprintln(w, "\nERRORS:")
		for _, d := range errs {
			fmt.Fprintf(w, "  - %s: %s\n", d.Name, d.Message)
			if hint := fixHint(d); hint != "" {
				fmt.Fprintf(w, "    Fix: %s\n", hint)
			}
		}
	}
	if warns := r.Warnings(); len(warns) > 0 {
		fmt.Fprintln(w, "\nWARNINGS:")
		for _, d := range warns {
			fmt.Fprintf(w, "  - %s: %s\n", d.Name, d.Message)
		}
	}
	if len(r.Suggestions) > 0 {
		fmt.Fprintln(w, "\nSUGGESTIONS:")
		for _, s := range r.Suggestions {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
}

func fixHint(d Diagnostic) string {
	switch d.Kind {
	case NoOverlap:
		return fmt.Sprintf("reduce the %.1fm gap by moving the floor up or the object down", d.Value)
	case FloatingObject:
		return fmt.Sprintf("add a floor below the object at Y < %.1f", d.Value)
	case InitialPenetration:
		return "separate the overlapping objects"
	case InvalidScale:
		return "use positive scale values"
	case MissingCollider:
		return "add a Collider next to the Rigidbody"
	}
	return ""
}

// body is the validator's view of one collider-carrying object.
type body struct {
	object  *engine.GameObject
	box     collision.AABB
	scale   rl.Vector3
	gravity bool
}

func (b body) diag(s Severity, kind Kind, value float32, format string, args ...any) Diagnostic {
	return Diagnostic{
		Severity: s,
		Kind:     kind,
		Entity:   b.object.UID,
		Name:     b.object.Name,
		Message:  fmt.Sprintf(format, args...),
		Value:    value,
	}
}

// Validate inspects every active object of scene. Static colliders act as
// floors; kinematic bodies support others but never fall.
func Validate(scene *engine.Scene) Report {
	report := Report{Scene: scene.Name}

	var statics, supports, dynamics []body
	for _, g := range scene.GameObjects {
		if !g.Active {
			continue
		}
		col := engine.GetComponent[*components.Collider](g)
		rb := engine.GetComponent[*components.Rigidbody](g)
		if col == nil {
			if rb != nil {
				report.add(Diagnostic{
					Severity: SeverityError,
					Kind:     MissingCollider,
					Entity:   g.UID,
					Name:     g.Name,
					Message:  "Rigidbody without a Collider is ignored by physics",
				})
			}
			continue
		}

		b := body{object: g, scale: g.WorldScale()}
		if !validScale(b.scale) {
			report.add(b.diag(SeverityError, InvalidScale, 0, "scale %v has a zero, negative or NaN axis", b.scale))
			continue
		}
		if col.IsSensor {
			continue
		}
		b.box = col.WorldAABB()

		switch {
		case rb == nil:
			statics = append(statics, b)
			supports = append(supports, b)
		case rb.IsKinematic:
			supports = append(supports, b)
		default:
			b.gravity = rb.UseGravity
			dynamics = append(dynamics, b)
		}
	}

	checkFloating(&report, dynamics, supports)
	checkFloors(&report, statics)
	checkOverlaps(&report, dynamics, supports)
	addSuggestions(&report)

	report.Valid = len(report.Errors()) == 0
	return report
}

func validScale(s rl.Vector3) bool {
	for _, v := range [3]float32{s.X, s.Y, s.Z} {
		if !(v > 0) || math32.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// nearestFloor finds the support under b whose top is closest below b's
// bottom. A support counts as under b when their XZ footprints overlap and
// its top is not above b's center.
func nearestFloor(b body, supports []body) (body, float32, bool) {
	var best body
	bestGap := float32(math32.MaxFloat32)
	found := false

	bottom := b.box.Min.Y
	center := b.box.Center()
	for _, s := range supports {
		if b.box.Min.X > s.box.Max.X || b.box.Max.X < s.box.Min.X ||
			b.box.Min.Z > s.box.Max.Z || b.box.Max.Z < s.box.Min.Z {
			continue
		}
		top := s.box.Max.Y
		if top > center.Y {
			continue
		}
		gap := math32.Max(bottom-top, 0)
		if gap < bestGap {
			best, bestGap, found = s, gap, true
		}
	}
	return best, bestGap, found
}

func checkFloating(report *Report, dynamics, supports []body) {
	for _, b := range dynamics {
		if !b.gravity {
			continue
		}
		floor, gap, ok := nearestFloor(b, supports)
		switch {
		case ok && gap > GapError:
			report.add(b.diag(SeverityError, NoOverlap, gap,
				"starts %.1fm above floor '%s', collision unlikely", gap, floor.object.Name))
		case ok && gap > GapWarning:
			report.add(b.diag(SeverityWarning, NoOverlap, gap,
				"starts %.1fm above nearest floor '%s', consider reducing the gap", gap, floor.object.Name))
		case !ok && b.box.Min.Y > 0:
			report.add(b.diag(SeverityError, FloatingObject, b.box.Min.Y,
				"no floor found below object at height %.1f", b.box.Min.Y))
		}
	}
}

func checkFloors(report *Report, statics []body) {
	for _, s := range statics {
		if h := s.box.Max.Y - s.box.Min.Y; h < ThinFloorHeight {
			report.add(s.diag(SeverityWarning, ThinFloor, h,
				"floor is only %.3fm thick, fast bodies may tunnel through", h))
		}
		if m := math32.Max(s.scale.X, math32.Max(s.scale.Y, s.scale.Z)); m > LargeScaleLimit {
			report.add(s.diag(SeverityWarning, LargeScale, m,
				"very large scale %v, consider larger base geometry", s.scale))
		}
		if math32.Abs(s.scale.X-s.scale.Y) > NonUniformLimit || math32.Abs(s.scale.X-s.scale.Z) > NonUniformLimit {
			report.add(s.diag(SeverityWarning, NonUniformScale, 0,
				"non-uniform scale %v may cause unexpected collision behavior", s.scale))
		}
	}
}

// penetrating is an AABB overlap deeper than OverlapTolerance on every axis.
func penetrating(a, b collision.AABB) bool {
	shrink := float32(-OverlapTolerance / 2)
	return a.Expand(shrink).Overlaps(b.Expand(shrink))
}

func checkOverlaps(report *Report, dynamics, supports []body) {
	for _, b := range dynamics {
		for _, s := range supports {
			if penetrating(b.box, s.box) {
				report.add(b.diag(SeverityError, InitialPenetration, 0,
					"overlaps '%s' at start and will be ejected", s.object.Name))
			}
		}
	}
	for i, a := range dynamics {
		for _, b := range dynamics[i+1:] {
			if penetrating(a.box, b.box) {
				report.add(a.diag(SeverityWarning, InitialPenetration, 0,
					"initially overlaps '%s', they will separate on the first tick", b.object.Name))
			}
		}
	}
}

func addSuggestions(report *Report) {
	if report.hasError(NoOverlap) {
		report.Suggestions = append(report.Suggestions,
			"Position floors at Y=0 or Y=-0.5 for easier object placement",
			fmt.Sprintf("Keep vertical gaps between floors and falling objects below %.0f units", GapWarning))
	}
	if report.Has(ThinFloor) {
		report.Suggestions = append(report.Suggestions,
			"Use scale Y=1 for floors and size the collider instead")
	}
	if len(report.Errors()) > 0 {
		report.Suggestions = append(report.Suggestions,
			"Run the scene in the sandbox to check the behavior")
	}
}

func (r Report) hasError(kind Kind) bool {
	for _, d := range r.Errors() {
		if d.Kind == kind {
			return true
		}
	}
	return false
}
