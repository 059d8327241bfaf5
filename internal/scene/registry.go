// Package scene ties visual objects to physics bodies and runs the per-frame
// synchronization loop.
package scene

import (
	"errors"
	"fmt"

	"github.com/Faultbox/pucktable/internal/engine/mesh"
	"github.com/Faultbox/pucktable/internal/physics"
)

// ErrUnknownObject is returned for ids the registry does not hold.
var ErrUnknownObject = errors.New("unknown object")

// ObjectID identifies a visual object for its lifetime.
type ObjectID int

// Flags are per-object markers read by the loop.
type Flags uint8

const (
	// FlagDriven marks objects positioned externally. Their bodies still
	// collide but the loop does not copy physics transforms onto them.
	FlagDriven Flags = 1 << iota
)

// Object is the visual side of a spawned thing. Its mesh is built once and
// never changed.
type Object struct {
	ID    ObjectID
	Name  string
	Kind  string
	Mesh  *mesh.Mesh
	Color Color
}

// Entry links an object to its body and the factory that built it.
type Entry struct {
	Body   *physics.RigidBody
	Source Factory
	Flags  Flags
}

// Driven reports whether FlagDriven is set.
func (e Entry) Driven() bool { return e.Flags&FlagDriven != 0 }

// Registry owns the visual objects, their transform component and the side
// table linking them to physics. Objects keep insertion order.
type Registry struct {
	order      []ObjectID
	objects    map[ObjectID]*Object
	entries    map[ObjectID]Entry
	transforms map[ObjectID]physics.Transform
	next       ObjectID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		objects:    make(map[ObjectID]*Object),
		entries:    make(map[ObjectID]Entry),
		transforms: make(map[ObjectID]physics.Transform),
		next:       1,
	}
}

// Add registers obj with its initial transform and physics entry, and
// returns the assigned id.
func (r *Registry) Add(obj Object, tr physics.Transform, e Entry) ObjectID {
	id := r.next
	r.next++
	obj.ID = id
	r.order = append(r.order, id)
	r.objects[id] = &obj
	r.entries[id] = e
	r.transforms[id] = tr
	return id
}

// Remove drops id and its link to physics.
func (r *Registry) Remove(id ObjectID) (Entry, error) {
	e, ok := r.entries[id]
	if !ok {
		return Entry{}, fmt.Errorf("remove %d: %w", id, ErrUnknownObject)
	}
	delete(r.objects, id)
	delete(r.entries, id)
	delete(r.transforms, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return e, nil
}

// Len returns the number of objects.
func (r *Registry) Len() int { return len(r.order) }

// IDs returns object ids in insertion order.
func (r *Registry) IDs() []ObjectID {
	out := make([]ObjectID, len(r.order))
	copy(out, r.order)
	return out
}

// Object returns the visual object for id.
func (r *Registry) Object(id ObjectID) (*Object, bool) {
	o, ok := r.objects[id]
	return o, ok
}

// Lookup finds an object by name.
func (r *Registry) Lookup(name string) (ObjectID, bool) {
	for _, id := range r.order {
		if r.objects[id].Name == name {
			return id, true
		}
	}
	return 0, false
}

// Entry returns the physics link of id.
func (r *Registry) Entry(id ObjectID) (Entry, bool) {
	e, ok := r.entries[id]
	return e, ok
}

// Transform returns the displayed transform of id.
func (r *Registry) Transform(id ObjectID) (physics.Transform, bool) {
	tr, ok := r.transforms[id]
	return tr, ok
}

// SetTransform positions an object directly. This is how driven objects
// move.
func (r *Registry) SetTransform(id ObjectID, tr physics.Transform) error {
	if _, ok := r.transforms[id]; !ok {
		return fmt.Errorf("set transform %d: %w", id, ErrUnknownObject)
	}
	r.transforms[id] = tr
	return nil
}

// SetDriven sets or clears FlagDriven on id.
func (r *Registry) SetDriven(id ObjectID, driven bool) error {
	e, ok := r.entries[id]
	if !ok {
		return fmt.Errorf("set driven %d: %w", id, ErrUnknownObject)
	}
	if driven {
		e.Flags |= FlagDriven
	} else {
		e.Flags &^= FlagDriven
	}
	r.entries[id] = e
	return nil
}

// sync copies the motion state of every non-driven body into the transform
// component.
func (r *Registry) sync() int {
	copied := 0
	for _, id := range r.order {
		e := r.entries[id]
		if e.Body == nil || e.Driven() {
			continue
		}
		r.transforms[id] = e.Body.MotionState().WorldTransform()
		copied++
	}
	return copied
}
