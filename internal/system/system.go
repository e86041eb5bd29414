// Package system holds a generated planetary system: a flat arena of bodies
// with a name-keyed registry and the parent/satellite graph over it.
package system

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/talgya/planetgen/internal/body"
)

var (
	// ErrNoRoot is returned when a system has no root body.
	ErrNoRoot = errors.New("system has no root body")
	// ErrInconsistent is returned when the registry and satellite graph disagree.
	ErrInconsistent = errors.New("system registry and satellite graph disagree")
)

// InsertResult reports what Insert did.
type InsertResult uint8

const (
	Inserted InsertResult = iota
	AlreadyPresent
)

func (r InsertResult) String() string {
	if r == Inserted {
		return "inserted"
	}
	return "already_present"
}

// AttachResult reports what Attach did.
type AttachResult uint8

const (
	Attached AttachResult = iota
	AlreadyAttached
	UnknownBody
)

func (r AttachResult) String() string {
	switch r {
	case Attached:
		return "attached"
	case AlreadyAttached:
		return "already_attached"
	default:
		return "unknown_body"
	}
}

// System is a planetary system.
type System struct {
	ID      uuid.UUID  `json:"id"`
	Name    string     `json:"name"`
	Seed    int64      `json:"seed"`
	Spacing SpacingLaw `json:"spacing"`

	bodies []*body.Body
	byName map[string]body.ID
	root   body.ID
}

// New creates a system rooted at a star. The root is registered immediately.
func New(name string, root *body.Body) (*System, error) {
	if root == nil {
		return nil, ErrNoRoot
	}
	if !root.Kind.IsStar() {
		return nil, fmt.Errorf("%w: root %q is a %s", ErrNoRoot, root.Name, root.Kind)
	}
	s := &System{
		ID:     uuid.New(),
		Name:   name,
		byName: make(map[string]body.ID),
		root:   body.NoBody,
	}
	s.root, _ = s.Insert(root)
	return s, nil
}

// Insert registers b under its name and assigns its arena ID. Links are
// cleared; use Attach to place the body in the graph. Registering a name
// twice is a no-op that logs a warning and returns the existing ID.
//
// Insert takes ownership of b: its ID, Parent and Satellites are reset.
func (s *System) Insert(b *body.Body) (body.ID, InsertResult) {
	if id, ok := s.byName[b.Name]; ok {
		slog.Warn("body already registered", "system", s.Name, "body", b.Name)
		return id, AlreadyPresent
	}
	id := body.ID(len(s.bodies))
	b.ID = id
	b.Parent = body.NoBody
	b.Satellites = nil
	s.bodies = append(s.bodies, b)
	s.byName[b.Name] = id
	return id, Inserted
}

// Attach links child under parent in both directions. A child that already
// has a parent keeps it; the attempt logs a warning.
func (s *System) Attach(parent, child body.ID) AttachResult {
	p, c := s.ByID(parent), s.ByID(child)
	if p == nil || c == nil || parent == child {
		return UnknownBody
	}
	if c.HasParent() {
		slog.Warn("body already has a parent",
			"system", s.Name, "body", c.Name,
			"parent", s.bodies[c.Parent].Name, "rejected_parent", p.Name)
		return AlreadyAttached
	}
	c.Parent = parent
	p.Satellites = append(p.Satellites, child)
	return Attached
}

// Add inserts b and attaches it under parent.
func (s *System) Add(parent body.ID, b *body.Body) (body.ID, error) {
	if s.ByID(parent) == nil {
		return body.NoBody, fmt.Errorf("add %q: parent %d not registered", b.Name, parent)
	}
	id, res := s.Insert(b)
	if res == AlreadyPresent {
		return id, fmt.Errorf("add %q: %s", b.Name, res)
	}
	if r := s.Attach(parent, id); r != Attached {
		return id, fmt.Errorf("add %q: %s", b.Name, r)
	}
	return id, nil
}

// Root returns the root body's ID.
func (s *System) Root() (body.ID, error) {
	if s == nil || s.root == body.NoBody || int(s.root) >= len(s.bodies) {
		return body.NoBody, ErrNoRoot
	}
	return s.root, nil
}

// RootBody returns the root body.
func (s *System) RootBody() (*body.Body, error) {
	id, err := s.Root()
	if err != nil {
		return nil, err
	}
	return s.bodies[id], nil
}

// Bodies returns every registered body in registration order.
func (s *System) Bodies() []*body.Body {
	out := make([]*body.Body, len(s.bodies))
	copy(out, s.bodies)
	return out
}

// Body returns the body registered under name.
func (s *System) Body(name string) (*body.Body, bool) {
	id, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return s.bodies[id], true
}

// ByID returns the body at id, or nil.
func (s *System) ByID(id body.ID) *body.Body {
	if id < 0 || int(id) >= len(s.bodies) {
		return nil
	}
	return s.bodies[id]
}

// Parent returns the parent of id, or nil for the root.
func (s *System) Parent(id body.ID) *body.Body {
	b := s.ByID(id)
	if b == nil {
		return nil
	}
	return s.ByID(b.Parent)
}

// Satellites returns the direct satellites of id.
func (s *System) Satellites(id body.ID) []*body.Body {
	b := s.ByID(id)
	if b == nil {
		return nil
	}
	out := make([]*body.Body, 0, len(b.Satellites))
	for _, sid := range b.Satellites {
		out = append(out, s.bodies[sid])
	}
	return out
}

// Planets returns the direct satellites of the root.
func (s *System) Planets() []*body.Body {
	root, err := s.Root()
	if err != nil {
		return nil
	}
	return s.Satellites(root)
}

// Len returns the number of registered bodies.
func (s *System) Len() int {
	return len(s.bodies)
}

// Walk visits every body reachable from the root depth-first, passing the
// depth (root = 0). Returning false stops the walk.
func (s *System) Walk(fn func(b *body.Body, depth int) bool) {
	root, err := s.Root()
	if err != nil {
		return
	}
	visited := make(map[body.ID]bool, len(s.bodies))
	var visit func(id body.ID, depth int) bool
	visit = func(id body.ID, depth int) bool {
		if visited[id] {
			return true
		}
		visited[id] = true
		b := s.bodies[id]
		if !fn(b, depth) {
			return false
		}
		for _, sid := range b.Satellites {
			if !visit(sid, depth+1) {
				return false
			}
		}
		return true
	}
	visit(root, 0)
}
