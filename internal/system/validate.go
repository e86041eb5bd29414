package system

import (
	"fmt"
	"log/slog"

	"github.com/talgya/planetgen/internal/body"
)

// Validate checks the system invariants: the root is registered, every
// parent chain ends at the root, satellite links agree with parent links,
// and a traversal from the root reaches every registered body exactly once.
func (s *System) Validate() error {
	root, err := s.Root()
	if err != nil {
		return err
	}
	if s.bodies[root].HasParent() {
		return fmt.Errorf("%w: root %q has a parent", ErrInconsistent, s.bodies[root].Name)
	}

	for _, b := range s.bodies {
		if s.byName[b.Name] != b.ID {
			return fmt.Errorf("%w: %q registered under a different id", ErrInconsistent, b.Name)
		}
		if b.ID == root {
			continue
		}
		if err := s.checkChain(b, root); err != nil {
			return err
		}
		parent := s.bodies[b.Parent]
		if !contains(parent.Satellites, b.ID) {
			return fmt.Errorf("%w: %q missing from satellites of %q", ErrInconsistent, b.Name, parent.Name)
		}
	}

	seen := make(map[body.ID]int, len(s.bodies))
	var visit func(id body.ID)
	visit = func(id body.ID) {
		seen[id]++
		if seen[id] > 1 {
			return
		}
		for _, sid := range s.bodies[id].Satellites {
			visit(sid)
		}
	}
	visit(root)

	for id, n := range seen {
		if n > 1 {
			return fmt.Errorf("%w: %q reachable %d times", ErrInconsistent, s.bodies[id].Name, n)
		}
	}
	if len(seen) != len(s.bodies) {
		return fmt.Errorf("%w: %d of %d bodies reachable from root", ErrInconsistent, len(seen), len(s.bodies))
	}
	return nil
}

func (s *System) checkChain(b *body.Body, root body.ID) error {
	cur := b
	for steps := 0; steps <= len(s.bodies); steps++ {
		if cur.Parent == root {
			return nil
		}
		next := s.ByID(cur.Parent)
		if next == nil {
			return fmt.Errorf("%w: %q has no resolvable parent", ErrInconsistent, cur.Name)
		}
		cur = next
	}
	return fmt.Errorf("%w: parent cycle through %q", ErrInconsistent, b.Name)
}

// FromBodies ingests a pre-built system. The first star-kind body without a
// parent name is the root. parentNames maps body name to parent name; bodies
// whose parent cannot be resolved are logged and left detached, and the
// assembled system is then validated. The system holds copies, so the
// caller's bodies are never modified. A body whose name is already taken is
// dropped.
func FromBodies(name string, bodies []*body.Body, parentNames map[string]string) (*System, error) {
	rootIdx := -1
	for i, b := range bodies {
		if b.Kind.IsStar() && parentNames[b.Name] == "" {
			rootIdx = i
			break
		}
	}
	if rootIdx < 0 {
		return nil, ErrNoRoot
	}

	s, err := New(name, clone(bodies[rootIdx]))
	if err != nil {
		return nil, err
	}
	var inserted []*body.Body
	for i, b := range bodies {
		if i == rootIdx {
			continue
		}
		c := clone(b)
		if _, res := s.Insert(c); res == Inserted {
			inserted = append(inserted, c)
		}
	}
	for _, b := range inserted {
		parentName := parentNames[b.Name]
		parent, ok := s.Body(parentName)
		if !ok {
			slog.Warn("body has no resolvable parent", "system", name, "body", b.Name, "parent", parentName)
			continue
		}
		s.Attach(parent.ID, b.ID)
	}

	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

func clone(b *body.Body) *body.Body {
	c := *b
	c.Satellites = nil
	return &c
}

// ParentNames returns the body → parent name mapping used by FromBodies.
func (s *System) ParentNames() map[string]string {
	out := make(map[string]string, len(s.bodies))
	for _, b := range s.bodies {
		if p := s.ByID(b.Parent); p != nil {
			out[b.Name] = p.Name
		}
	}
	return out
}

func contains(ids []body.ID, id body.ID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
