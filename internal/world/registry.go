package world

// Registry is an insertion-ordered set with O(1) membership checks.
// Iteration goes through Snapshot so callbacks may add or remove members
// mid-walk.
//
// Accessed only from the game loop goroutine - no locks needed.
type Registry[T comparable] struct {
	members map[T]struct{}
	order   []T
}

func NewRegistry[T comparable]() *Registry[T] {
	return &Registry[T]{members: make(map[T]struct{})}
}

// Add inserts v. Returns false if it was already present.
func (r *Registry[T]) Add(v T) bool {
	if _, ok := r.members[v]; ok {
		return false
	}
	r.members[v] = struct{}{}
	r.order = append(r.order, v)
	return true
}

// Remove deletes v. Returns false if it was not present.
func (r *Registry[T]) Remove(v T) bool {
	if _, ok := r.members[v]; !ok {
		return false
	}
	delete(r.members, v)
	for i, o := range r.order {
		if o == v {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

func (r *Registry[T]) Contains(v T) bool {
	_, ok := r.members[v]
	return ok
}

func (r *Registry[T]) Len() int { return len(r.members) }

// Snapshot copies the members in insertion order.
func (r *Registry[T]) Snapshot() []T {
	out := make([]T, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry[T]) Clear() {
	r.members = make(map[T]struct{})
	r.order = r.order[:0]
}
