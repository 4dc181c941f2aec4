package device

// Scope tracks device objects created during one build step so they are
// released on every exit path, including early error returns. Objects whose
// ownership moves out of the build are removed with Keep before the scope
// closes; Close releases the rest in reverse creation order.
type Scope struct {
	objs []Object
}

// NewScope returns an empty scope.
//
// Returns:
//   - *Scope: the scope, ready to track objects
func NewScope() *Scope {
	return &Scope{}
}

// Track registers an object for release when the scope closes.
//
// Parameters:
//   - obj: the object to track
func (s *Scope) Track(obj Object) {
	s.objs = append(s.objs, obj)
}

// Keep removes an object from the scope so Close will not release it. Call
// it once ownership has transferred to a longer-lived owner.
//
// Parameters:
//   - obj: the object to stop tracking
func (s *Scope) Keep(obj Object) {
	for i, o := range s.objs {
		if o == obj {
			s.objs = append(s.objs[:i], s.objs[i+1:]...)
			return
		}
	}
}

// Close releases every still-tracked object in reverse creation order and
// empties the scope. Closing an empty scope is a no-op.
func (s *Scope) Close() {
	for i := len(s.objs) - 1; i >= 0; i-- {
		s.objs[i].Release()
	}
	s.objs = nil
}
