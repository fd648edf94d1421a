package editor

// Change is a bit set describing what part of the state changed.
type Change uint8

const (
	ChangeShapes Change = 1 << iota
	ChangeSelection
	ChangeTool
	ChangeHistory
)

func (c Change) Has(flag Change) bool {
	return c&flag != 0
}

// Subscribe registers fn to be called synchronously after every state
// change. The returned func removes the listener.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	return func() { delete(s.listeners, id) }
}

func (s *Store) notify(c Change) {
	for _, fn := range s.listeners {
		fn(c)
	}
}
