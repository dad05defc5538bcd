package ecs

// Removable is implemented by all component stores so the Registry can
// bulk-remove an entity's data from every store on destroy.
type Removable interface {
	Remove(id EntityID)
}

// PtrComponentStore is a typed component store that iterates in insertion
// order, so every pass over it is reproducible tick to tick.
type PtrComponentStore[T any] struct {
	ids   []EntityID
	data  []*T
	index map[EntityID]int
}

func NewPtrComponentStore[T any]() *PtrComponentStore[T] {
	return &PtrComponentStore[T]{index: make(map[EntityID]int, 64)}
}

// Set replaces an existing component in place; a new one goes to the end.
func (s *PtrComponentStore[T]) Set(id EntityID, c *T) {
	if i, ok := s.index[id]; ok {
		s.data[i] = c
		return
	}
	s.index[id] = len(s.ids)
	s.ids = append(s.ids, id)
	s.data = append(s.data, c)
}

func (s *PtrComponentStore[T]) Get(id EntityID) (*T, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.data[i], true
}

// Remove keeps the relative order of the remaining components.
func (s *PtrComponentStore[T]) Remove(id EntityID) {
	i, ok := s.index[id]
	if !ok {
		return
	}
	delete(s.index, id)
	copy(s.ids[i:], s.ids[i+1:])
	copy(s.data[i:], s.data[i+1:])
	s.ids = s.ids[:len(s.ids)-1]
	s.data[len(s.data)-1] = nil
	s.data = s.data[:len(s.data)-1]
	for j := i; j < len(s.ids); j++ {
		s.index[s.ids[j]] = j
	}
}

func (s *PtrComponentStore[T]) Has(id EntityID) bool {
	_, ok := s.index[id]
	return ok
}

func (s *PtrComponentStore[T]) Len() int {
	return len(s.ids)
}

// Each visits components in insertion order. fn must not add or remove
// components of this store.
func (s *PtrComponentStore[T]) Each(fn func(EntityID, *T)) {
	for i, id := range s.ids {
		fn(id, s.data[i])
	}
}
