// Package thinker runs registered behaviours once per tick in registration
// order.
//
// Entries live in an insertion-ordered slice addressed through generation
// checked handles. A behaviour may unregister itself or any other entry while
// a pass is running: removed entries are skipped and compacted out after the
// pass, so no live entry is skipped or visited twice.
package thinker

import (
	"github.com/fixedtick/levelsim/internal/core/ecs"
)

// Handle names one registration. A handle stays invalid after Unregister even
// if its slot is reused.
type Handle = ecs.EntityID

// Func is a behaviour. It receives its own handle so it can unregister itself.
type Func[T any] func(h Handle, v T)

type entry[T any] struct {
	h    Handle
	v    T
	fn   Func[T]
	dead bool
}

type Scheduler[T any] struct {
	pool    *ecs.EntityPool
	order   []*entry[T]
	byIndex map[uint32]*entry[T]
	running bool
	removed int
}

func New[T any]() *Scheduler[T] {
	return &Scheduler[T]{
		pool:    ecs.NewEntityPool(),
		byIndex: make(map[uint32]*entry[T]),
	}
}

// Register appends v at the end of the run order. A registration made during
// RunTick first runs on the next pass.
func (s *Scheduler[T]) Register(v T, fn Func[T]) Handle {
	e := &entry[T]{h: s.pool.Create(), v: v, fn: fn}
	s.order = append(s.order, e)
	s.byIndex[e.h.Index()] = e
	return e.h
}

// Unregister removes h. It returns false for stale or unknown handles.
func (s *Scheduler[T]) Unregister(h Handle) bool {
	if !s.pool.Alive(h) {
		return false
	}
	e := s.byIndex[h.Index()]
	delete(s.byIndex, h.Index())
	s.pool.Destroy(h)
	e.dead = true
	s.removed++
	if !s.running {
		s.compact()
	}
	return true
}

// RunTick invokes every live behaviour once.
func (s *Scheduler[T]) RunTick() {
	s.running = true
	n := len(s.order)
	for i := 0; i < n; i++ {
		e := s.order[i]
		if e.dead {
			continue
		}
		e.fn(e.h, e.v)
	}
	s.running = false
	s.compact()
}

func (s *Scheduler[T]) compact() {
	if s.removed == 0 {
		return
	}
	live := s.order[:0]
	for _, e := range s.order {
		if !e.dead {
			live = append(live, e)
		}
	}
	clear(s.order[len(live):])
	s.order = live
	s.removed = 0
}

// Len counts live registrations.
func (s *Scheduler[T]) Len() int { return len(s.order) - s.removed }

func (s *Scheduler[T]) Contains(h Handle) bool { return s.pool.Alive(h) }

func (s *Scheduler[T]) Get(h Handle) (T, bool) {
	if !s.pool.Alive(h) {
		var zero T
		return zero, false
	}
	return s.byIndex[h.Index()].v, true
}

// Each visits live registrations in run order without invoking them.
func (s *Scheduler[T]) Each(fn func(h Handle, v T)) {
	for _, e := range s.order {
		if !e.dead {
			fn(e.h, e.v)
		}
	}
}
