package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDispatchInEmissionOrder(t *testing.T) {
	b := NewBus()
	var got []string
	Subscribe(b, func(e HeightChanged) { got = append(got, "h"+e.Surface.String()) })
	Subscribe(b, func(e LineActivated) { got = append(got, "line") })

	Emit(b, HeightChanged{Sector: 1, Surface: Ceiling})
	Emit(b, LineActivated{Line: 3})
	Emit(b, HeightChanged{Sector: 1, Surface: Floor})
	Emit(b, EntityRemoved{})
	assert.Equal(t, 4, b.Pending())

	assert.Equal(t, 4, b.Dispatch())
	assert.Equal(t, []string{"hceiling", "line", "hfloor"}, got)
	assert.Equal(t, 0, b.Pending())
	assert.Equal(t, 0, b.Dispatch())
}

func TestEmitFromHandlerWaits(t *testing.T) {
	b := NewBus()
	n := 0
	Subscribe(b, func(e LineActivated) {
		n++
		if e.Line == 0 {
			Emit(b, LineActivated{Line: 1})
		}
	})
	Emit(b, LineActivated{})
	b.Dispatch()
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, b.Pending())
	b.Dispatch()
	assert.Equal(t, 2, n)
}
