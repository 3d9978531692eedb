package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferEmitStampsTick(t *testing.T) {
	buf := NewBuffer(42, "gs-1")
	buf.Emit(Death, Medium, "something died", []string{"e1"}, []string{"death"}, nil)
	assert.Equal(t, 1, buf.Len())
	ev := buf.Events()[0]
	assert.Equal(t, int64(42), ev.Tick)
	assert.Equal(t, "gs-1", ev.GardenStateID)
	assert.Equal(t, Death, ev.EventType)
	assert.Equal(t, Medium, ev.Severity)
}

func TestBufferPreservesEmissionOrder(t *testing.T) {
	buf := NewBuffer(1, "gs-1")
	buf.Emit(Birth, Low, "first", nil, nil, nil)
	buf.Emit(Death, Low, "second", nil, nil, nil)
	evts := buf.Events()
	assert.Equal(t, "first", evts[0].Description)
	assert.Equal(t, "second", evts[1].Description)
}
