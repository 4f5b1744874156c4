package mpu401

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealTimeScheduler_FiresAfterDelay(t *testing.T) {
	s := NewRealTimeScheduler()
	done := make(chan struct{})

	s.Schedule("k", 5*time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
}

func TestRealTimeScheduler_ReschedulingSameKeyCancelsPriorTimer(t *testing.T) {
	s := NewRealTimeScheduler()
	var fired int32

	s.Schedule("k", 10*time.Millisecond, func() { atomic.AddInt32(&fired, 1) })
	s.Schedule("k", 10*time.Millisecond, func() { atomic.AddInt32(&fired, 1) })

	time.Sleep(50 * time.Millisecond)
	assert.EqualValues(t, 1, atomic.LoadInt32(&fired), "only the second schedule for the same key should fire")
}

func TestRealTimeScheduler_CancelPreventsFiring(t *testing.T) {
	s := NewRealTimeScheduler()
	var fired int32

	s.Schedule("k", 10*time.Millisecond, func() { atomic.AddInt32(&fired, 1) })
	s.Cancel("k")

	time.Sleep(30 * time.Millisecond)
	assert.EqualValues(t, 0, atomic.LoadInt32(&fired))
}

func TestRealTimeScheduler_IndependentKeysFireIndependently(t *testing.T) {
	s := NewRealTimeScheduler()
	doneA := make(chan struct{})
	doneB := make(chan struct{})

	s.Schedule("a", 5*time.Millisecond, func() { close(doneA) })
	s.Schedule("b", 5*time.Millisecond, func() { close(doneB) })

	for _, ch := range []chan struct{}{doneA, doneB} {
		select {
		case <-ch:
		case <-time.After(time.Second):
			t.Fatal("timer never fired")
		}
	}
}
