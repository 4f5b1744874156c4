package mpu401

import (
	"sync"
	"time"
)

/*------------------------------------------------------------------
 *
 * Name:	RealTimeScheduler
 *
 * Purpose:	The production Scheduler: each key maps to one live
 *		time.Timer, rescheduled (stop-then-reset) whenever the same
 *		key is scheduled again, same as the tick/eoi-dispatch keys
 *		in mpu401_clock.go and mpu401_eoi.go expect.
 *
 *--------------------------------------------------------------------*/

type RealTimeScheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func NewRealTimeScheduler() *RealTimeScheduler {
	return &RealTimeScheduler{timers: make(map[string]*time.Timer)}
}

func (s *RealTimeScheduler) Schedule(key string, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[key]; ok {
		t.Stop()
	}
	s.timers[key] = time.AfterFunc(d, fn)
}

func (s *RealTimeScheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[key]; ok {
		t.Stop()
		delete(s.timers, key)
	}
}
