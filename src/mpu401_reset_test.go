package mpu401

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// firingScheduler runs the scheduled function on its own goroutine
// immediately, ignoring the requested delay, and reports the key back
// on firedCh once fn returns. Tests that need a reset (or other
// timer-driven completion) to actually happen use this instead of
// fakeScheduler, which never fires. The tick key is never fired: every
// reset and every tick re-arms it, so firing it would tick without end
// and fill firedCh ahead of the key a test waits for.
type firingScheduler struct {
	firedCh chan string
}

func newFiringScheduler() *firingScheduler {
	return &firingScheduler{firedCh: make(chan string, 8)}
}

func (s *firingScheduler) Schedule(key string, d time.Duration, fn func()) {
	if key == tickTimerKey {
		return
	}
	go func() {
		fn()
		s.firedCh <- key
	}()
}

func (s *firingScheduler) Cancel(key string) {}

func (s *firingScheduler) waitFor(t *testing.T, key string) {
	t.Helper()
	select {
	case got := <-s.firedCh:
		require.Equal(t, key, got)
	case <-time.After(time.Second):
		t.Fatalf("scheduler never fired key %q", key)
	}
}

func TestHardResetLocked_ClearsSequencerStateToDefaults(t *testing.T) {
	m, h := newTestDeviceWithHandler(t)

	m.mu.Lock()
	m.reqMask = 0xFFFF
	m.trackNum = 7
	m.rec = recOn
	m.amask = 0xFF
	m.playbuf[0].counter = 42
	m.hardResetLocked(true)
	reqMask := m.reqMask
	trackNum := m.trackNum
	rec := m.rec
	amask := m.amask
	counter := m.playbuf[0].counter
	midiMask := m.midiMask
	mode := m.mode
	m.mu.Unlock()

	assert.Zero(t, reqMask)
	assert.Zero(t, trackNum)
	assert.Equal(t, recOff, rec)
	assert.Zero(t, amask)
	assert.Zero(t, counter)
	assert.Equal(t, uint16(0xFFFF), midiMask)
	assert.Equal(t, modeIntelligent, mode)
	assert.NotEmpty(t, h.messages, "reset must emit the all-notes-off burst on every channel")
}

func TestHardResetLocked_UARTModeWhenNotIntelligent(t *testing.T) {
	m := newTestDevice(t)

	m.mu.Lock()
	m.hardResetLocked(false)
	mode := m.mode
	m.mu.Unlock()

	assert.Equal(t, modeUART, mode)
}

func TestSendAllNotesOffAllChannels_EmitsCC123OnEveryChannel(t *testing.T) {
	m, h := newTestDeviceWithHandler(t)
	h.mu.Lock()
	h.messages = nil
	h.mu.Unlock()

	m.mu.Lock()
	m.sendAllNotesOffAllChannels()
	m.mu.Unlock()

	require.Len(t, h.messages, numMidiChannels)
	for ch := 0; ch < numMidiChannels; ch++ {
		assert.Equal(t, [4]byte{0xB0 | byte(ch), 0x7B, 0x00, 3}, h.messages[ch])
	}
}

func TestSendAllNotesOffAllChannels_NoopWithoutRouter(t *testing.T) {
	m := NewMPU401State(nil, &fakeScheduler{})
	assert.NotPanics(t, func() { m.sendAllNotesOffAllChannels() })
}

func TestResetDone_ReplaysPendingCommandAfterTimerFires(t *testing.T) {
	sched := newFiringScheduler()
	reg := NewHandlerRegistry()
	r := NewMidiRouter(reg)
	h := &fakeHandler{}
	r.SetOutput(h)
	m := NewMPU401State(r, sched)
	r.Attach(m)
	m.SetMode(true)
	m.hardReset()

	m.WriteCommand(0xFF) // begin reset
	m.WriteCommand(0xAC) // deferred: version query

	sched.waitFor(t, resetTimerKey)

	// resetDone's deferred WriteCommand(pending) call runs synchronously
	// inside the firing goroutine; give it a moment to land in the queue.
	require.Eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		return !m.outputQueue.Empty()
	}, time.Second, time.Millisecond)

	got := popAll(m)
	require.Len(t, got, 2)
	assert.Equal(t, msgMPUAck, got[0])
	assert.Equal(t, byte(DeviceVersion), got[1])

	m.mu.Lock()
	reset := m.flags.reset
	m.mu.Unlock()
	assert.False(t, reset)
}
