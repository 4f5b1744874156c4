package mpu401

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDevice(t *testing.T) *MPU401State {
	t.Helper()
	m, _ := newTestDeviceWithHandler(t)
	return m
}

func newTestDeviceWithHandler(t *testing.T) (*MPU401State, *fakeHandler) {
	t.Helper()
	reg := NewHandlerRegistry()
	r := NewMidiRouter(reg)
	h := &fakeHandler{}
	r.SetOutput(h)
	r.SetRealtimeEnabled(true)
	r.SetClockOutEnabled(true)
	m := NewMPU401State(r, &fakeScheduler{})
	r.Attach(m)
	m.SetMode(true)
	m.hardReset()
	// Both resets above emit their all-notes-off burst into h; start
	// every test with an empty record.
	h.mu.Lock()
	h.messages = nil
	h.mu.Unlock()
	return m, h
}

func popAll(m *MPU401State) []byte {
	var out []byte
	for {
		b, ok := m.outputQueue.Pop()
		if !ok {
			return out
		}
		out = append(out, b)
	}
}

func TestWriteCommand_VersionQueryRespondsAckThenValue(t *testing.T) {
	m := newTestDevice(t)

	m.WriteCommand(0xAC)

	got := popAll(m)
	require.Len(t, got, 2)
	assert.Equal(t, msgMPUAck, got[0])
	assert.Equal(t, byte(DeviceVersion), got[1])
}

func TestWriteCommand_RevisionQueryRespondsAckThenValue(t *testing.T) {
	m := newTestDevice(t)

	m.WriteCommand(0xAD)

	got := popAll(m)
	require.Len(t, got, 2)
	assert.Equal(t, msgMPUAck, got[0])
	assert.Equal(t, byte(DeviceRevision), got[1])
}

func TestWriteCommand_PlainCommandGetsBareAck(t *testing.T) {
	m := newTestDevice(t)

	m.WriteCommand(0x32) // rt_out off, no self-response

	got := popAll(m)
	require.Len(t, got, 1)
	assert.Equal(t, msgMPUAck, got[0])
}

func TestWriteCommand_CommandDuringResetIsDeferred(t *testing.T) {
	m := newTestDevice(t)

	m.WriteCommand(0xFF) // begin reset; fakeScheduler never fires resetDone
	m.WriteCommand(0xAC) // should be remembered, not dispatched yet

	m.mu.Lock()
	pending, has := m.cmdPending, m.hasPending
	reset := m.flags.reset
	m.mu.Unlock()

	assert.True(t, reset)
	assert.True(t, has)
	assert.Equal(t, byte(0xAC), pending)
}

func TestWriteCommand_TimebaseSelection(t *testing.T) {
	m := newTestDevice(t)

	m.WriteCommand(0xC5) // index 3 -> clockTimebases[3]

	m.mu.Lock()
	tb := m.clock.timebase
	m.mu.Unlock()
	assert.Equal(t, clockTimebases[3], tb)
}

func TestCmdReferenceTableSetup_RedirectsPreviousOccupantToSink(t *testing.T) {
	m := newTestDevice(t)

	m.mu.Lock()
	m.cmdReferenceTableSetup(0x10) // table 1, channel 0
	m.cmdReferenceTableSetup(0x11) // table 1, channel 1 - channel 0 must fall back to sink
	table0 := m.chToRef[0]
	table1 := m.chToRef[1]
	m.mu.Unlock()

	assert.Equal(t, sinkRefTable, table0)
	assert.Equal(t, 1, table1)
}

func TestCmdReferenceTableSetup_DoesNotRedirectOtherTables(t *testing.T) {
	m := newTestDevice(t)

	m.mu.Lock()
	m.cmdReferenceTableSetup(0x00) // table 0, channel 0
	m.cmdReferenceTableSetup(0x11) // table 1, channel 1 - must not touch channel 0
	table0 := m.chToRef[0]
	m.mu.Unlock()

	assert.Equal(t, 0, table0)
}

func TestCmdSequencerState_PlayBitStartsPlaying(t *testing.T) {
	m := newTestDevice(t)

	m.mu.Lock()
	m.cmdSequencerState(0x08) // play bit only
	playing := m.flags.playing
	active := m.clock.active
	m.mu.Unlock()

	assert.True(t, playing)
	assert.True(t, active)
}

func TestCmdSequencerState_StopBitClearsPlaying(t *testing.T) {
	m := newTestDevice(t)

	m.mu.Lock()
	m.flags.playing = true
	m.cmdSequencerState(0x04) // stop bit
	playing := m.flags.playing
	m.mu.Unlock()

	assert.False(t, playing)
}

func TestCmdSequencerState_RecordStopRespondsAckCounterEnd(t *testing.T) {
	m := newTestDevice(t)

	m.mu.Lock()
	m.clock.recCounter = 42
	m.cmdSequencerState(0x10)
	rec := m.rec
	m.mu.Unlock()

	got := popAll(m)
	require.Len(t, got, 3)
	assert.Equal(t, msgMPUAck, got[0])
	assert.Equal(t, byte(42), got[1])
	assert.Equal(t, msgMPUEnd, got[2])
	assert.Equal(t, recOff, rec)
}

func TestRecomputeClock_TempoClampedToTimebaseRange(t *testing.T) {
	m := newTestDevice(t)

	m.mu.Lock()
	m.clock.timebase = 48
	m.clock.tempo = 1 // far below the minimum for this timebase
	m.clock.tempoRel = 0x40
	m.recomputeClock()
	freq := m.clock.freq
	m.mu.Unlock()

	// minTempo for timebase<120 is 16, so freq must reflect the clamp,
	// not the raw (far lower) requested tempo.
	assert.Equal(t, float64(48*16), freq)
}

func TestRecomputeClock_HighTimebaseLowersMaxTempo(t *testing.T) {
	m := newTestDevice(t)

	m.mu.Lock()
	m.clock.timebase = 192
	m.clock.tempo = 255
	m.clock.tempoRel = 0x40
	m.recomputeClock()
	freq := m.clock.freq
	m.mu.Unlock()

	assert.Equal(t, float64(192*179), freq)
}
