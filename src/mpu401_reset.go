package mpu401

/*------------------------------------------------------------------
 *
 * Name:	Reset / hardReset / resetDone
 *
 * Purpose:	§4.5 "Reset": command 0xFF (or module init) schedules a
 *		reset that completes asynchronously after resetBusy
 *		(~14ms). While reset.reset is true, any other command
 *		byte is remembered in cmd_pending and replayed once the
 *		timer fires.
 *
 *--------------------------------------------------------------------*/

const resetTimerKey = "reset"

// beginReset is called under mu. It marks the device busy and arms the
// completion timer; WriteCommand checks flags.reset before decoding
// anything else.
func (m *MPU401State) beginReset() {
	m.flags.reset = true
	m.hasPending = false
	if m.scheduler != nil {
		m.scheduler.Schedule(resetTimerKey, resetBusy, m.resetDone)
	} else {
		m.resetDone()
	}
}

func (m *MPU401State) resetDone() {
	m.mu.Lock()
	wantIntelligent := m.mode == modeIntelligent || !m.everConfigured
	m.hardResetLocked(wantIntelligent)
	m.flags.reset = false
	pending, has := m.cmdPending, m.hasPending
	m.hasPending = false
	m.mu.Unlock()

	if has {
		m.WriteCommand(pending)
	}
}

// hardReset is the entry point used at construction time, before any
// lock is needed.
func (m *MPU401State) hardReset() {
	m.hardResetLocked(m.everConfigured && m.mode == modeIntelligent)
}

// hardResetLocked implements the body of §4.5 Reset. intelligent
// selects which mode survives the reset (mode is otherwise cleared
// along with everything else).
func (m *MPU401State) hardResetLocked(intelligent bool) {
	m.playbuf = [numTracks]track{}
	for i := range m.playbuf {
		m.playbuf[i].kind = typeOverflow
		m.playbuf[i].counter = 0
	}
	m.condbuf = track{kind: typeOverflow}

	m.flags = seqFlags{}
	m.flags.sysexInFinished = true // no sysex-in is in progress after a reset
	m.dataOnOff = 0
	m.commandByte = 0
	m.tmask = 0
	m.cmask = 0
	m.amask = m.tmask
	m.midiMask = 0xFFFF
	m.reqMask = 0
	m.trackNum = 0
	m.oldTrack = 0
	m.lastRTCmd = 0
	m.rec = recOff
	m.prchgMask = 0

	m.clock = clockState{
		timebase:  120,
		tempo:     100,
		tempoRel:  0x40,
		tempoGrad: 0,
		freqMod:   1.0,
		cthRate:   [4]int{60, 60, 60, 60},
		midimetro: 12,
		metromeas: 8,
	}
	m.recomputeClock()

	m.filter = filterFlags{
		recMeasureEnd:     true,
		rtOut:             true,
		rtAffection:       true,
		allNotesOffOnStop: true,
		allThru:           true,
		midiThru:          true,
		commonThru:        true,
	}

	for i := 0; i < numMidiChannels; i++ {
		if i < 4 {
			m.chToRef[i] = i
		} else {
			m.chToRef[i] = sinkRefTable
		}
		m.inputref[i] = inputRef{chan_: byte(i)}
	}
	for i := range m.chanref {
		m.chanref[i] = refTable{}
	}
	for i := 0; i < 4; i++ {
		m.chanref[i].chan_ = byte(i)
	}

	m.outputQueue.Clear()
	m.recordQueue.Clear()

	if intelligent {
		m.mode = modeIntelligent
	} else {
		m.mode = modeUART
	}
	m.everConfigured = true

	m.sendAllNotesOffAllChannels()
}

// sendAllNotesOffAllChannels emits 0xB0..0xBF, 0x7B, 0x00 on every MIDI
// channel, straight through the output assembler on slot MPU, per the
// last step of §4.5 Reset.
func (m *MPU401State) sendAllNotesOffAllChannels() {
	if m.router == nil {
		return
	}
	for ch := 0; ch < numMidiChannels; ch++ {
		m.router.RawOutByte(SlotMPU, 0xB0|byte(ch))
		m.router.RawOutByte(SlotMPU, 0x7B)
		m.router.RawOutByte(SlotMPU, 0x00)
	}
}
