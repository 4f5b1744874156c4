package mpu401

/*------------------------------------------------------------------
 *
 * Name:	WriteCommand
 *
 * Purpose:	§4.5 command decoder. In UART mode every command but
 *		0xFF is ignored. In intelligent mode this runs atomically
 *		under the device lock; midi_thru is switched on the first
 *		time any command arrives after power-on (an observed-
 *		compatibility quirk, not a deliberate design choice).
 *
 *--------------------------------------------------------------------*/

func (m *MPU401State) WriteCommand(val byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mode == modeUART {
		if val == 0xFF {
			m.beginReset()
		}
		return
	}

	if val == 0xFF {
		m.beginReset()
		return
	}

	if m.flags.reset {
		m.cmdPending = val
		m.hasPending = true
		return
	}

	if !m.midiThruPrimed {
		m.filter.midiThru = true
		m.midiThruPrimed = true
	}

	selfResponded := m.dispatchCommand(val)
	if !selfResponded {
		m.queueByte(msgMPUAck)
	}
}

// dispatchCommand performs val's side effects, returning true if it
// already enqueued its own response sequence (so WriteCommand should
// not also append a plain ACK).
func (m *MPU401State) dispatchCommand(val byte) (selfResponded bool) {
	switch {
	case val <= 0x2F:
		m.cmdSequencerState(val)
		return true

	case val >= 0x40 && val <= 0x7F:
		m.cmdReferenceTableSetup(val)
		return false

	case val >= 0xA0 && val <= 0xA7:
		m.queueByte(byte(m.playbuf[val&7].counter))
		return false

	case val >= 0xD0 && val <= 0xD7:
		m.flags.wsd = true
		m.flags.wsdStart = true
		m.oldTrack = m.trackNum
		m.trackNum = int(val & 7)
		return false
	}

	switch val {
	case 0x30:
		m.filter.allNotesOffOnStop = false
	case 0x32:
		m.filter.rtOut = false
	case 0x33:
		m.filter.allThru = false
		m.filter.commonThru = false
		m.filter.midiThru = false
		for i := range m.inputref {
			m.inputref[i].key.ClearAll()
		}
	case 0x34:
		m.filter.timingInStop = true
	case 0x35:
		m.filter.modeMsgsIn = true
	case 0x37:
		m.filter.sysexThru = true
	case 0x38:
		m.filter.commonMsgsIn = true
	case 0x39:
		m.filter.rtIn = true
	case 0x3F:
		m.mode = modeUART
	case 0x80:
		if m.flags.syncIn {
			m.clock.freqMod = 1.0
		}
		m.flags.syncIn = false
	case 0x82:
		m.flags.syncIn = true
		m.clock.ticksIn = 0
	case 0x83:
		m.clock.metronomeState = 0
	case 0x84:
		m.clock.metronomeState = 1
	case 0x85:
		m.clock.metronomeState = 2
	case 0x86:
		m.filter.benderIn = false
	case 0x87:
		m.filter.benderIn = true
	case 0x88:
		m.filter.midiThru = false
		for i := range m.inputref {
			m.inputref[i].on = false
			m.inputref[i].key.ClearAll()
		}
	case 0x89:
		m.filter.midiThru = true
		for i := range m.inputref {
			m.inputref[i].on = true
		}
	case 0x8A:
		m.filter.dataInStop = true
	case 0x8B:
		m.filter.dataInStop = false
	case 0x8C:
		m.filter.recMeasureEnd = true
	case 0x8D:
		m.filter.recMeasureEnd = false
	case 0x8E:
		m.flags.condSet = true
	case 0x8F:
		m.flags.condSet = false
	case 0x90:
		m.filter.rtAffection = true
	case 0x91:
		m.filter.rtAffection = false
	case 0x94:
		m.flags.clockToHost = false
	case 0x95:
		m.flags.clockToHost = true
	case 0x96:
		m.filter.sysexIn = true
		m.filter.sysexThru = false
	case 0x97:
		m.filter.sysexIn = false
	case 0xAB:
		m.queueByte(msgMPUAck)
		m.queueByte(byte(m.clock.recCounter))
		m.clock.recCounter = 0
		return true
	case 0xAC:
		m.queueByte(msgMPUAck)
		m.queueByte(DeviceVersion)
		return true
	case 0xAD:
		m.queueByte(msgMPUAck)
		m.queueByte(DeviceRevision)
		return true
	case 0xAF:
		m.queueByte(msgMPUAck)
		m.queueByte(byte(m.clock.tempo))
		return true
	case 0xB1:
		m.clock.tempoRel = 0x40
		m.recomputeClock()
	case 0xB8:
		m.flags.conductor = m.flags.condSet
		m.amask = m.tmask
	case 0xB9:
		m.notesOffAllChannels()
		m.playbuf = [numTracks]track{}
		for i := range m.playbuf {
			m.playbuf[i].kind = typeOverflow
		}
	case 0xBA:
		m.clock.recCounter = 0
	case 0xDF:
		m.flags.wsm = true
	case 0xE0, 0xE1, 0xE2, 0xE4, 0xE6, 0xE7, 0xEC, 0xED, 0xEE, 0xEF:
		m.commandByte = val
	default:
		if val >= 0xC2 && val <= 0xC8 {
			idx := int(val - 0xC2)
			m.clock.timebase = clockTimebases[idx]
			m.recomputeClock()
		} else if val >= 0x98 && val <= 0x9F {
			table := int(val - 0x98)
			if table < numRefTables {
				m.chanref[table].on = val&1 != 0
			}
		}
	}

	return false
}

/*------------------------------------------------------------------
 *
 * Name:	cmdSequencerState
 *
 * Purpose:	§4.5 "Sequencer-state commands 0x00..0x2F": three
 *		orthogonal sub-fields packed into one byte.
 *
 *--------------------------------------------------------------------*/

func (m *MPU401State) cmdSequencerState(val byte) {
	switch val & 3 {
	case 1:
		m.router.RawOutRTByte(0xFC)
		m.snapshotCounters()
		m.lastRTCmd = 0xFC
	case 2:
		m.router.RawOutRTByte(0xFB)
		m.zeroCounters()
		m.lastRTCmd = 0xFB
	case 3:
		m.router.RawOutRTByte(0xFA)
		m.restoreCounters()
		m.lastRTCmd = 0xFA
	}

	switch val & 0xC {
	case 4:
		m.notesOffAllChannels()
		m.prchgMask = 0
		m.flags.playing = false
	case 8:
		m.flags.playing = true
		m.clock.active = true
		m.recomputeClock()
	}

	switch val & 0x30 {
	case 0x10:
		m.queueByte(msgMPUAck)
		m.queueByte(byte(m.clock.recCounter))
		m.queueByte(msgMPUEnd)
		m.clock.recCounter = 0
		m.rec = recOff
		m.recGroupSelfResponded = true
	case 0x20:
		m.rec = recStandby
		if m.lastRTCmd == 0xFA || m.lastRTCmd == 0xFB {
			m.rec = recOn
			m.clock.active = true
			m.recomputeClock()
		}
		if val == 0x20 || val == 0x26 {
			m.recordQueue.Push(byte(m.clock.recCounter))
		}
	case 0x00:
		if m.rec == recStandby && (m.lastRTCmd == 0xFA || m.lastRTCmd == 0xFB) {
			m.rec = recOn
			m.clock.active = true
			m.recomputeClock()
		}
	}

	if !m.recGroupSelfResponded {
		m.queueByte(msgMPUAck)
	}
	m.recGroupSelfResponded = false

	m.flushProgramChanges()
}

func (m *MPU401State) snapshotCounters() {
	for i := range m.playbuf {
		m.counterSnapshot[i] = m.playbuf[i].counter
	}
	m.condSnapshot = m.condbuf.counter
}

func (m *MPU401State) zeroCounters() {
	for i := range m.playbuf {
		m.playbuf[i].counter = 0
	}
	m.condbuf.counter = 0
}

func (m *MPU401State) restoreCounters() {
	for i := range m.playbuf {
		m.playbuf[i].counter = m.counterSnapshot[i]
	}
	m.condbuf.counter = m.condSnapshot
}

/*------------------------------------------------------------------
 *
 * Name:	cmdReferenceTableSetup
 *
 * Purpose:	§4.5 commands 0x40..0x7F: assign a MIDI channel to one of
 *		the reference tables. Reassigning a channel away from its
 *		previous table redirects that table's former occupant
 *		channel to the sink table (index 4), so a stale bitmap
 *		never lingers against a channel no longer using it.
 *
 *--------------------------------------------------------------------*/

func (m *MPU401State) cmdReferenceTableSetup(val byte) {
	table := int((val >> 4) & 3)
	ch := val & 0x0F

	for c := 0; c < numMidiChannels; c++ {
		if c != int(ch) && m.chToRef[c] == table {
			m.chToRef[c] = sinkRefTable
		}
	}

	m.chToRef[ch] = table
}

// flushProgramChanges drains the input-side program-change buffer
// (§4.8) into the record queue as {rec_counter, 0xC0|ch, program}
// triplets, per §4.5's sequencer-state command group.
func (m *MPU401State) flushProgramChanges() {
	for ch := 0; ch < numMidiChannels; ch++ {
		if m.prchgMask&(1<<uint(ch)) == 0 {
			continue
		}
		m.recordQueue.Push(byte(m.clock.recCounter))
		m.recordQueue.Push(0xC0 | byte(ch))
		m.recordQueue.Push(m.prchgBuf[ch])
		m.prchgMask &^= 1 << uint(ch)
	}
}
