package mpu401

/*------------------------------------------------------------------
 *
 * Name:	InputMessage / InputRealtime / InputSysex
 *
 * Purpose:	§4.3 input demultiplexer: the far end of router_in.go's
 *		reassembler. In UART mode everything goes straight to the
 *		record queue untouched. In intelligent mode, channel
 *		voice messages update the input-side reference bitmap
 *		(which the output side consults for retrigger suppression),
 *		get buffered (program changes) or thru'd, and - if
 *		recording - appended to the record queue with a timing
 *		byte prefix.
 *
 *--------------------------------------------------------------------*/

func (m *MPU401State) InputMessage(status, d1, d2 byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mode == modeUART {
		m.pushRawRecord(status, d1, d2)
		return
	}

	kind := status & 0xF0
	ch := status & 0x0F

	switch {
	case kind >= 0x80 && kind <= 0xE0:
		if (kind == 0xA0 || kind == 0xD0 || kind == 0xE0) && !m.filter.benderIn {
			return
		}

		switch kind {
		case 0x80:
			m.inputref[ch].key.Clear(d1 & 0x7F)
		case 0x90:
			if d2 == 0 {
				m.inputref[ch].key.Clear(d1 & 0x7F)
			} else {
				m.inputref[ch].key.Set(d1 & 0x7F)
				m.inputref[ch].on = true
			}
		case 0xB0:
			if d1 == 123 {
				m.inputref[ch].key.ClearAll()
			}
		case 0xC0:
			m.prchgBuf[ch] = d1
			m.prchgMask |= 1 << uint(ch)
			return
		}

		channelEnabled := m.midiMask&(1<<uint(ch)) != 0

		if (m.filter.midiThru || m.filter.allThru) && channelEnabled {
			m.sendRawThrough(status, d1, d2)
		}
		if m.rec == recOn && channelEnabled {
			m.recordChannelMessage(status, d1, d2)
		}

	case status >= 0xF1 && status <= 0xF6:
		if !m.filter.commonMsgsIn {
			return
		}
		if m.filter.commonThru {
			m.sendRawThrough(status, d1, d2)
		}
		if m.rec == recOn {
			m.recordChannelMessage(status, d1, d2)
		}
	}
}

// InputRealtime handles the MIDI realtime bytes: clock (sync-in PLL
// adjustment), start/continue/stop (driven into the transport only when
// rt_in is enabled), and 0xFD-0xFF, which are recorded with a timing
// byte prefix only while recording.
func (m *MPU401State) InputRealtime(b byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mode == modeUART {
		m.recordQueue.Push(b)
		return
	}

	switch b {
	case 0xF8:
		if m.filter.timingInStop {
			return
		}
		if m.flags.syncIn {
			if m.clock.ticksIn > 0 {
				const clocksPerQuarter = 24.0
				m.clock.freqMod = clocksPerQuarter / float64(m.clock.ticksIn)
			}
			m.clock.ticksIn = 0
		}

	case 0xFA:
		if !m.filter.rtIn {
			return
		}
		m.zeroCounters()
		m.flags.playing = true
		m.clock.active = true
		m.recomputeClock()
		m.lastRTCmd = 0xFA

	case 0xFB:
		if !m.filter.rtIn {
			return
		}
		m.restoreCounters()
		m.flags.playing = true
		m.clock.active = true
		m.recomputeClock()
		m.lastRTCmd = 0xFB

	case 0xFC:
		if !m.filter.rtIn {
			return
		}
		m.snapshotCounters()
		m.flags.playing = false
		m.notesOffAllChannels()
		m.lastRTCmd = 0xFC

	case 0xFD, 0xFE, 0xFF:
		if m.rec == recOn {
			m.recordQueue.Push(byte(m.clock.recCounter))
			m.recordQueue.Push(b)
			m.flags.recCopy = true
		}
	}
}

func (m *MPU401State) InputSysex(buf []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mode == modeUART {
		for _, b := range buf {
			m.recordQueue.Push(b)
		}
		return
	}

	if m.filter.sysexThru {
		for _, b := range buf {
			m.router.RawOutByte(SlotMPU, b)
		}
	}

	if m.filter.sysexIn {
		m.recordQueue.Push(byte(m.clock.recCounter))
		for _, b := range buf {
			m.recordQueue.Push(b)
		}
		m.flags.recCopy = true
	}
}

func (m *MPU401State) sendRawThrough(status, d1, d2 byte) {
	length := statusLength(status)
	m.router.RawOutByte(SlotMPU, status)
	if length >= 2 {
		m.router.RawOutByte(SlotMPU, d1)
	}
	if length >= 3 {
		m.router.RawOutByte(SlotMPU, d2)
	}
}

func (m *MPU401State) recordChannelMessage(status, d1, d2 byte) {
	length := statusLength(status)
	m.recordQueue.Push(byte(m.clock.recCounter))
	m.recordQueue.Push(status)
	if length >= 2 {
		m.recordQueue.Push(d1)
	}
	if length >= 3 {
		m.recordQueue.Push(d2)
	}
	m.flags.recCopy = true
}

func (m *MPU401State) pushRawRecord(status, d1, d2 byte) {
	length := statusLength(status)
	m.recordQueue.Push(status)
	if length >= 2 {
		m.recordQueue.Push(d1)
	}
	if length >= 3 {
		m.recordQueue.Push(d2)
	}
}
