package mpu401

/*------------------------------------------------------------------
 *
 * Name:	WriteData
 *
 * Purpose:	§4.5 "Data write". First consumed by a pending
 *		command_byte (0xE0/E1/E2/E4/E6/E7/EC/ED/EE/EF awaiting
 *		their data byte); otherwise routed to whichever of the
 *		three sub-state machines is active: wsd (direct send on a
 *		track), wsm (direct system message), or track/conductor
 *		data (cond_req / track_req).
 *
 *--------------------------------------------------------------------*/

func (m *MPU401State) WriteData(val byte) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mode == modeUART {
		m.router.RawOutByte(SlotMPU, val)
		return
	}

	if m.commandByte != 0 {
		m.handleCommandByteData(val)
		return
	}

	switch {
	case m.flags.wsd:
		m.writeWSD(val)
	case m.flags.wsm:
		m.writeWSM(val)
	case m.flags.trackReq || m.flags.condReq:
		m.writeTrackData(val)
	}
}

func (m *MPU401State) handleCommandByteData(val byte) {
	cb := m.commandByte
	m.commandByte = 0
	switch cb {
	case 0xE0:
		m.clock.tempo = clampInt(int(val), 8, 250)
		m.recomputeClock()
	case 0xE1:
		m.clock.tempoRel = int(val)
		m.recomputeClock()
	case 0xE2:
		m.clock.tempoGrad = int(val)
	case 0xE4:
		m.clock.midimetro = int(val)
	case 0xE6:
		m.clock.metromeas = int(val)
	case 0xE7:
		m.rebuildClockToHostRates(val)
	case 0xEC:
		m.tmask = val
	case 0xED:
		m.cmask = val
	case 0xEE:
		m.midiMask = (m.midiMask & 0xFF00) | uint16(val)
	case 0xEF:
		m.midiMask = (m.midiMask & 0x00FF) | uint16(val)<<8
	}
}

// rebuildClockToHostRates implements command-byte 0xE7: cth_rate[i] =
// (val>>2) + cthData[(val&3)*4+i].
func (m *MPU401State) rebuildClockToHostRates(val byte) {
	base := int(val >> 2)
	sel := int(val&3) * 4
	for i := 0; i < 4; i++ {
		m.clock.cthRate[i] = base + int(cthData[sel+i])
	}
	m.clock.cthMode = 0
}

/*------------------------------------------------------------------
 *
 * Name:	writeWSD
 *
 * Purpose:	"write single data" - a direct MIDI send on track.
 *		First byte determines length from the status table; F0
 *		is illegal and aborts. On completion, the assembled
 *		message goes through §4.6 Intelligent-out on state.track,
 *		then track is restored to old_track.
 *
 *--------------------------------------------------------------------*/

func (m *MPU401State) writeWSD(val byte) {
	if m.flags.wsdStart {
		if val == 0xF0 {
			m.logger.Warn("illegal status byte in wsd, aborting")
			m.flags.wsd = false
			m.flags.wsdStart = false
			m.trackNum = m.oldTrack
			return
		}
		length := statusLength(val)
		if length == 0 {
			length = 1
		}
		m.wsdLength = length
		m.wsdPos = 1
		m.wsdBuf[0] = val
		m.flags.wsdStart = false
		if length == 1 {
			m.finishWSD()
		}
		return
	}

	m.wsdBuf[m.wsdPos] = val
	m.wsdPos++
	if m.wsdPos >= m.wsdLength {
		m.finishWSD()
	}
}

func (m *MPU401State) finishWSD() {
	buf := &m.playbuf[m.trackNum]
	buf.kind = typeMIDINormal
	buf.value = m.wsdBuf
	m.intelligentOut(m.trackNum)
	m.flags.wsd = false
	m.trackNum = m.oldTrack
}

/*------------------------------------------------------------------
 *
 * Name:	writeWSM
 *
 * Purpose:	"write system message" - a direct system message sent
 *		straight through the output assembler on slot MPU.
 *		Lengths: F2->3, F3->2, F6->1; F0 runs until any status
 *		byte >= 0x80 arrives, which is sent as 0xF7 instead.
 *
 *--------------------------------------------------------------------*/

func (m *MPU401State) writeWSM(val byte) {
	if !m.wsmActive {
		m.router.RawOutByte(SlotMPU, val)
		switch val {
		case 0xF2:
			m.wsmLength = 3
		case 0xF3:
			m.wsmLength = 2
		case 0xF6:
			m.wsmLength = 1
		case 0xF0:
			m.wsmLength = -1
		default:
			m.wsmLength = 1
		}
		m.wsmPos = 1
		m.wsmActive = true
		if m.wsmLength == 1 {
			m.flags.wsm = false
			m.wsmActive = false
		}
		return
	}

	if m.wsmLength == -1 {
		if val&0x80 != 0 {
			m.router.RawOutByte(SlotMPU, 0xF7)
			m.flags.wsm = false
			m.wsmActive = false
			return
		}
		m.router.RawOutByte(SlotMPU, val)
		return
	}

	m.router.RawOutByte(SlotMPU, val)
	m.wsmPos++
	if m.wsmPos >= m.wsmLength {
		m.flags.wsm = false
		m.wsmActive = false
	}
}

/*------------------------------------------------------------------
 *
 * Name:	writeTrackData
 *
 * Purpose:	Track/conductor data sub-state machine, driven by
 *		data_onoff: phase 0 is the timing byte, phase 1 the
 *		status byte, phase 2 the trailing data byte(s).
 *
 *--------------------------------------------------------------------*/

func (m *MPU401State) writeTrackData(val byte) {
	switch m.dataOnOff {
	case 0:
		if val < 0xF0 {
			m.dataOnOff = 1
			m.currentBuf().counter = int32(val)
			if val == 0 {
				m.flags.sendNow = true
				if m.flags.condReq {
					m.sendNowConductor = true
				} else {
					m.sendNowTrack = m.trackNum
				}
			}
			return
		}
		// val in 0xF0..0xFF ends the record.
		m.dataOnOff = -1
		m.flags.trackReq = false
		m.flags.condReq = false
		m.eoiHandlerDispatch()

	case 1:
		buf := m.currentBuf()

		if m.flags.condReq {
			switch val {
			case 0xF8, 0xF9, 0xFC:
				buf.kind = typeOverflow
				m.dataOnOff = 0
				m.flags.condReq = false
				m.eoiHandlerDispatch()
				return
			}
			if val >= 0xE0 && val <= 0xEF {
				buf.kind = typeCommand
				buf.value[0] = val
				buf.length = 2
				m.dataWritePos = 1
				m.dataOnOff = 2
				return
			}
			// Any other command byte on the conductor track
			// goes straight to EOI.
			m.dataOnOff = 0
			m.flags.condReq = false
			m.eoiHandlerDispatch()
			return
		}

		if val >= 0xF0 {
			buf.kind = typeMark
			buf.sysVal = val
			if val == 0xF9 {
				m.clock.measureCounter = 0
			}
			m.dataOnOff = 0
			m.finishTrackData()
			return
		}

		length := statusLength(val)
		if length == 0 {
			length = 1
		}
		buf.kind = typeMIDINormal
		buf.length = byte(length)
		buf.value[0] = val
		m.dataWritePos = 1
		if length <= 1 {
			m.dataOnOff = 0
			m.finishTrackData()
			return
		}
		m.dataOnOff = 2

	case 2:
		buf := m.currentBuf()
		buf.value[m.dataWritePos] = val
		m.dataWritePos++
		if m.dataWritePos >= int(buf.length) {
			m.dataOnOff = 0
			m.finishTrackData()
		}
	}
}

func (m *MPU401State) currentBuf() *track {
	if m.flags.condReq {
		return &m.condbuf
	}
	return &m.playbuf[m.trackNum]
}

func (m *MPU401State) finishTrackData() {
	m.flags.trackReq = false
	m.flags.condReq = false
	m.eoiHandlerDispatch()
}
