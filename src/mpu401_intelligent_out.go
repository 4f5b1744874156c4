package mpu401

/*------------------------------------------------------------------
 *
 * Name:	intelligentOut
 *
 * Purpose:	§4.6: per-track emitter. Suppresses redundant note
 *		events between an external keyboard and sequencer
 *		playback using the reference-table / input-side key
 *		bitmaps, then sends the message through the output
 *		assembler on slot MPU.
 *
 *--------------------------------------------------------------------*/

func (m *MPU401State) intelligentOut(i int) {
	buf := &m.playbuf[i]

	switch buf.kind {
	case typeOverflow:
		return

	case typeMark:
		if buf.sysVal == 0xFC {
			m.router.RawOutRTByte(0xFC)
			m.amask &^= 1 << uint(i)
		}
		return
	}

	if buf.kind != typeMIDINormal {
		return
	}

	status := buf.value[0]
	chan_ := status & 0x0F
	key := buf.value[1] & 0x7F
	refNum := m.chToRef[chan_]

	switch status & 0xF0 {
	case 0x80: // note-off
		if m.inputref[chan_].on && m.inputref[chan_].key.Get(key) {
			return
		}
		if m.chanref[refNum].on && !m.chanref[refNum].key.Get(key) {
			return
		}
		m.chanref[refNum].key.Clear(key)

	case 0x90: // note-on
		if m.inputref[chan_].key.Get(key) || m.chanref[refNum].key.Get(key) {
			m.sendThroughAssembler(0x80|chan_, key, 0)
		}
		m.chanref[refNum].key.Set(key)

	case 0xB0:
		if buf.value[1] == 123 {
			m.notesOff(int(chan_))
			return
		}
	}

	m.sendThroughAssembler(buf.value[0], buf.value[1], buf.value[2])
}

// sendThroughAssembler feeds a fully-assembled 1..3 byte message
// through the output assembler byte by byte on slot MPU, reusing the
// same running-status machinery a guest-driven write would.
func (m *MPU401State) sendThroughAssembler(status, d1, d2 byte) {
	length := statusLength(status)
	m.router.RawOutByte(SlotMPU, status)
	if length >= 2 {
		m.router.RawOutByte(SlotMPU, d1)
	}
	if length >= 3 {
		m.router.RawOutByte(SlotMPU, d2)
	}
}
