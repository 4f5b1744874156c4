package mpu401

/*------------------------------------------------------------------
 *
 * Name:	notesOff / notesOffAllChannels
 *
 * Purpose:	§4.7: if allnotesoff_out is set and nothing is held on
 *		input for this channel, a single CC-123 does the job;
 *		otherwise walk the reference table's key bitmap and turn
 *		off exactly the notes the input side isn't also holding.
 *
 *--------------------------------------------------------------------*/

func (m *MPU401State) notesOff(chanIdx int) {
	ch := byte(chanIdx)
	refNum := m.chToRef[ch]

	hasInputHeld := m.anyInputHeld(ch)

	if m.filter.allNotesOffOnStop && !hasInputHeld {
		m.sendThroughAssembler(0xB0|ch, 0x7B, 0x00)
	} else if m.chanref[refNum].on {
		for key := byte(0); key < 128; key++ {
			if m.chanref[refNum].key.Get(key) && !m.inputref[ch].key.Get(key) {
				m.sendThroughAssembler(0x80|ch, key, 0)
			}
		}
	}
	m.chanref[refNum].key.ClearAll()
}

func (m *MPU401State) notesOffAllChannels() {
	for ch := 0; ch < numMidiChannels; ch++ {
		m.notesOff(ch)
	}
}

func (m *MPU401State) anyInputHeld(ch byte) bool {
	if !m.inputref[ch].on {
		return false
	}
	for key := byte(0); key < 128; key++ {
		if m.inputref[ch].key.Get(key) {
			return true
		}
	}
	return false
}
