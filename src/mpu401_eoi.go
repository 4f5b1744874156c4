package mpu401

import "math/bits"

/*------------------------------------------------------------------
 *
 * Name:	eoiHandlerLocked / eoiHandlerDispatch
 *
 * Purpose:	§4.5 "EOI handler": converts the lowest pending bit of
 *		req_mask into an 0xF0|i control byte for the guest, via
 *		queueByte. Deferred while a sysex-in is mid-stream or a
 *		rec-copy (§4.4) is in progress.
 *
 *--------------------------------------------------------------------*/

func (m *MPU401State) eoiHandlerLocked() {
	if !m.flags.sysexInFinished || m.flags.recCopy {
		return
	}

	if m.flags.sendNow {
		m.dispatchSendNow()
		m.flags.sendNow = false
	}

	if m.reqMask == 0 {
		return
	}

	bit := bits.TrailingZeros16(m.reqMask)
	m.reqMask &^= 1 << uint(bit)
	m.queueByte(0xF0 | byte(bit))
}

// eoiHandlerDispatch is the indirection the tick event and the data
// writer go through: when send_now is set, the actual EOI work is
// delayed by 60us so a same-tick command echo doesn't race the next
// tick's own data request (§4.5 "EOI handler").
func (m *MPU401State) eoiHandlerDispatch() {
	if m.flags.sendNow && m.scheduler != nil {
		m.scheduler.Schedule(eoiDispatchTimerKey, eoiDispatchDelay, func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.eoiHandlerLocked()
		})
		return
	}
	m.eoiHandlerLocked()
}

// dispatchSendNow performs the inline update that a timing byte of 0
// (§4.5 "Data write", phase 0) requested instead of waiting for the
// track/conductor counter to expire on its own.
func (m *MPU401State) dispatchSendNow() {
	if m.sendNowConductor {
		m.condbuf.counter = 0xF0
		m.reqMask |= 1 << 9
		m.sendNowConductor = false
		return
	}
	m.updateTrack(m.sendNowTrack)
}
