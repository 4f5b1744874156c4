package mpu401

import "time"

/*------------------------------------------------------------------
 *
 * Name:	ReadData / ReadStatus
 *
 * Purpose:	The guest-facing register interface (§4.4/§4.5). ReadData
 *		drains the output queue (falling back to the record queue
 *		mid rec-copy), primes the track/conductor data sub-state
 *		machine off the request byte it just returned, and clears
 *		IRQ once the queue runs dry. ReadStatus reports output-
 *		ready / input-busy in the usual bit7/bit6 convention.
 *
 *--------------------------------------------------------------------*/

func (m *MPU401State) ReadData() byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mode == modeUART {
		b, _ := m.recordQueue.Pop()
		return b
	}

	var b byte
	var ok bool

	if !m.outputQueue.Empty() {
		b, ok = m.outputQueue.Pop()
	} else if m.flags.recCopy && !m.recordQueue.Empty() {
		b, ok = m.recordQueue.Pop()
		if m.recordQueue.Empty() {
			m.flags.recCopy = false
		}
	}

	if !ok {
		return msgMPUAck
	}

	if m.outputQueue.Empty() {
		m.flags.irqPending = false
		m.irq().Deassert()
	}

	switch {
	case b >= 0xF0 && b <= 0xF7:
		m.flags.trackReq = true
		m.trackNum = int(b & 7)
		m.dataOnOff = 0

	case b == msgMPUCommandReq: // 0xF9
		m.flags.condReq = true
		m.flags.blockAck = true
		m.dataOnOff = 0
	}

	switch b {
	case msgMPUOverflow, msgMPUCommandReq, msgMPUEnd, msgMPUClock:
		m.eoiHandlerDispatch()
	}

	return b
}

func (m *MPU401State) ReadStatus() byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readStatusLocked()
}

func (m *MPU401State) readStatusLocked() byte {
	var status byte
	haveData := !m.outputQueue.Empty() || (m.flags.recCopy && !m.recordQueue.Empty())
	if !haveData {
		status |= 0x80
	}
	if m.flags.reset {
		status |= 0x40
	}
	return status
}

// ReadStatusTx is the throttled status-read alternative the "throttle"
// midioption (§6) selects: some guest drivers busy-poll the status port
// hard enough to peg a host CPU core, so this adds a small fixed delay
// outside the lock before reporting status.
const statusThrottleDelay = 6 * time.Microsecond

func (m *MPU401State) ReadStatusTx() byte {
	time.Sleep(statusThrottleDelay)
	return m.ReadStatus()
}
