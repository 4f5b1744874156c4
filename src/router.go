package mpu401

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Output slot indices. THRU is the pass-through channel; it is never
// fed to a MIDI capture sink (out of scope for this package, but the
// invariant is preserved by simply never wiring one in).
const (
	SlotMPU = iota
	SlotSBUART
	SlotGUSUART
	SlotTHRU
	numSlots
)

// InputDevice names the peripheral the input demultiplexer currently
// routes to. NoInputDevice is the sentinel "nothing selected" value.
type InputDevice int

const (
	NoInputDevice InputDevice = iota
	InputMPU401
	InputSBUART
	InputGUSUART
)

type sysexAccum struct {
	buf          []byte
	used         int
	delayMS      int
	lastSendTick time.Time
	hasDelay     bool
}

type outSlot struct {
	runningStatus byte
	msg           [3]byte
	msgPos        int
	msgLen        int
	sysex         sysexAccum
}

/*------------------------------------------------------------------
 *
 * Name:	MidiRouter
 *
 * Purpose:	Process-wide singleton sitting between the guest-visible
 *		peripherals (MPU-401, SB UART, GUS UART) and a real MIDI
 *		backend: the output-side assembler (§4.2), the input-side
 *		demultiplexer (§4.3), and the handler registry.
 *
 *--------------------------------------------------------------------*/

type MidiRouter struct {
	mu sync.Mutex

	slots     [numSlots]outSlot
	rtScratch [8]byte

	registry *HandlerRegistry
	output   HostHandler
	input    HostHandler

	realtimeEnabled    bool
	passThroughEnabled bool
	clockOutEnabled    bool
	autoSelectInput    bool
	inputDevice        InputDevice

	mpu *MPU401State // wired by Attach, for input demux fan-in

	in [3]outSlot // per-device input reassembly: MPU401, SB UART, GUS UART

	nowFunc func() time.Time
	sleep   func(time.Duration)
	logger  *log.Logger
}

// inputSlotIndex maps an InputDevice to its reassembly slot.
func inputSlotIndex(dev InputDevice) int {
	switch dev {
	case InputSBUART:
		return 1
	case InputGUSUART:
		return 2
	default:
		return 0
	}
}

func NewMidiRouter(registry *HandlerRegistry) *MidiRouter {
	r := &MidiRouter{
		registry: registry,
		nowFunc:  time.Now,
		sleep:    time.Sleep,
		logger:   deviceLogger("router"),
	}
	for i := range r.slots {
		r.slots[i].sysex.buf = make([]byte, sysexSize)
	}
	for i := range r.in {
		r.in[i].sysex.buf = make([]byte, sysexSize)
	}
	return r
}

// Attach binds the sequencer this router's input side feeds. Called
// once at session setup.
func (r *MidiRouter) Attach(mpu *MPU401State) {
	r.mu.Lock()
	r.mpu = mpu
	r.mu.Unlock()
}

// SetOutput wires the backend every output slot assembles toward. nil
// disables output entirely (assembled messages are silently dropped).
func (r *MidiRouter) SetOutput(h HostHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.output = h
}

// SetAutoSelectInput implements the "autoinput" midioption (§6): when
// true, the current input device is cleared and the first input device
// to speak afterwards becomes the locked-in input device until one is
// set explicitly.
func (r *MidiRouter) SetAutoSelectInput(auto bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.autoSelectInput = auto
	if auto {
		r.inputDevice = NoInputDevice
	}
}

// SetInputDevice explicitly locks the input demultiplexer onto dev,
// overriding auto-selection (the "inputmpu401"/"inputsbuart"/"inputgus"
// midioptions, §6).
func (r *MidiRouter) SetInputDevice(dev InputDevice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.autoSelectInput = false
	r.inputDevice = dev
}

// SetRealtimeEnabled and SetClockOutEnabled gate RawOutRTByte per the
// "norealtime"/"clockout" midioptions (§6).
func (r *MidiRouter) SetRealtimeEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.realtimeEnabled = enabled
}

func (r *MidiRouter) SetClockOutEnabled(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clockOutEnabled = enabled
}

func (r *MidiRouter) now() time.Time { return r.nowFunc() }

// statusLength returns the total message length (status + data bytes)
// implied by a status byte, per the §4.2 status-byte length table.
// Zero means "not a status byte" or "variable/handled elsewhere".
func statusLength(status byte) int {
	switch {
	case status < 0x80:
		return 0
	case status < 0xC0:
		return 3
	case status < 0xE0:
		return 2
	case status < 0xF0:
		return 3
	default:
		table := [16]int{0, 2, 3, 2, 0, 0, 1, 0, 1, 0, 1, 1, 1, 0, 1, 0}
		return table[status-0xF0]
	}
}

// primeSysexDelay marks all four output slots as subject to pacing on
// their first sysex, implementing the "delaysysex" midiconfig token
// (§6).
func (r *MidiRouter) primeSysexDelay() {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for i := range r.slots {
		r.slots[i].sysex.lastSendTick = now
		r.slots[i].sysex.hasDelay = true
	}
}

/*------------------------------------------------------------------
 *
 * Name:	RawOutByte / RawOutRTByte
 *
 * Purpose:	§4.2's per-byte output assembler: reassembles complete
 *		MIDI messages and sysex packets from the guest's byte
 *		stream, applies running status, frames sysex, and paces
 *		sysex transmission.
 *
 *--------------------------------------------------------------------*/

func (r *MidiRouter) RawOutByte(slot int, data byte) {
	r.mu.Lock()

	s := &r.slots[slot]

	// Rule 1: pending sysex pacing delay blocks the emulation thread.
	// The lock is released across the sleep (§5): pacing must never
	// hold the device lock while blocked.
	if s.sysex.hasDelay {
		elapsed := r.now().Sub(s.sysex.lastSendTick)
		remaining := time.Duration(s.sysex.delayMS)*time.Millisecond - elapsed
		if remaining > 0 {
			r.mu.Unlock()
			r.sleep(remaining)
			r.mu.Lock()
			s = &r.slots[slot]
		}
	}

	// Rule 2: realtime bytes never touch running status.
	if data >= 0xF8 {
		r.sendRealtimeLocked(data)
		r.mu.Unlock()
		return
	}

	// Rule 3: sysex in progress.
	if s.runningStatus == 0xF0 {
		if data&0x80 == 0 {
			if s.sysex.used < sysexSize-1 {
				s.sysex.buf[s.sysex.used] = data
				s.sysex.used++
			}
			r.mu.Unlock()
			return
		}

		// Terminator (typically 0xF7).
		if s.sysex.used < sysexSize {
			s.sysex.buf[s.sysex.used] = 0xF7
			s.sysex.used++
		}

		if isInvalidMT32Sysex(s.sysex.buf, s.sysex.used) {
			r.logger.Warn("dropping invalid short MT-32 sysex", "slot", slot, "used", s.sysex.used)
			s.runningStatus = 0
			s.sysex.used = 0
			r.mu.Unlock()
			return
		}

		delay := computeSysexDelay(s.sysex.buf, s.sysex.used, s.sysex.hasDelay)
		sendBuf := append([]byte(nil), s.sysex.buf[:s.sysex.used]...)
		s.sysex.lastSendTick = r.now()
		s.sysex.hasDelay = true
		s.sysex.delayMS = delay
		s.runningStatus = 0
		s.sysex.used = 0
		handler := r.outputFor(slot)
		r.mu.Unlock()

		if handler != nil {
			handler.PlaySysex(sendBuf)
		}
		return
	}

	// Rule 4: new status byte.
	if data&0x80 != 0 {
		s.runningStatus = data
		s.msgLen = statusLength(data)
		s.msgPos = 1
		s.msg[0] = data
		if data == 0xF0 {
			s.sysex.buf[0] = 0xF0
			s.sysex.used = 1
		}
		if s.msgLen == 1 {
			// A one-byte message (0xF6) is complete on its status byte.
			handler := r.outputFor(slot)
			r.mu.Unlock()
			if handler != nil {
				handler.PlayMessage([4]byte{data, 0, 0, 1})
			}
			return
		}
		r.mu.Unlock()
		return
	}

	// Rule 5: data byte, accumulate under the last running status.
	if s.msgPos == 0 || s.msgPos >= len(s.msg) {
		// No running status yet to attach this data byte to; drop it.
		r.mu.Unlock()
		return
	}
	s.msg[s.msgPos] = data
	s.msgPos++
	if s.msgPos == s.msgLen {
		out := [4]byte{s.msg[0], s.msg[1], s.msg[2], byte(s.msgLen)}
		handler := r.outputFor(slot)
		s.msgPos = 1 // retain running status
		r.mu.Unlock()
		if handler != nil {
			handler.PlayMessage(out)
		}
		return
	}
	r.mu.Unlock()
}

// RawOutRTByte is the dedicated realtime-byte entry point, additionally
// gated by realtime_enabled / clock_out_enabled (§4.2 rule 2 parenthetical).
func (r *MidiRouter) RawOutRTByte(data byte) {
	r.mu.Lock()
	if !r.realtimeEnabled {
		r.mu.Unlock()
		return
	}
	if data == 0xF8 && !r.clockOutEnabled {
		r.mu.Unlock()
		return
	}
	r.sendRealtimeLocked(data)
	r.mu.Unlock()
}

func (r *MidiRouter) sendRealtimeLocked(data byte) {
	r.rtScratch[0] = data
	handler := r.output
	r.mu.Unlock()
	if handler != nil {
		handler.PlayMessage([4]byte{data, 0, 0, 1})
	}
	r.mu.Lock()
}

// outputFor returns the handler that should receive slot's traffic.
// THRU always uses the active output handler too (§4.2: "otherwise
// uses the same assembler"); only the capture-sink exclusion (out of
// scope here) would differ.
func (r *MidiRouter) outputFor(slot int) HostHandler {
	return r.output
}

func isInvalidMT32Sysex(buf []byte, used int) bool {
	if used < 4 || used > 9 {
		return false
	}
	return buf[1] == 0x41 && buf[3] == 0x16
}

// computeSysexDelay implements the §4.2 per-message sysex pacing table.
// hadPrior mirrors "AND a prior last_send_tick != 0": the very first
// sysex a slot ever sends is never paced.
func computeSysexDelay(buf []byte, used int, hadPrior bool) int {
	if !hadPrior {
		return 0
	}
	if used > 5 && buf[5] == 0x7F {
		return 290
	}
	if used > 8 && buf[5] == 0x10 && buf[6] == 0x00 && buf[7] == 0x04 {
		return 145
	}
	if used > 8 && buf[5] == 0x10 && buf[6] == 0x00 && buf[7] == 0x01 {
		return 30
	}
	// ceil(used * 1.25 * 1000 / 3125) + 2
	ms := (used*1250 + 3124) / 3125
	return ms + 2
}
