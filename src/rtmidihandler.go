package mpu401

import (
	"fmt"
	"sync"

	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

/*------------------------------------------------------------------
 *
 * Name:	RTMidiHandler
 *
 * Purpose:	Concrete HostHandler backed by a real OS MIDI port via
 *		gomidi/v2's rtmididrv backend (ALSA/CoreMIDI/WinMM
 *		depending on platform) - the actual synthesizer or
 *		hardware port on the other end of the emulated MPU-401.
 *
 *--------------------------------------------------------------------*/

type RTMidiHandler struct {
	mu sync.Mutex

	out     drivers.Out
	in      drivers.In
	stopFn  func()
	onInput func(status, d1, d2 byte)
	onSysex func(buf []byte)
}

// NewRTMidiHandler takes the demux callbacks used to feed a MidiRouter's
// input side; both may be nil if this handler is output-only.
func NewRTMidiHandler(onInput func(status, d1, d2 byte), onSysex func(buf []byte)) *RTMidiHandler {
	return &RTMidiHandler{onInput: onInput, onSysex: onSysex}
}

func (h *RTMidiHandler) Name() string { return "rtmidi" }

func (h *RTMidiHandler) Open(config string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	outs, err := drivers.Outs()
	if err != nil {
		return fmt.Errorf("rtmidi: list outputs: %w", err)
	}
	port, err := selectPort(outs, config)
	if err != nil {
		return err
	}
	if err := port.Open(); err != nil {
		return fmt.Errorf("rtmidi: open output %q: %w", port.String(), err)
	}
	h.out = port
	return nil
}

func (h *RTMidiHandler) OpenInput(config string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	ins, err := drivers.Ins()
	if err != nil {
		return fmt.Errorf("rtmidi: list inputs: %w", err)
	}
	port, err := selectPort(ins, config)
	if err != nil {
		return err
	}
	if err := port.Open(); err != nil {
		return fmt.Errorf("rtmidi: open input %q: %w", port.String(), err)
	}

	stopFn, err := port.Listen(h.handleIncoming, drivers.ListenConfig{})
	if err != nil {
		_ = port.Close()
		return fmt.Errorf("rtmidi: listen on %q: %w", port.String(), err)
	}

	h.in = port
	h.stopFn = stopFn
	return nil
}

func (h *RTMidiHandler) handleIncoming(msg []byte, _ int32) {
	if len(msg) == 0 {
		return
	}
	h.mu.Lock()
	onInput, onSysex := h.onInput, h.onSysex
	h.mu.Unlock()

	if msg[0] == 0xF0 {
		if onSysex != nil {
			onSysex(msg)
		}
		return
	}
	if onInput == nil {
		return
	}
	var d1, d2 byte
	if len(msg) > 1 {
		d1 = msg[1]
	}
	if len(msg) > 2 {
		d2 = msg[2]
	}
	onInput(msg[0], d1, d2)
}

func (h *RTMidiHandler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopFn != nil {
		h.stopFn()
		h.stopFn = nil
	}
	if h.in != nil {
		h.in.Close()
		h.in = nil
	}
	if h.out != nil {
		h.out.Close()
		h.out = nil
	}
}

func (h *RTMidiHandler) PlayMessage(buf [4]byte) {
	h.mu.Lock()
	out := h.out
	h.mu.Unlock()
	if out == nil {
		return
	}
	_ = out.Send(buf[:buf[3]])
}

func (h *RTMidiHandler) PlaySysex(buf []byte) {
	h.mu.Lock()
	out := h.out
	h.mu.Unlock()
	if out == nil {
		return
	}
	_ = out.Send(buf)
}

func (h *RTMidiHandler) Available() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.out != nil || h.in != nil
}

// selectPort matches config case-insensitively against each port's
// name, or takes the first port when config is empty/"default".
func selectPort[T fmt.Stringer](ports []T, config string) (T, error) {
	var zero T
	if config == "" || equalFoldASCII(config, "default") {
		if len(ports) == 0 {
			return zero, fmt.Errorf("rtmidi: no ports available")
		}
		return ports[0], nil
	}
	for _, p := range ports {
		if equalFoldASCII(p.String(), config) {
			return p, nil
		}
	}
	return zero, fmt.Errorf("rtmidi: no port matching %q", config)
}
