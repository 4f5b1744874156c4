package mpu401

import (
	"fmt"
	"sync"
)

/*------------------------------------------------------------------
 *
 * Name:	HostHandler
 *
 * Purpose:	Abstract endpoint receiving assembled MIDI messages and
 *		sysex blobs from the output assembler (§4.1).
 *
 * Description:	Implementations are the real backends - ALSA sequencer
 *		client, Win32 MME, CoreMIDI, OSS, or (in this repo)
 *		gitlab.com/gomidi/midi/v2 driver glue in rtmidihandler.go.
 *		None of that lives in this package; only the contract
 *		does.  Implementations MUST be safe to call PlayMessage /
 *		PlaySysex from the emulation thread; Listen (input)
 *		callbacks MAY arrive on a separate thread and must route
 *		through MidiRouter's input side rather than touching
 *		MPU401State directly.
 *
 *--------------------------------------------------------------------*/

type HostHandler interface {
	// Name is a stable identifier used for case-insensitive matching
	// against the "mididevice" / "inconfig" configuration strings.
	Name() string

	// Open prepares the handler as an output endpoint. config is a
	// backend-specific opaque string (the "midiconfig" key).
	Open(config string) error

	// OpenInput prepares the handler as an input endpoint. config is
	// the "inconfig" key's value.
	OpenInput(config string) error

	// Close releases both sides cleanly. Safe to call even if Open/
	// OpenInput were never called.
	Close()

	// PlayMessage sends a short channel/system message. buf[3] holds
	// the message length in bytes, 1..3; only buf[:buf[3]] is valid.
	PlayMessage(buf [4]byte)

	// PlaySysex sends a complete sysex buffer, buf[0]==0xF0,
	// buf[len-1]==0xF7.
	PlaySysex(buf []byte)

	// Available reports whether the handler is still usable as an
	// output (or, post OpenInput, input) endpoint.
	Available() bool
}

/*------------------------------------------------------------------
 *
 * Name:	HandlerRegistry
 *
 * Purpose:	Process-wide ordered collection of HostHandler
 *		implementations, replacing the original's linked list of
 *		backend probes (see spec.md §9 "Linked list of handlers").
 *
 * Description:	Order is discovery precedence: "mididevice=default"
 *		picks the first entry that opens successfully.  Selection
 *		is a two-phase "open and commit" helper (§9 "goto cleanup
 *		flows"): phase 1 tries a case-insensitive name match,
 *		phase 2 falls back to probing registration order.
 *
 *--------------------------------------------------------------------*/

type HandlerRegistry struct {
	mu       sync.Mutex
	handlers []HostHandler
}

func NewHandlerRegistry() *HandlerRegistry {
	return &HandlerRegistry{}
}

// Register appends h to the discovery list. Call order is discovery
// precedence order.
func (reg *HandlerRegistry) Register(h HostHandler) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.handlers = append(reg.handlers, h)
}

func (reg *HandlerRegistry) List() []string {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	names := make([]string, len(reg.handlers))
	for i, h := range reg.handlers {
		names[i] = h.Name()
	}
	return names
}

// SelectOutput implements the §6 "mididevice" output-side selection
// rule: "none"/"" disables output, "default" probes in registration
// order, anything else is matched case-insensitively by name.
func (reg *HandlerRegistry) SelectOutput(name, config string) (HostHandler, error) {
	return reg.selectAndOpen(name, func(h HostHandler) error { return h.Open(config) })
}

// SelectInput mirrors SelectOutput for the "inconfig" side.
func (reg *HandlerRegistry) SelectInput(name, config string) (HostHandler, error) {
	return reg.selectAndOpen(name, func(h HostHandler) error { return h.OpenInput(config) })
}

func (reg *HandlerRegistry) selectAndOpen(name string, open func(HostHandler) error) (HostHandler, error) {
	reg.mu.Lock()
	handlers := append([]HostHandler(nil), reg.handlers...)
	reg.mu.Unlock()

	if isNone(name) {
		return nil, nil
	}

	// Phase 1: explicit name match.
	if !isDefault(name) {
		for _, h := range handlers {
			if equalFoldASCII(h.Name(), name) {
				if err := open(h); err != nil {
					return nil, fmt.Errorf("mpu401: handler %q refused to open: %w", h.Name(), err)
				}
				return h, nil
			}
		}
		return nil, fmt.Errorf("mpu401: no registered handler named %q", name)
	}

	// Phase 2: default probe, first one that opens wins.
	var lastErr error
	for _, h := range handlers {
		if err := open(h); err == nil {
			return h, nil
		} else {
			lastErr = err
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("mpu401: no handlers registered")
	}
	return nil, lastErr
}

func isNone(s string) bool {
	switch lowerASCII(s) {
	case "", "none", "off", "false":
		return true
	}
	return false
}

func isDefault(s string) bool {
	return lowerASCII(s) == "default"
}

func lowerASCII(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

func equalFoldASCII(a, b string) bool {
	return lowerASCII(a) == lowerASCII(b)
}
