package mpu401

/*------------------------------------------------------------------
 *
 * Name:	Config
 *
 * Purpose:	§6 configuration: a handful of keyword lines, one
 *		setting per line, same bare "keyword value..." token
 *		style config.go uses throughout the original for its much
 *		larger configuration file - just without the cgo struct
 *		plumbing, since none of that domain applies here.
 *
 *--------------------------------------------------------------------*/

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

type Config struct {
	Intelligent bool // "mpu401 intelligent" vs "mpu401 uart"

	MidiDevice string // "mididevice"
	MidiConfig string // "midiconfig", sans the trailing delaysysex token
	DelaySysex bool

	InConfig string // "inconfig"

	AutoInput    bool
	InputMPU401  bool
	InputSBUART  bool
	InputGUS     bool
	NoRealtime   bool
	PassThrough  bool
	ClockOut     bool
	Throttle     bool
}

// DefaultConfig mirrors config_init's defaults section: an intelligent
// device, a "default" output probe, no input selected, realtime and
// pass-through both on.
func DefaultConfig() *Config {
	return &Config{
		Intelligent: true,
		MidiDevice:  "default",
		InConfig:    "none",
		AutoInput:   true,
		PassThrough: true,
	}
}

// ParseConfig reads one keyword per line ("# ..." comments and blank
// lines ignored), applying each on top of DefaultConfig's values.
func ParseConfig(r io.Reader) (*Config, error) {
	cfg := DefaultConfig()
	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		keyword := strings.ToLower(fields[0])
		args := fields[1:]

		switch keyword {
		case "mpu401":
			if len(args) < 1 {
				return nil, fmt.Errorf("mpu401 config line %d: missing mode", lineNo)
			}
			switch strings.ToLower(args[0]) {
			case "intelligent":
				cfg.Intelligent = true
			case "uart":
				cfg.Intelligent = false
			default:
				return nil, fmt.Errorf("mpu401 config line %d: unrecognized mode %q", lineNo, args[0])
			}

		case "mididevice":
			if len(args) < 1 {
				return nil, fmt.Errorf("mpu401 config line %d: missing device name", lineNo)
			}
			cfg.MidiDevice = args[0]

		case "midiconfig":
			rest := args
			cfg.DelaySysex = false
			if len(rest) > 0 && strings.EqualFold(rest[len(rest)-1], "delaysysex") {
				cfg.DelaySysex = true
				rest = rest[:len(rest)-1]
			}
			cfg.MidiConfig = strings.Join(rest, " ")

		case "inconfig":
			cfg.InConfig = strings.Join(args, " ")

		case "midioptions":
			for _, opt := range args {
				applyMidiOption(cfg, strings.ToLower(opt))
			}

		default:
			return nil, fmt.Errorf("mpu401 config line %d: unrecognized keyword %q", lineNo, fields[0])
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyMidiOption(cfg *Config, opt string) {
	switch opt {
	case "autoinput":
		cfg.AutoInput = true
	case "inputmpu401":
		cfg.AutoInput = false
		cfg.InputMPU401 = true
	case "inputsbuart":
		cfg.AutoInput = false
		cfg.InputSBUART = true
	case "inputgus":
		cfg.AutoInput = false
		cfg.InputGUS = true
	case "norealtime":
		cfg.NoRealtime = true
	case "passthrough":
		cfg.PassThrough = true
	case "clockout":
		cfg.ClockOut = true
	case "throttle":
		cfg.Throttle = true
	}
}
