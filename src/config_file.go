package mpu401

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

/*------------------------------------------------------------------
 *
 * Name:	SessionConfig / LoadSessionConfig
 *
 * Purpose:	The YAML front-end the cmd/ binaries read, one level up
 *		from Config: where Config is the device's own §6
 *		keyword-line settings, SessionConfig additionally carries
 *		the bits only the standalone bridge/monitor programs need -
 *		which backend to register, what IRQ line to toggle, where
 *		to mirror the log file.
 *
 *--------------------------------------------------------------------*/

type SessionConfig struct {
	MPU401      string `yaml:"mpu401"`
	MidiDevice  string `yaml:"mididevice"`
	MidiConfig  string `yaml:"midiconfig"`
	InConfig    string `yaml:"inconfig"`
	MidiOptions string `yaml:"midioptions"`

	// GPIOChip / GPIOLine name the IRQ line irq_gpio.go should toggle.
	// Both empty means "no GPIO, use the no-op IRQ line".
	GPIOChip string `yaml:"gpio_chip"`
	GPIOLine int    `yaml:"gpio_line"`

	// LogFile is a strftime(3) pattern (§6's log-file-naming
	// convention); empty means stderr only.
	LogFile string `yaml:"log_file"`
}

func LoadSessionConfig(path string) (*SessionConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &SessionConfig{MidiDevice: "default", InConfig: "none"}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DeviceConfig renders the keyword-line subset of SessionConfig into a
// Config, reusing ParseConfig so both entry points agree on syntax.
func (s *SessionConfig) DeviceConfig() (*Config, error) {
	var lines string
	if s.MPU401 != "" {
		lines += "mpu401 " + s.MPU401 + "\n"
	}
	if s.MidiDevice != "" {
		lines += "mididevice " + s.MidiDevice + "\n"
	}
	if s.MidiConfig != "" {
		lines += "midiconfig " + s.MidiConfig + "\n"
	}
	if s.InConfig != "" {
		lines += "inconfig " + s.InConfig + "\n"
	}
	if s.MidiOptions != "" {
		lines += "midioptions " + s.MidiOptions + "\n"
	}
	return ParseConfig(strings.NewReader(lines))
}
