// Command mpu401-bridge wires a real MIDI input port through the
// emulated MPU-401 intelligent sequencer engine to a real MIDI output
// port, driven entirely by wall-clock time via RealTimeScheduler.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	mpu401 "github.com/doismellburning/mpu401/src"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to a YAML session config file")
	midiDevice := pflag.String("mididevice", "default", "output MIDI port name, or \"default\"")
	inConfig := pflag.String("inconfig", "default", "input MIDI port name, \"default\", or \"none\"")
	intelligent := pflag.Bool("intelligent", true, "power up in intelligent mode (false = UART)")
	gpioChip := pflag.String("gpio-chip", "", "GPIO chip for the IRQ line, e.g. gpiochip0")
	gpioLine := pflag.Int("gpio-line", -1, "GPIO line offset for the IRQ line")
	pflag.Parse()

	cfg := &mpu401.SessionConfig{
		MidiDevice: *midiDevice,
		InConfig:   *inConfig,
	}
	if *configPath != "" {
		loaded, err := mpu401.LoadSessionConfig(*configPath)
		if err != nil {
			fatalf("loading %s: %v", *configPath, err)
		}
		cfg = loaded
	}

	registry := mpu401.NewHandlerRegistry()
	router := mpu401.NewMidiRouter(registry)
	sched := mpu401.NewRealTimeScheduler()
	state := mpu401.NewMPU401State(router, sched)
	router.Attach(state)
	router.SetRealtimeEnabled(true)
	state.SetMode(*intelligent)

	onInput := func(status, d1, d2 byte) { router.InputMessageFromDevice(mpu401.InputMPU401, status, d1, d2) }
	onSysex := func(buf []byte) { router.InputSysexFromDevice(mpu401.InputMPU401, buf) }
	handler := mpu401.NewRTMidiHandler(onInput, onSysex)
	registry.Register(handler)

	out, err := registry.SelectOutput(cfg.MidiDevice, cfg.MidiConfig)
	if err != nil {
		fatalf("selecting output: %v", err)
	}
	router.SetOutput(out)

	if cfg.InConfig != "" && cfg.InConfig != "none" {
		if _, err := registry.SelectInput(cfg.InConfig, ""); err != nil {
			fatalf("selecting input: %v", err)
		}
		router.SetInputDevice(mpu401.InputMPU401)
	}

	if *gpioChip != "" && *gpioLine >= 0 {
		line, err := mpu401.NewGPIOIRQLine(*gpioChip, *gpioLine)
		if err != nil {
			fatalf("opening IRQ line: %v", err)
		}
		defer line.Close()
		state.SetIRQLine(line)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	handler.Close()
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
