// Command mpu401-monitor attaches to a real MIDI output port, drives an
// otherwise-unconnected MPU-401 core from keyboard test input, and
// prints its live register snapshot to a raw terminal - a bench tool
// for watching the sequencer's internal state react to commands.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/term"
	"github.com/spf13/pflag"

	mpu401 "github.com/doismellburning/mpu401/src"
)

func main() {
	midiDevice := pflag.String("mididevice", "default", "output MIDI port name, or \"default\"")
	pflag.Parse()

	registry := mpu401.NewHandlerRegistry()
	router := mpu401.NewMidiRouter(registry)
	sched := mpu401.NewRealTimeScheduler()
	state := mpu401.NewMPU401State(router, sched)
	router.Attach(state)
	state.SetMode(true)

	handler := mpu401.NewRTMidiHandler(nil, nil)
	registry.Register(handler)
	out, err := registry.SelectOutput(*midiDevice, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "selecting output: %v\n", err)
		os.Exit(1)
	}
	router.SetOutput(out)
	defer handler.Close()

	tty, err := term.Open("/dev/tty", term.RawMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening terminal: %v\n", err)
		os.Exit(1)
	}
	defer tty.Restore()
	defer tty.Close()

	fmt.Fprint(tty, "\x1b[2J")
	fmt.Fprint(tty, "r=reset  p=play  c=record  q=quit\r\n")

	keys := make(chan byte)
	go readKeys(tty, keys)

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case k := <-keys:
			switch k {
			case 'q':
				return
			case 'r':
				state.WriteCommand(0xFF)
			case 'p':
				state.WriteCommand(0x0B) // restore counters + start play
			case 'c':
				state.WriteCommand(0x23) // restore counters + start recording
			}
		case <-ticker.C:
			render(tty, state.Snapshot())
		}
	}
}

func readKeys(tty *term.Term, out chan<- byte) {
	buf := make([]byte, 1)
	for {
		n, err := tty.Read(buf)
		if err != nil {
			close(out)
			return
		}
		if n > 0 {
			out <- buf[0]
		}
	}
}

func render(tty *term.Term, s mpu401.Snapshot) {
	fmt.Fprintf(tty, "\x1b[H")
	fmt.Fprintf(tty, "intelligent=%-5v playing=%-5v recording=%-5v tempo=%-4d timebase=%-3d\r\n",
		s.Intelligent, s.Playing, s.Recording, s.Tempo, s.Timebase)
	fmt.Fprintf(tty, "reqMask=%#06x track=%-2d outQ=%-3d recQ=%-4d irq=%-5v   \r\n",
		s.ReqMask, s.TrackNum, s.OutputQueue, s.RecordQueue, s.IRQPending)
}
