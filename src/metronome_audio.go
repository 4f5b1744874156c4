package mpu401

/*------------------------------------------------------------------
 *
 * Name:	Metronome
 *
 * Purpose:	§4.5's tick event calls Strike() on every metronome beat;
 *		this turns that into an actual audible click through
 *		PortAudio, the way gen_tone.go's direct-digital-synthesis
 *		sine table drives a radio tone - except here there is no
 *		modem framing, just two short sine-wave beeps (one pitch
 *		for a plain beat, a higher one for an accented downbeat).
 *
 * Description:	Strike() only ever touches mu-guarded state; the
 *		PortAudio callback (a realtime audio thread, never the
 *		emulation thread) reads it under the same lock and must
 *		never block, matching the audio.go convention of keeping
 *		the callback side wait-free.
 *
 *--------------------------------------------------------------------*/

import (
	"math"
	"sync"

	"github.com/gordonklaus/portaudio"
)

const (
	metronomeSampleRate  = 44100
	metronomeClickFrames = metronomeSampleRate / 20 // 50ms click
	metronomePlainHz     = 1000.0
	metronomeAccentHz    = 1800.0
)

type Metronome struct {
	mu sync.Mutex

	stream *portaudio.Stream
	freq   float64
	phase  float64
	remain int
}

// NewMetronome opens a mono PortAudio output stream. Call Close when the
// device is torn down.
func NewMetronome() (*Metronome, error) {
	m := &Metronome{}
	stream, err := portaudio.OpenDefaultStream(0, 1, metronomeSampleRate, 0, m.callback)
	if err != nil {
		return nil, err
	}
	if err := stream.Start(); err != nil {
		return nil, err
	}
	m.stream = stream
	return m, nil
}

func (m *Metronome) Close() {
	if m.stream == nil {
		return
	}
	m.stream.Stop()
	m.stream.Close()
}

// Strike arms a short click, starting the waveform fresh each time so
// rapid beats never click mid-cycle.
func (m *Metronome) Strike(accented bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if accented {
		m.freq = metronomeAccentHz
	} else {
		m.freq = metronomePlainHz
	}
	m.phase = 0
	m.remain = metronomeClickFrames
}

func (m *Metronome) callback(out []float32) {
	m.mu.Lock()
	defer m.mu.Unlock()

	step := 2 * math.Pi * m.freq / metronomeSampleRate
	for i := range out {
		if m.remain <= 0 {
			out[i] = 0
			continue
		}
		out[i] = float32(0.3 * math.Sin(m.phase))
		m.phase += step
		m.remain--
	}
}
