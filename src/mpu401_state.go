package mpu401

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// track holds one of the eight playback tracks' assembled buffer, plus
// the conductor/track-9 (condbuf), which shares the same shape.
type track struct {
	counter int32 // signed: must tolerate decrement past zero (§9)
	value   [3]byte
	sysVal  byte
	length  byte
	kind    dataType
}

// seqFlags are the boolean state bits from §3's "state" block.
type seqFlags struct {
	wsd      bool // write single data in progress
	wsm      bool // write system message in progress
	wsdStart bool

	irqPending bool
	txReady    bool

	conductor bool
	condReq   bool
	condSet   bool
	trackReq  bool
	blockAck  bool

	playing     bool
	sendNow     bool
	clockToHost bool
	syncIn      bool

	sysexInFinished bool
	recCopy         bool
	eoiScheduled    bool
	reset           bool
}

// clockState is §3's "clock" block: timebase/tempo derivation and the
// subsidiary cth/measure/metronome counters.
type clockState struct {
	timebase  int
	tempo     int
	tempoRel  int
	tempoGrad int
	freq      float64
	freqMod   float64

	cthRate    [4]int
	cthMode    int
	cthCounter int
	cthOld     int

	measureCounter int
	measOld        int

	recCounter int

	midimetro int
	metromeas int
	// metronomeState: 0 off, 1 unaccented, 2 accented.
	metronomeState int

	active  bool
	ticksIn int
}

// filterFlags are the routing/recording toggles from §3 "filter".
type filterFlags struct {
	allNotesOffOnStop bool
	rtOut             bool
	allThru           bool
	commonThru        bool
	midiThru          bool
	timingInStop      bool
	modeMsgsIn        bool
	sysexThru         bool
	commonMsgsIn      bool
	rtIn              bool
	benderIn          bool
	dataInStop        bool
	recMeasureEnd     bool
	rtAffection       bool
	sysexIn           bool
}

/*------------------------------------------------------------------
 *
 * Name:	MPU401State
 *
 * Purpose:	The sequencer core (§3, §4.5-§4.8): command decoder,
 *		8-track playback array plus conductor, tempo/timebase
 *		clock, recording queue, EOI/IRQ orchestration, reference-
 *		table filtering, metronome and measure bookkeeping.
 *
 * Description:	All mutable fields are guarded by mu. The tick event
 *		(mpu401_clock.go), the register interface (mpu401_port.go)
 *		and the input demultiplexer (mpu401_input.go) all acquire
 *		it before touching anything below.
 *
 *--------------------------------------------------------------------*/

type MPU401State struct {
	mu sync.Mutex

	mode           mpuMode
	everConfigured bool

	outputQueue *byteRing
	recordQueue *byteRing

	playbuf [numTracks]track
	condbuf track

	flags seqFlags

	dataOnOff  int // -1, 0, 1, 2
	commandByte byte
	tmask       uint8
	cmask       uint8
	amask       uint8
	midiMask    uint16
	reqMask     uint16
	trackNum    int
	oldTrack    int
	lastRTCmd   byte
	cmdPending  byte
	hasPending  bool
	rec         recState

	midiThruPrimed        bool
	recGroupSelfResponded bool
	counterSnapshot       [numTracks]int32
	condSnapshot          int32
	sendNowConductor      bool
	sendNowTrack          int

	clock clockState

	filter filterFlags

	chToRef  [numMidiChannels]int
	chanref  [numRefTables]refTable
	inputref [numMidiChannels]inputRef

	router  *MidiRouter
	irqLine IRQLine

	metronome *Metronome

	scheduler Scheduler
	resetTimer func()

	logger *log.Logger

	// prchg_buf / prchg_mask - buffered program changes from the
	// input side, flushed into the record queue at the end of every
	// sequencer-state command (§4.5 "Sequencer-state commands").
	prchgBuf  [numMidiChannels]byte
	prchgMask uint16

	// wsd scratch (§4.5 "write single data").
	wsdBuf    [3]byte
	wsdLength int
	wsdPos    int

	// wsm scratch (§4.5 "write system message"). wsmLength is -1 for
	// the F0 case, which runs until any status byte arrives.
	wsmActive bool
	wsmLength int
	wsmPos    int

	// dataWritePos tracks progress through the trailing data byte(s)
	// of a track/conductor record (data_onoff phase 2).
	dataWritePos int
}

// Scheduler abstracts the emulated-time event source the tick and the
// 60us EOI-dispatch delay run on, so tests can drive it synchronously.
type Scheduler interface {
	// Schedule invokes fn after d of emulated time, cancelling any
	// previously scheduled invocation registered under the same key.
	Schedule(key string, d time.Duration, fn func())
	Cancel(key string)
}

func NewMPU401State(router *MidiRouter, sched Scheduler) *MPU401State {
	m := &MPU401State{
		outputQueue: newByteRing(outputQueueSize),
		recordQueue: newByteRing(recordQueueSize),
		router:      router,
		scheduler:   sched,
		logger:      deviceLogger("mpu401"),
	}
	m.hardReset()
	return m
}

// SetIRQLine wires an external IRQ sink (a real PIC, or irq_gpio.go's
// GPIO toggle). Optional; defaults to a no-op.
func (m *MPU401State) SetIRQLine(line IRQLine) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.irqLine = line
}

// SetMetronome wires the tone generator (metronome_audio.go).
func (m *MPU401State) SetMetronome(met *Metronome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.metronome = met
}

// SetMode fixes whether the device powers up (and survives resets) as
// an intelligent sequencer or a plain UART, per the "mpu401" config key
// (§6). It does not itself perform a reset.
func (m *MPU401State) SetMode(intelligent bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.everConfigured = true
	if intelligent {
		m.mode = modeIntelligent
	} else {
		m.mode = modeUART
	}
}

// Snapshot is a point-in-time, read-only copy of the fields an operator
// monitor cares about. It never aliases internal state.
type Snapshot struct {
	Intelligent bool
	Playing     bool
	Recording   bool
	Tempo       int
	Timebase    int
	ReqMask     uint16
	TrackNum    int
	OutputQueue int
	RecordQueue int
	IRQPending  bool
}

func (m *MPU401State) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Intelligent: m.mode == modeIntelligent,
		Playing:     m.flags.playing,
		Recording:   m.rec == recOn,
		Tempo:       m.clock.tempo,
		Timebase:    m.clock.timebase,
		ReqMask:     m.reqMask,
		TrackNum:    m.trackNum,
		OutputQueue: m.outputQueue.Len(),
		RecordQueue: m.recordQueue.Len(),
		IRQPending:  m.flags.irqPending,
	}
}
