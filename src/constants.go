package mpu401

import "time"

// Device identity, straight out of the original MPU401_VERSION /
// MPU401_REVISION #defines.
const (
	DeviceVersion  = 0x15
	DeviceRevision = 0x01
)

const (
	outputQueueSize = 64   // MPU401_QUEUE
	recordQueueSize = 1024 // MPU401_INPUT_QUEUE
	resetBusy       = 14 * time.Millisecond
	sysexSize       = 8192 // per-slot sysex accumulator cap
	numTracks       = 8
	numMidiChannels = 16
	numRefTables    = 6 // 4 configurable + sink (index 4) + spare
	sinkRefTable    = 4
)

// Messages sent to the MPU-401 from the host (guest write side).
const (
	msgEOX      byte = 0xF7
	msgOverflow byte = 0xF8
	msgMark     byte = 0xFC
)

// Messages sent to the host from the MPU-401 (guest read side).
const (
	msgMPUOverflow   byte = 0xF8
	msgMPUCommandReq byte = 0xF9
	msgMPUEnd        byte = 0xFC
	msgMPUClock      byte = 0xFD
	msgMPUAck        byte = 0xFE
)

// mpuMode selects which personality is active.
type mpuMode int

const (
	modeUART mpuMode = iota
	modeIntelligent
)

// dataType classifies what a track's current buffer holds.
type dataType int

const (
	typeOverflow dataType = iota
	typeMark
	typeMIDISystem
	typeMIDINormal
	typeCommand
)

// recState is the tri-state recording transport.
type recState int

const (
	recOff recState = iota
	recStandby
	recOn
)

// clockTimebases mirrors MPUClockBase[8] from the original - the eight
// selectable ticks-per-quarter-note values, indexed by (cmd - 0xC2),
// with the last entry duplicated for 0xC8.
var clockTimebases = [8]int{48, 72, 96, 120, 144, 168, 192, 192}

// cthData is the lookup table 0xE7 uses to rebuild the four
// clock-to-host rate slots: cth_rate[i] = (val>>2) + cthData[(val&3)*4+i].
var cthData = [16]byte{
	0, 0, 0, 0,
	1, 0, 0, 0,
	1, 0, 1, 0,
	1, 1, 1, 0,
}
