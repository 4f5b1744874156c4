package mpu401

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadData_UARTModePopsRecordQueueDirectly(t *testing.T) {
	m := newTestDevice(t)
	m.SetMode(false)
	m.hardReset()

	m.recordQueue.Push(0x42)

	assert.Equal(t, byte(0x42), m.ReadData())
}

func TestReadData_EmptyQueueReturnsAck(t *testing.T) {
	m := newTestDevice(t)

	assert.Equal(t, msgMPUAck, m.ReadData())
}

func TestReadData_PrimesTrackRequestOnF0Range(t *testing.T) {
	m := newTestDevice(t)
	m.mu.Lock()
	m.outputQueue.Push(0xF3) // track-data-request byte for track 3
	m.mu.Unlock()

	b := m.ReadData()

	require.Equal(t, byte(0xF3), b)
	m.mu.Lock()
	defer m.mu.Unlock()
	assert.True(t, m.flags.trackReq)
	assert.Equal(t, 3, m.trackNum)
	assert.Equal(t, 0, m.dataOnOff)
}

func TestReadData_CommandRequestPrimesBlockAck(t *testing.T) {
	m := newTestDevice(t)
	m.mu.Lock()
	m.outputQueue.Push(msgMPUCommandReq)
	m.mu.Unlock()

	b := m.ReadData()

	require.Equal(t, msgMPUCommandReq, b)
	m.mu.Lock()
	defer m.mu.Unlock()
	assert.True(t, m.flags.condReq)
	assert.True(t, m.flags.blockAck)
}

func TestReadData_DeassertsIRQOnceQueueDrains(t *testing.T) {
	m := newTestDevice(t)
	m.mu.Lock()
	m.outputQueue.Push(0x10)
	m.flags.irqPending = true
	m.mu.Unlock()

	m.ReadData()

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.False(t, m.flags.irqPending)
}

func TestQueueByte_BlockAckSwallowsQueuedAck(t *testing.T) {
	m := newTestDevice(t)

	m.mu.Lock()
	m.flags.blockAck = true
	m.queueByte(msgMPUAck) // swallowed: blockAck consumed, nothing enqueued
	blockAckAfter := m.flags.blockAck
	empty := m.outputQueue.Empty()
	m.mu.Unlock()

	assert.False(t, blockAckAfter)
	assert.True(t, empty)
}

func TestReadStatus_OutputReadyBitClearWhenQueueHasData(t *testing.T) {
	m := newTestDevice(t)
	m.mu.Lock()
	m.outputQueue.Push(0x10)
	m.mu.Unlock()

	status := m.ReadStatus()
	assert.Equal(t, byte(0), status&0x80, "bit 7 clear means data is available")
}

func TestReadStatus_OutputNotReadyBitSetWhenQueueEmpty(t *testing.T) {
	m := newTestDevice(t)

	status := m.ReadStatus()
	assert.Equal(t, byte(0x80), status&0x80)
}

func TestReadStatus_ResetBitSetDuringReset(t *testing.T) {
	m := newTestDevice(t)
	m.mu.Lock()
	m.flags.reset = true
	m.mu.Unlock()

	status := m.ReadStatus()
	assert.Equal(t, byte(0x40), status&0x40)
}

func TestReadStatusTx_ReportsSameAsReadStatus(t *testing.T) {
	m := newTestDevice(t)
	m.mu.Lock()
	m.outputQueue.Push(0x10)
	m.mu.Unlock()

	assert.Equal(t, m.ReadStatus(), m.ReadStatusTx())
}
