package mpu401

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestByteRing_EmptyInitially(t *testing.T) {
	r := newByteRing(4)

	assert.True(t, r.Empty())
	assert.False(t, r.Full())
	assert.Equal(t, 0, r.Len())
	assert.Equal(t, 4, r.Cap())
}

func TestByteRing_PushPopOrder(t *testing.T) {
	r := newByteRing(4)

	assert.True(t, r.Push(1))
	assert.True(t, r.Push(2))
	assert.True(t, r.Push(3))

	b, ok := r.Pop()
	assert.True(t, ok)
	assert.Equal(t, byte(1), b)

	b, ok = r.Pop()
	assert.True(t, ok)
	assert.Equal(t, byte(2), b)
}

func TestByteRing_FullDropsPush(t *testing.T) {
	r := newByteRing(2)

	assert.True(t, r.Push(1))
	assert.True(t, r.Push(2))
	assert.True(t, r.Full())
	assert.False(t, r.Push(3), "push onto a full ring must fail, not overwrite")

	b, _ := r.Pop()
	assert.Equal(t, byte(1), b, "the dropped push must not have displaced the oldest byte")
}

func TestByteRing_PopEmptyReturnsNotOK(t *testing.T) {
	r := newByteRing(4)

	_, ok := r.Pop()
	assert.False(t, ok)
}

func TestByteRing_ClearResetsState(t *testing.T) {
	r := newByteRing(4)
	r.Push(1)
	r.Push(2)

	r.Clear()

	assert.True(t, r.Empty())
	assert.Equal(t, 0, r.Len())
}

// Test_byteRing_NeverExceedsCapacity checks §8's ring-buffer bound
// invariant under arbitrary push/pop sequences of arbitrary sizes.
func Test_byteRing_NeverExceedsCapacity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		size := rapid.IntRange(1, 32).Draw(t, "size")
		r := newByteRing(size)

		ops := rapid.SliceOfN(rapid.IntRange(0, 1), 0, 200).Draw(t, "ops")
		pushed := 0
		popped := 0

		for i, op := range ops {
			if op == 0 {
				if r.Push(byte(i)) {
					pushed++
				}
			} else {
				if _, ok := r.Pop(); ok {
					popped++
				}
			}
			assert.LessOrEqual(t, r.Len(), size, "ring must never report more than its capacity")
			assert.Equal(t, pushed-popped, r.Len(), "length must always equal pushed minus popped")
		}
	})
}

func Test_byteRing_FIFOOrderHolds(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		size := rapid.IntRange(1, 16).Draw(t, "size")
		r := newByteRing(size)

		n := rapid.IntRange(0, size).Draw(t, "n")
		var want []byte
		for i := 0; i < n; i++ {
			b := byte(rapid.IntRange(0, 255).Draw(t, "b"))
			if r.Push(b) {
				want = append(want, b)
			}
		}

		var got []byte
		for {
			b, ok := r.Pop()
			if !ok {
				break
			}
			got = append(got, b)
		}

		assert.Equal(t, want, got)
	})
}
