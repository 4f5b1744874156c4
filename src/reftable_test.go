package mpu401

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestKeyBitset_SetGetClear(t *testing.T) {
	var k keyBitset

	assert.False(t, k.Get(0))
	assert.False(t, k.Get(127))

	k.Set(0)
	k.Set(63)
	k.Set(127)
	assert.True(t, k.Get(0))
	assert.True(t, k.Get(63))
	assert.True(t, k.Get(127))
	assert.False(t, k.Get(64))

	k.Clear(63)
	assert.False(t, k.Get(63))
	assert.True(t, k.Get(0))
	assert.True(t, k.Get(127))
}

func TestKeyBitset_ClearAllResetsEveryBit(t *testing.T) {
	var k keyBitset
	for key := byte(0); key < 128; key++ {
		k.Set(key)
	}
	k.ClearAll()
	for key := byte(0); key < 128; key++ {
		assert.False(t, k.Get(key))
	}
}

func Test_keyBitset_SetThenGetAlwaysTrue(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var k keyBitset
		key := rapid.IntRange(0, 127).Draw(t, "key")
		k.Set(byte(key))
		assert.True(t, k.Get(byte(key)))
	})
}

func Test_keyBitset_ClearDoesNotAffectOtherBits(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		var k keyBitset
		a := rapid.IntRange(0, 127).Draw(t, "a")
		b := rapid.IntRange(0, 127).Draw(t, "b")
		if a == b {
			return
		}
		k.Set(byte(a))
		k.Set(byte(b))
		k.Clear(byte(a))
		assert.False(t, k.Get(byte(a)))
		assert.True(t, k.Get(byte(b)))
	})
}
