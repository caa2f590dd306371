package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRC16KnownValue(t *testing.T) {
	// Known from Redis Cluster documentation: CRC16("123456789") == 0x31C3.
	assert.Equal(t, uint16(0x31C3), crc16([]byte("123456789")))
}

func TestSlotKnownValue(t *testing.T) {
	assert.Equal(t, 12739, Slot("123456789")) // 0x31C3 mod 16384
}

func TestHashTagExtractsTaggedPortion(t *testing.T) {
	assert.Equal(t, "user1000", HashTag("{user1000}.following"))
	assert.Equal(t, "user1000", HashTag("{user1000}"))
}

func TestHashTagFallsBackToWholeKey(t *testing.T) {
	assert.Equal(t, "foo", HashTag("foo"))
	assert.Equal(t, "foo{bar", HashTag("foo{bar")) // unterminated tag
	assert.Equal(t, "foo{}bar", HashTag("foo{}bar")) // empty tag is not a valid tag
}

func TestSlotWithinBounds(t *testing.T) {
	for _, k := range []string{"a", "b", "{user1000}.following", "{user1000}.followers", ""} {
		slot := Slot(k)
		assert.GreaterOrEqual(t, slot, 0)
		assert.Less(t, slot, SlotCount)
	}
}

func TestHashTagGroupsRelatedKeysToSameSlot(t *testing.T) {
	assert.Equal(t, Slot("{user1000}.following"), Slot("{user1000}.followers"))
}
