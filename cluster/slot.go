// Cluster slot computation: CRC16/XMODEM over the hash-tagged portion
// of a key, reduced mod 16384, exactly as Redis Cluster assigns keys to
// slots. Supersedes the teacher's consistent-hash Ring (crc32 + virtual
// nodes) now that node membership is discovered from CLUSTER SLOTS
// rather than configured as a fixed node list.
package cluster

import "strings"

// SlotCount is the fixed number of hash slots a Redis Cluster divides
// the keyspace into.
const SlotCount = 16384

// crc16Table is the standard CRC16/XMODEM table (polynomial 0x1021),
// precomputed for the single-byte-at-a-time update in Slot.
var crc16Table = func() [256]uint16 {
	var t [256]uint16
	for i := 0; i < 256; i++ {
		crc := uint16(i) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ 0x1021
			} else {
				crc <<= 1
			}
		}
		t[i] = crc
	}
	return t
}()

// crc16 computes the CRC16/XMODEM checksum of b.
func crc16(b []byte) uint16 {
	var crc uint16
	for _, c := range b {
		crc = (crc << 8) ^ crc16Table[byte(crc>>8)^c]
	}
	return crc
}

// Slot computes the Redis Cluster hash slot for key: CRC16/XMODEM of
// HashTag(key), mod SlotCount.
func Slot(key string) int {
	return int(crc16([]byte(HashTag(key)))) % SlotCount
}

// HashTag extracts the portion of key that determines its slot: the
// substring between the first '{' and the next '}' after it, if that
// substring is non-empty; otherwise key itself. This lets callers force
// related keys (e.g. "{user1000}.following") onto the same slot.
func HashTag(key string) string {
	start := strings.IndexByte(key, '{')
	if start < 0 {
		return key
	}
	end := strings.IndexByte(key[start+1:], '}')
	if end < 0 {
		return key
	}
	if end == 0 {
		return key // "{}" is not a valid tag; hash the whole key
	}
	return key[start+1 : start+1+end]
}
