package numerics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestCRCAppendThenCheckPasses(t *testing.T) {
	for _, kind := range []CRCKind{CRC24A, CRC24B, CRC16, CRC8} {
		bits := BytesToBits([]byte{0xDE, 0xAD, 0xBE, 0xEF, 0x01, 0x02})
		withCRC := kind.AppendBits(bits)
		assert.True(t, kind.CheckBits(withCRC), "CRC kind %d should verify its own output", kind)
	}
}

func TestCRCDetectsSingleBitFlip(t *testing.T) {
	bits := BytesToBits([]byte{0x12, 0x34, 0x56, 0x78})
	withCRC := CRC24A.AppendBits(bits)
	withCRC[3] ^= 1
	assert.False(t, CRC24A.CheckBits(withCRC))
}

func TestCRCRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 64).Draw(rt, "n")
		data := rapid.SliceOfN(rapid.Byte(), n, n).Draw(rt, "data")
		bits := BytesToBits(data)
		kind := CRC24A
		withCRC := kind.AppendBits(bits)
		require.True(rt, kind.CheckBits(withCRC))
	})
}

func TestBitsBytesRoundTrip(t *testing.T) {
	data := []byte{0x00, 0xFF, 0xA5, 0x3C}
	bits := BytesToBits(data)
	back := BitsToBytes(bits)
	assert.Equal(t, data, back)
}
