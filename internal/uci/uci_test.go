package uci

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestQPrimeCapsAtFourMsc(t *testing.T) {
	q := QPrime(100, 4, 12, 10.0, 10, 5)
	require.Equal(t, 20, q) // 4*Msc = 20, raw would be huge
}

func TestQPrimeMonotonicInO(t *testing.T) {
	q1 := QPrime(1, 4, 12, 1.0, 1000, 100)
	q2 := QPrime(5, 4, 12, 1.0, 1000, 100)
	require.LessOrEqual(t, q1, q2)
}

func TestInterleaverIdempotentNoReservedFields(t *testing.T) {
	m := NewMatrix(4, 6, nil)
	data := make([]byte, 4*6)
	for i := range data {
		data[i] = byte(i % 2)
	}
	stream := m.Interleave(data, nil, nil, nil)
	gotData, ack, ri, cqi := m.Deinterleave(stream)
	require.Equal(t, data, gotData)
	require.Empty(t, ack)
	require.Empty(t, ri)
	require.Empty(t, cqi)
}

func TestInterleaverIdempotenceProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		mSym := rapid.IntRange(2, 8).Draw(rt, "mSym")
		nSymb := rapid.IntRange(2, 8).Draw(rt, "nSymb")
		m := NewMatrix(mSym, nSymb, nil)
		data := rapid.SliceOfN(rapid.IntRange(0, 1), mSym*nSymb, mSym*nSymb).Draw(rt, "data")
		bits := make([]byte, len(data))
		for i, v := range data {
			bits[i] = byte(v)
		}
		stream := m.Interleave(bits, nil, nil, nil)
		gotData, _, _, _ := m.Deinterleave(stream)
		require.Equal(rt, bits, gotData)
	})
}

func TestInterleaverReservesDocumentedACKRIPositions(t *testing.T) {
	refRows := [2]int{1, 2}
	ack := ACKPositions(4, 6, refRows)
	for _, p := range ack {
		require.Contains(t, refRows, p.Row)
	}
	ackCols := map[int]bool{}
	for _, p := range ack {
		ackCols[p.Col] = true
	}
	ri := RIPositions(2, 6, refRows, ackCols)
	for _, p := range ri {
		require.Contains(t, refRows, p.Row)
	}
}

func TestACKOverwritesDataAtReservedPositions(t *testing.T) {
	refRows := [2]int{0, 1}
	ack := ACKPositions(2, 4, refRows)
	m := NewMatrix(2, 4, ack)
	data := []byte{1, 1, 1, 1, 1, 1, 1, 1}
	stream := m.Interleave(data, []byte{0, 0}, nil, nil)
	gotData, gotAck, _, _ := m.Deinterleave(stream)
	require.Equal(t, []byte{0, 0}, gotAck)
	require.Less(t, len(gotData), len(data))
}

func TestRM32EncodeDeterministic(t *testing.T) {
	info := []byte{1, 0, 1, 1, 0}
	c1 := EncodeRM32(info)
	c2 := EncodeRM32(info)
	require.Equal(t, c1, c2)
	require.Len(t, c1, 32)
}

func TestEncodeCQIDispatchesByLength(t *testing.T) {
	small := EncodeCQI([]byte{1, 0, 1}, 16)
	require.Len(t, small, 16)
	large := make([]byte, 20)
	big := EncodeCQI(large, 64)
	require.Len(t, big, 64)
}

func TestTailBitingEncodeLength(t *testing.T) {
	info := make([]byte, 20)
	coded := EncodeTailBiting(info)
	require.Len(t, coded, 60)
}
