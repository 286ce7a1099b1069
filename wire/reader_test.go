package wire

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVaruintRoundTrip(t *testing.T) {
	cases := []uint64{
		0, 1, 2, 126, 127, 128,
		(127 << 7) + 126, (127 << 7) + 127, (127 << 7) + 128,
		math.MaxUint8 - 1, math.MaxUint8, math.MaxUint8 + 1,
		math.MaxUint16 - 1, math.MaxUint16, math.MaxUint16 + 1,
		math.MaxUint32 - 1, math.MaxUint32, math.MaxUint32 + 1,
		math.MaxUint64 - 2, math.MaxUint64 - 1, math.MaxUint64,
	}
	for _, c := range cases {
		buf := make([]byte, binary.MaxVarintLen64)
		n := binary.PutUvarint(buf, c)
		r := NewReader(bytes.NewReader(buf[:n]))
		got, err := r.ReadVaruint()
		require.NoError(t, err, "case: %d", c)
		require.Equal(t, c, got, "case: %d", c)
	}
}

func TestVaruintAcceptsNonCanonicalEncoding(t *testing.T) {
	// 0 encoded over three bytes with continuation bits set: a decoder
	// must accept longer-than-canonical encodings.
	buf := []byte{0x80, 0x80, 0x00}
	r := NewReader(bytes.NewReader(buf))
	got, err := r.ReadVaruint()
	require.NoError(t, err)
	require.Equal(t, uint64(0), got)
}

func TestVaruintMalformedWithoutTerminator(t *testing.T) {
	buf := make([]byte, 11)
	for i := range buf {
		buf[i] = 0x80
	}
	r := NewReader(bytes.NewReader(buf))
	_, err := r.ReadVaruint()
	require.ErrorIs(t, err, ErrMalformedVarint)
}

func TestFixedWidthReads(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(0xff)
	binary.Write(&buf, binary.LittleEndian, int16(-2))
	binary.Write(&buf, binary.LittleEndian, uint32(0xdeadbeef))
	binary.Write(&buf, binary.LittleEndian, uint64(0x0102030405060708))
	binary.Write(&buf, binary.LittleEndian, float64(3.5))

	r := NewReader(&buf)
	u8, err := r.ReadU8()
	require.NoError(t, err)
	require.Equal(t, uint8(0xff), u8)

	i16, err := r.ReadI16()
	require.NoError(t, err)
	require.Equal(t, int16(-2), i16)

	u32, err := r.ReadU32()
	require.NoError(t, err)
	require.Equal(t, uint32(0xdeadbeef), u32)

	u64, err := r.ReadU64()
	require.NoError(t, err)
	require.Equal(t, uint64(0x0102030405060708), u64)

	f64, err := r.ReadF64()
	require.NoError(t, err)
	require.Equal(t, 3.5, f64)
}

func TestReadLString(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(5) // varuint length
	buf.WriteString("hello")
	r := NewReader(&buf)
	s, err := r.ReadLString()
	require.NoError(t, err)
	require.Equal(t, "hello", s)
}

func TestReadLStringInvalidUTF8(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteByte(1)
	buf.Write([]byte{0xff})
	r := NewReader(&buf)
	_, err := r.ReadLString()
	require.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestAtEOF(t *testing.T) {
	r := NewReader(bytes.NewReader(nil))
	eof, err := r.AtEOF()
	require.NoError(t, err)
	require.True(t, eof)

	r = NewReader(bytes.NewReader([]byte{1}))
	eof, err = r.AtEOF()
	require.NoError(t, err)
	require.False(t, eof)
	_, err = r.ReadU8()
	require.NoError(t, err)
	eof, err = r.AtEOF()
	require.NoError(t, err)
	require.True(t, eof)
}

func TestReadExactTruncated(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{1, 2}))
	_, err := r.ReadExact(4)
	require.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestGrowsBufferPastInitialSize(t *testing.T) {
	big := bytes.Repeat([]byte{0x42}, 1<<20)
	r := NewReaderSize(bytes.NewReader(big), 16)
	b, err := r.ReadExact(len(big))
	require.NoError(t, err)
	require.True(t, bytes.Equal(b, big))
	_, err = r.ReadExact(1)
	require.ErrorIs(t, err, ErrUnexpectedEOF)
}
