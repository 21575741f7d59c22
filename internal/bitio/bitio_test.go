package bitio

import (
	"bytes"
	"testing"
)

func TestWriterSevenBitsThenFlush(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	bits := []bool{true, false, true, true, false, false, true}
	if err := w.WriteBits(bits); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 1 {
		t.Fatalf("expected exactly one byte, got %d", buf.Len())
	}
	got := buf.Bytes()[0]
	want := byte(0b10110010) // last bit padded with 0
	if got != want {
		t.Fatalf("got %08b want %08b", got, want)
	}
}

func TestFlushIdempotentOnAlignedWriter(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteByte(0xAB); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 1 || buf.Bytes()[0] != 0xAB {
		t.Fatalf("got %v", buf.Bytes())
	}
}

func TestByteRoundTripMSBFirst(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, b := range []byte{0x00, 0xFF, 0x3C, 0x81} {
		if err := w.WriteByte(b); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	r := NewReader(&buf)
	for _, want := range []byte{0x00, 0xFF, 0x3C, 0x81} {
		got, err := r.ReadByte()
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("got %02x want %02x", got, want)
		}
	}
}

func TestReadBitsStraddlesByteBoundary(t *testing.T) {
	// 0b10110100 0b11110000 written as individual bits
	var buf bytes.Buffer
	w := NewWriter(&buf)
	bits := []bool{true, false, true, true, false, true, false, false,
		true, true, true, true, false, false, false, false}
	if err := w.WriteBits(bits); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	r := NewReader(&buf)
	// read 5 bits (10110), then 6 bits (100 111), then 5 bits (10000)
	v1, err := r.ReadBits(5)
	if err != nil {
		t.Fatal(err)
	}
	if v1 != 0b10110 {
		t.Fatalf("v1 = %05b", v1)
	}
	v2, err := r.ReadBits(6)
	if err != nil {
		t.Fatal(err)
	}
	if v2 != 0b100111 {
		t.Fatalf("v2 = %06b", v2)
	}
	v3, err := r.ReadBits(5)
	if err != nil {
		t.Fatal(err)
	}
	if v3 != 0b10000 {
		t.Fatalf("v3 = %05b", v3)
	}
}

func TestUint32LittleEndianRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteUint32(0x01020304); err != nil {
		t.Fatal(err)
	}
	want := []byte{0x04, 0x03, 0x02, 0x01}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got %x want %x", buf.Bytes(), want)
	}

	r := NewReader(&buf)
	got, err := r.ReadUint32()
	if err != nil {
		t.Fatal(err)
	}
	if got != 0x01020304 {
		t.Fatalf("got %#x", got)
	}
}
