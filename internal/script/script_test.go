package script

import (
	"bytes"
	"testing"
)

func TestRoundTripTwoLeaves(t *testing.T) {
	// Scenario: input of AB (two distinct bytes) must round-trip through
	// a two-leaf tree.
	data := []byte("AB")
	enc, err := Encode(data)
	if err != nil {
		t.Fatal(err)
	}
	dec, err := Decode(enc)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(dec, data) {
		t.Fatalf("got %q want %q", dec, data)
	}
}

func TestRoundTripLongerText(t *testing.T) {
	data := []byte("\x82\xa0\x82\xa2\x82\xa4\x82\xa6\x82\xa8hello world")
	enc, err := Encode(data)
	if err != nil {
		t.Fatal(err)
	}
	dec, err := Decode(enc)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(dec, data) {
		t.Fatalf("got %x want %x", dec, data)
	}
}

func TestRoundTripEmpty(t *testing.T) {
	enc, err := Encode(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(enc) != 4 {
		t.Fatalf("expected a bare 4-byte length prefix, got %d bytes", len(enc))
	}
	dec, err := Decode(enc)
	if err != nil {
		t.Fatal(err)
	}
	if len(dec) != 0 {
		t.Fatalf("expected empty output, got %v", dec)
	}
}

func TestDecodeDoesNotReadPastLogicalLength(t *testing.T) {
	data := []byte("AB")
	enc, err := Encode(data)
	if err != nil {
		t.Fatal(err)
	}
	// Append trailing junk the way pad bits or archive alignment might;
	// Decode must ignore it.
	enc = append(enc, 0xFF, 0xFF, 0xFF)
	dec, err := Decode(enc)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(dec, data) {
		t.Fatalf("got %q want %q", dec, data)
	}
}
