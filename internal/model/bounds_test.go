package model

import "testing"

func TestCheckU16(t *testing.T) {
	if err := CheckU16(0, "field"); err != nil {
		t.Errorf("CheckU16(0) = %v, want nil", err)
	}
	if err := CheckU16(0xFFFF, "field"); err != nil {
		t.Errorf("CheckU16(0xFFFF) = %v, want nil", err)
	}
	if err := CheckU16(0x10000, "field"); err == nil {
		t.Error("CheckU16(0x10000) = nil, want an error")
	}
	if err := CheckU16(-1, "field"); err == nil {
		t.Error("CheckU16(-1) = nil, want an error")
	}
}

func TestCheckU32(t *testing.T) {
	if err := CheckU32(0xFFFFFFFF, "field"); err != nil {
		t.Errorf("CheckU32(0xFFFFFFFF) = %v, want nil", err)
	}
	if err := CheckU32(0x100000000, "field"); err == nil {
		t.Error("CheckU32(0x100000000) = nil, want an error")
	}
}

func TestBoundsError_Message(t *testing.T) {
	err := &BoundsError{Field: "texture 'bg' width", Value: 70000, NumBits: 16}
	want := "texture 'bg' width (70000) is outside of bounds (0 to 65535)"
	if err.Error() != want {
		t.Errorf("BoundsError.Error() = %q, want %q", err.Error(), want)
	}
}
