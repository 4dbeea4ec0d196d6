package bitfield

import "testing"

func TestSetClearHasAllPositions(t *testing.T) {
	starts := []uint32{0, 1, 0xDEADBEEF, ^uint32(0)}
	for _, start := range starts {
		for bit := uint(0); bit < 32; bit++ {
			if !Has(Set(start, bit), bit) {
				t.Fatalf("Has(Set(%#x, %d)) = false", start, bit)
			}
			if Has(Clear(start, bit), bit) {
				t.Fatalf("Has(Clear(%#x, %d)) = true", start, bit)
			}
		}
	}
}

func TestToggle(t *testing.T) {
	v := uint32(0)
	v = Toggle(v, 31)
	if v != 1<<31 {
		t.Fatalf("Toggle set: got %#x", v)
	}
	v = Toggle(v, 31)
	if v != 0 {
		t.Fatalf("Toggle clear: got %#x", v)
	}
}

func TestPackUnpackRoundTrip(t *testing.T) {
	cases := [][]uint{
		nil,
		{0},
		{31},
		{0, 3, 6, 8, 9, 12, 15, 16},
		{5, 2, 0}, // unordered input
	}
	for _, bits := range cases {
		got := Unpack(Pack(bits))
		want := map[uint]bool{}
		for _, b := range bits {
			want[b] = true
		}
		if len(got) != len(want) {
			t.Fatalf("Unpack(Pack(%v)) = %v", bits, got)
		}
		for i, b := range got {
			if !want[b] {
				t.Fatalf("Unpack(Pack(%v)) contains unexpected bit %d", bits, b)
			}
			if i > 0 && got[i-1] >= b {
				t.Fatalf("Unpack not ascending: %v", got)
			}
		}
	}
}

func TestExtractGroup(t *testing.T) {
	cases := []struct {
		v            uint32
		start, width uint
		want         uint32
	}{
		{0, 0, 3, 0},
		{0b101_000, 3, 3, 0b101},
		{0xFFFFFFFF, 8, 3, 0b111},
		{1 << 31, 31, 1, 1},
		{0b100 << 17, 17, 3, 0b100},
	}
	for _, tc := range cases {
		if got := ExtractGroup(tc.v, tc.start, tc.width); got != tc.want {
			t.Errorf("ExtractGroup(%#x, %d, %d) = %#x, want %#x", tc.v, tc.start, tc.width, got, tc.want)
		}
	}
}

func TestPackGroupLeavesOtherBits(t *testing.T) {
	v := uint32(0xFF00FF00)
	got := PackGroup(v, 8, 8, 0xAB)
	if got != 0xFF00AB00 {
		t.Fatalf("PackGroup = %#x, want 0xFF00AB00", got)
	}
	// field wider than the group is truncated
	got = PackGroup(0, 0, 3, 0xFF)
	if got != 0b111 {
		t.Fatalf("PackGroup truncation = %#x, want 0b111", got)
	}
	// round trip
	if ExtractGroup(PackGroup(0xDEADBEEF, 17, 3, 0b100), 17, 3) != 0b100 {
		t.Fatal("PackGroup/ExtractGroup round trip failed")
	}
}
