// Package bitfield provides the pack/unpack primitives for the 32-bit
// configuration integers used across sysreg, status and tag values.
//
// All values are unsigned 32-bit. Bit 31 is a legal position (the admin
// relation lives there); there is no signed interpretation anywhere.
package bitfield

// Has reports whether bit is set in v.
func Has(v uint32, bit uint) bool {
	return v&(1<<(bit&31)) != 0
}

// Set returns v with bit set.
func Set(v uint32, bit uint) uint32 {
	return v | 1<<(bit&31)
}

// Clear returns v with bit cleared.
func Clear(v uint32, bit uint) uint32 {
	return v &^ (1 << (bit & 31))
}

// Toggle returns v with bit flipped.
func Toggle(v uint32, bit uint) uint32 {
	return v ^ 1<<(bit&31)
}

// Pack ORs together the given bit positions into a single value.
func Pack(bits []uint) uint32 {
	var v uint32
	for _, bit := range bits {
		v |= 1 << (bit & 31)
	}
	return v
}

// Unpack returns the set bit positions of v in ascending order.
func Unpack(v uint32) []uint {
	bits := make([]uint, 0, 8)
	for bit := uint(0); bit < 32; bit++ {
		if v&(1<<bit) != 0 {
			bits = append(bits, bit)
		}
	}
	return bits
}

// ExtractGroup reads the width-bit sub-field starting at start.
func ExtractGroup(v uint32, start, width uint) uint32 {
	return (v >> (start & 31)) & mask(width)
}

// PackGroup clears the width-bit range at start and writes field into it,
// leaving all other bits untouched. Field bits beyond width are discarded.
func PackGroup(v uint32, start, width uint, field uint32) uint32 {
	start &= 31
	return v&^(mask(width)<<start) | (field&mask(width))<<start
}

func mask(width uint) uint32 {
	if width >= 32 {
		return ^uint32(0)
	}
	return 1<<width - 1
}
