// Package bits extracts and injects unsigned integer fields located at
// arbitrary bit offsets inside HID report buffers. Fields are little-endian
// and may straddle byte boundaries.
package bits

// GetUnsigned returns the value of the width-bit field starting at bit
// offset off. Bits beyond the end of buf read as zero. Widths outside
// [1,32] yield zero.
func GetUnsigned(buf []byte, off, width int) uint32 {
	if off < 0 || width <= 0 || width > 32 {
		return 0
	}
	first := off / 8
	last := (off + width - 1) / 8
	var v uint64
	for i := last; i >= first; i-- {
		v <<= 8
		if i < len(buf) {
			v |= uint64(buf[i])
		}
	}
	v >>= uint(off % 8)
	return uint32(v & (1<<uint(width) - 1))
}

// PutUnsigned stores the low width bits of value at bit offset off,
// leaving surrounding bits untouched. Bits falling beyond the end of buf
// are discarded.
func PutUnsigned(buf []byte, off, width int, value uint32) {
	if off < 0 || width <= 0 || width > 32 {
		return
	}
	mask := uint64(1)<<uint(width) - 1
	v := (uint64(value) & mask) << uint(off%8)
	m := mask << uint(off%8)
	first := off / 8
	last := (off + width - 1) / 8
	for i := first; i <= last && i < len(buf); i++ {
		shift := uint(i-first) * 8
		buf[i] = buf[i]&^byte(m>>shift) | byte(v>>shift)
	}
}
