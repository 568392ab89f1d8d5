package splatview

import "math"

// halfTable maps every possible 16-bit half-float pattern to its float32
// value. Built once at startup; decode-time conversion is a table lookup so
// multi-million point scenes never pay per-point exponent math.
var halfTable [1 << 16]float32

func init() {
	for i := range halfTable {
		halfTable[i] = decodeHalf(uint16(i))
	}
}

// HalfValue returns the float32 value of a 16-bit half-precision pattern.
func HalfValue(h uint16) float32 {
	return halfTable[h]
}

// decodeHalf evaluates the IEEE 754 binary16 decoding directly. Only used to
// fill the table; everything on a decode path goes through HalfValue.
// Intermediate math runs in float64, where every half value is exact.
func decodeHalf(h uint16) float32 {
	sign := float64(1)
	if h&0x8000 != 0 {
		sign = -1
	}
	exp := int(h>>10) & 0x1f
	mant := float64(h & 0x3ff)

	switch exp {
	case 0:
		// subnormal (or zero)
		return float32(sign * (mant / 1024) * math.Ldexp(1, -14))
	case 31:
		if mant != 0 {
			return float32(math.NaN())
		}
		return float32(sign * math.Inf(1))
	default:
		return float32(sign * math.Ldexp(1+mant/1024, exp-15))
	}
}

// HalfBits converts a float32 to the nearest half-precision pattern,
// rounding to nearest even. Values beyond the half range become infinities.
func HalfBits(f float32) uint16 {
	b := math.Float32bits(f)
	sign := uint16(b>>16) & 0x8000
	exp := int(b>>23) & 0xff
	mant := b & 0x007fffff

	if exp == 255 {
		if mant != 0 {
			return sign | 0x7e00
		}
		return sign | 0x7c00
	}

	e := exp - 127 + 15
	if e >= 31 {
		return sign | 0x7c00
	}

	if e <= 0 {
		if e < -10 {
			return sign
		}
		// subnormal output: shift the implicit leading bit into the mantissa
		m := mant | 0x00800000
		shift := uint(14 - e)
		round := uint32(1) << (shift - 1)
		out := m >> shift
		if m&round != 0 && (m&(round-1) != 0 || out&1 != 0) {
			out++
		}
		return sign | uint16(out)
	}

	round := uint32(1) << 12
	m := mant
	if m&round != 0 && (m&(round-1) != 0 || m&(round<<1) != 0) {
		m += round << 1
		if m&0x00800000 != 0 {
			m = 0
			e++
			if e >= 31 {
				return sign | 0x7c00
			}
		}
	}
	return sign | uint16(e)<<10 | uint16(m>>13)
}
