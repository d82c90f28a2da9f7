package jayson

import (
	"math"
	"strconv"
)

const (
	// DefaultPrecision is the number of fractional digits written for
	// doubles when WriteOptions.Precision is zero.
	DefaultPrecision = 6

	// MaxPrecision is the largest supported fractional digit count.
	MaxPrecision = 17

	maxExponent = 10000
)

// Exact powers of ten representable as float64.
var pow10f = [...]float64{
	1e0, 1e1, 1e2, 1e3, 1e4, 1e5, 1e6, 1e7, 1e8, 1e9, 1e10,
	1e11, 1e12, 1e13, 1e14, 1e15, 1e16, 1e17, 1e18, 1e19, 1e20,
	1e21, 1e22,
}

var pow10u = [...]uint64{
	1, 10, 100, 1000, 10000, 100000, 1000000, 10000000, 100000000,
	1000000000, 10000000000, 100000000000, 1000000000000,
	10000000000000, 100000000000000, 1000000000000000,
	10000000000000000, 100000000000000000,
}

// AppendUint appends the decimal form of u, accumulating digits in reverse.
func AppendUint(dst []byte, u uint64) []byte {
	var scratch [20]byte
	i := len(scratch)
	for {
		i--
		scratch[i] = byte('0' + u%10)
		u /= 10
		if u == 0 {
			break
		}
	}
	return append(dst, scratch[i:]...)
}

// AppendInt appends the decimal form of n.
func AppendInt(dst []byte, n int64) []byte {
	if n < 0 {
		dst = append(dst, '-')
		// -(n+1) cannot overflow, including for math.MinInt64.
		return AppendUint(dst, uint64(-(n+1))+1)
	}
	return AppendUint(dst, uint64(n))
}

// AppendDouble appends f in fixed-point notation with exactly precision
// fractional digits. The integer part is floor(|f|); the fraction is rounded
// half-up at the last digit, carrying into the integer part when it rounds
// to one. NaN and infinities have no JSON form and are written as null.
func AppendDouble(dst []byte, f float64, precision int) []byte {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return append(dst, "null"...)
	}
	precision = clampPrecision(precision)

	neg := f < 0
	if neg {
		f = -f
	}
	ip := math.Floor(f)
	scale := pow10u[precision]
	frac := uint64(math.Floor((f-ip)*float64(scale) + 0.5))
	if frac >= scale {
		ip++
		frac -= scale
	}

	if neg && (ip != 0 || frac != 0) {
		dst = append(dst, '-')
	}
	if ip < 1<<63 {
		dst = AppendUint(dst, uint64(ip))
	} else {
		dst = strconv.AppendFloat(dst, ip, 'f', 0, 64)
	}

	dst = append(dst, '.')
	var digits [MaxPrecision]byte
	for i := precision - 1; i >= 0; i-- {
		digits[i] = byte('0' + frac%10)
		frac /= 10
	}
	return append(dst, digits[:precision]...)
}

// FormatDouble is AppendDouble into a new string.
func FormatDouble(f float64, precision int) string {
	return string(AppendDouble(nil, f, precision))
}

func clampPrecision(p int) int {
	switch {
	case p == 0:
		return DefaultPrecision
	case p < 1:
		return 1
	case p > MaxPrecision:
		return MaxPrecision
	}
	return p
}

// scaleMantissa returns m * 10^shift. Each step multiplies or divides by an
// exactly representable power of ten, so inputs with m < 2^53 and
// |shift| <= 22 are correctly rounded.
func scaleMantissa(m uint64, shift int) float64 {
	f := float64(m)
	if shift >= 0 {
		for shift > 22 {
			f *= pow10f[22]
			shift -= 22
		}
		return f * pow10f[shift]
	}
	shift = -shift
	for shift > 22 {
		f /= pow10f[22]
		shift -= 22
	}
	return f / pow10f[shift]
}
