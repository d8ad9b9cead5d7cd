// Package unitfmt renders quantities in compact human-readable form, with
// adaptive unit selection: durations as ns/us/ms/s/m/h, counts with k/M
// suffixes, byte sizes as B/kB/MB/GB, and rates as events per second.
//
// All functions are append-style, mirroring strconv, with string-returning
// convenience wrappers.
package unitfmt

import (
	"strconv"
	"time"
)

// AppendDuration appends d in the largest unit that keeps the value at or
// above 1, with one decimal place for fractional values, e.g. `1.5ms`,
// `2m`, `800ns`.
func AppendDuration(dst []byte, d time.Duration) []byte {
	n := float64(d)
	if d < 0 {
		dst = append(dst, '-')
		n = -n
	}
	switch {
	case n < float64(time.Microsecond):
		return appendUnit(dst, n, 1, `ns`)
	case n < float64(time.Millisecond):
		return appendUnit(dst, n, float64(time.Microsecond), `us`)
	case n < float64(time.Second):
		return appendUnit(dst, n, float64(time.Millisecond), `ms`)
	case n < float64(time.Minute):
		return appendUnit(dst, n, float64(time.Second), `s`)
	case n < float64(time.Hour):
		return appendUnit(dst, n, float64(time.Minute), `m`)
	default:
		return appendUnit(dst, n, float64(time.Hour), `h`)
	}
}

// Duration is the string form of AppendDuration.
func Duration(d time.Duration) string {
	return string(AppendDuration(nil, d))
}

// AppendCount appends n with a k or M suffix once it reaches those
// magnitudes, e.g. `950`, `1.2k`, `3.4M`.
func AppendCount(dst []byte, n uint64) []byte {
	switch {
	case n < 1_000:
		return strconv.AppendUint(dst, n, 10)
	case n < 1_000_000:
		return appendUnit(dst, float64(n), 1_000, `k`)
	default:
		return appendUnit(dst, float64(n), 1_000_000, `M`)
	}
}

// Count is the string form of AppendCount.
func Count(n uint64) string {
	return string(AppendCount(nil, n))
}

// AppendBytes appends n as a byte size, e.g. `512B`, `1.5kB`, `2GB`.
func AppendBytes(dst []byte, n uint64) []byte {
	switch {
	case n < 1_000:
		dst = strconv.AppendUint(dst, n, 10)
		return append(dst, 'B')
	case n < 1_000_000:
		return appendUnit(dst, float64(n), 1_000, `kB`)
	case n < 1_000_000_000:
		return appendUnit(dst, float64(n), 1_000_000, `MB`)
	default:
		return appendUnit(dst, float64(n), 1_000_000_000, `GB`)
	}
}

// Bytes is the string form of AppendBytes.
func Bytes(n uint64) string {
	return string(AppendBytes(nil, n))
}

// AppendRate appends perSecond as an iteration throughput, e.g. `7.5/s`,
// `1.2k/s`.
func AppendRate(dst []byte, perSecond float64) []byte {
	if perSecond < 0 {
		perSecond = 0
	}
	switch {
	case perSecond < 1_000:
		dst = appendFixed(dst, perSecond)
	case perSecond < 1_000_000:
		dst = appendFixed(dst, perSecond/1_000)
		dst = append(dst, 'k')
	default:
		dst = appendFixed(dst, perSecond/1_000_000)
		dst = append(dst, 'M')
	}
	return append(dst, '/', 's')
}

// Rate is the string form of AppendRate.
func Rate(perSecond float64) string {
	return string(AppendRate(nil, perSecond))
}

func appendUnit(dst []byte, n, scale float64, unit string) []byte {
	dst = appendFixed(dst, n/scale)
	return append(dst, unit...)
}

// appendFixed appends v with at most one decimal place, dropping the
// decimal entirely when it is zero.
func appendFixed(dst []byte, v float64) []byte {
	scaled := int64(v*10 + 0.5)
	dst = strconv.AppendInt(dst, scaled/10, 10)
	if r := scaled % 10; r != 0 {
		dst = append(dst, '.')
		dst = strconv.AppendInt(dst, r, 10)
	}
	return dst
}
