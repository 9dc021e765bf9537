// Package fphash implements the 32-bit fold hash shared by the canvas and
// audio fingerprints: h = h*31 + v with int32 wraparound, rendered as a
// signed hexadecimal string. The scheme is intentionally weak; fingerprints
// are stability markers, not security hashes.
package fphash

import (
	"math"
	"strconv"
)

// FoldString folds s code point by code point.
func FoldString(s string) string {
	var h int32
	for _, r := range s {
		h = h*31 + int32(r)
	}
	return format(h)
}

// FoldFloats folds samples truncated toward zero. NaN and infinite samples
// contribute zero, matching the defensive readout of audio frequency bins.
func FoldFloats(samples []float64) string {
	var h int32
	for _, v := range samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			h *= 31
			continue
		}
		h = h*31 + int32(v)
	}
	return format(h)
}

func format(h int32) string {
	return strconv.FormatInt(int64(h), 16)
}
