// Package color derives stable tints for books shown without a cover image.
package color

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// Placeholder returns a muted hex color for a title and author. The same
// book always gets the same tint, whatever its ID or letter case.
func Placeholder(title, author string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(title))))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(strings.ToLower(strings.TrimSpace(author))))
	hue := float64(h.Sum32() % 360)

	// Low saturation keeps white title text readable.
	r, g, b := hslToRGB(hue, 0.35, 0.45)

	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// hslToRGB converts h in [0,360) and s, l in [0,1] to 8-bit RGB.
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	if s == 0 {
		v := uint8(l*255 + 0.5)
		return v, v, v
	}

	q := l + s - l*s
	if l < 0.5 {
		q = l * (1 + s)
	}
	p := 2*l - q
	h /= 360

	channel := func(t float64) uint8 {
		switch {
		case t < 0:
			t++
		case t > 1:
			t--
		}
		var v float64
		switch {
		case t < 1.0/6:
			v = p + (q-p)*6*t
		case t < 1.0/2:
			v = q
		case t < 2.0/3:
			v = p + (q-p)*(2.0/3-t)*6
		default:
			v = p
		}
		return uint8(v*255 + 0.5)
	}

	return channel(h + 1.0/3), channel(h), channel(h - 1.0/3)
}
