package utils

import (
	"image/color"
	"strconv"
	"strings"
)

// HexToRGBA converts a color expressed in hexadecimal format (#rrggbb or #rgb) to color.RGBA.
// Malformed values are converted to opaque black.
func HexToRGBA(hex string) color.RGBA {
	col := color.RGBA{A: 0xff}
	hex = strings.TrimPrefix(hex, "#")

	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	default:
		return col
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return col
	}
	col.R = uint8(v >> 16)
	col.G = uint8(v >> 8)
	col.B = uint8(v)

	return col
}

// Contains returns true if the value is present in the collection.
func Contains[T comparable](collection []T, value T) bool {
	for _, v := range collection {
		if v == value {
			return true
		}
	}
	return false
}
