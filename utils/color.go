package utils

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

var namedColors = map[string]int{
	"red":       0xFF0000,
	"green":     0x00FF00,
	"blue":      0x0000FF,
	"yellow":    0xFFFF00,
	"orange":    0xFFA500,
	"purple":    0x800080,
	"pink":      0xFFC0CB,
	"black":     0x000000,
	"white":     0xFFFFFF,
	"gray":      0x808080,
	"grey":      0x808080,
	"cyan":      0x00FFFF,
	"magenta":   0xFF00FF,
	"lime":      0x32CD32,
	"teal":      0x008080,
	"navy":      0x000080,
	"maroon":    0x800000,
	"olive":     0x808000,
	"silver":    0xC0C0C0,
	"gold":      0xFFD700,
	"indigo":    0x4B0082,
	"violet":    0xEE82EE,
	"coral":     0xFF7F50,
	"salmon":    0xFA8072,
	"crimson":   0xDC143C,
	"turquoise": 0x40E0D0,
	"lavender":  0xE6E6FA,
	"plum":      0xDDA0DD,
	"orchid":    0xDA70D6,
	"khaki":     0xF0E68C,
	"beige":     0xF5F5DC,
	"mint":      0x98FF98,
	"peach":     0xFFDAB9,
	"sky":       0x87CEEB,
	"skyblue":   0x87CEEB,
	"hotpink":   0xFF69B4,
	"aqua":      0x00FFFF,
	"chocolate": 0xD2691E,
	"tomato":    0xFF6347,
	"brown":     0xA52A2A,
}

// ParseColor resolves a user-supplied color into a Discord color int.
// Accepted forms: "#RRGGBB", "0xRRGGBB", bare "RRGGBB", the 3-digit
// shorthand "#RGB", and a set of common color names.
func ParseColor(input string) (int, error) {
	raw := strings.TrimSpace(strings.ToLower(input))
	if raw == "" {
		return 0, fmt.Errorf("empty color")
	}

	if c, ok := namedColors[raw]; ok {
		return c, nil
	}

	hex := strings.TrimPrefix(raw, "#")
	hex = strings.TrimPrefix(hex, "0x")

	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return 0, fmt.Errorf("invalid color %q", input)
	}

	v, err := strconv.ParseInt(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q", input)
	}
	return int(v), nil
}

// HexString formats a color int as "#RRGGBB".
func HexString(color int) string {
	return fmt.Sprintf("#%06X", color&0xFFFFFF)
}

// RandomColor returns a random 24-bit color.
func RandomColor() int {
	return rand.Intn(0x1000000)
}
