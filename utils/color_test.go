package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{name: "hash hex", input: "#FF0000", want: 0xFF0000},
		{name: "lowercase hex", input: "#facf24", want: 0xFACF24},
		{name: "0x prefix", input: "0x00FF00", want: 0x00FF00},
		{name: "bare hex", input: "0000FF", want: 0x0000FF},
		{name: "short form", input: "#F0A", want: 0xFF00AA},
		{name: "named", input: "red", want: 0xFF0000},
		{name: "named mixed case", input: "SkyBlue", want: 0x87CEEB},
		{name: "surrounding spaces", input: "  gold  ", want: 0xFFD700},
		{name: "empty", input: "", wantErr: true},
		{name: "unknown name", input: "notacolor", wantErr: true},
		{name: "bad length", input: "#FF00", wantErr: true},
		{name: "non hex digits", input: "#GGGGGG", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseColor(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHexString(t *testing.T) {
	assert.Equal(t, "#FF0000", HexString(0xFF0000))
	assert.Equal(t, "#000012", HexString(0x12))
	assert.Equal(t, "#ABCDEF", HexString(0xABCDEF))
}

func TestHexStringRoundTrip(t *testing.T) {
	for _, c := range []int{0, 0xFFFFFF, 0x123456, 0x00FF00} {
		parsed, err := ParseColor(HexString(c))
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
}

func TestRandomColorInRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		c := RandomColor()
		assert.GreaterOrEqual(t, c, 0)
		assert.LessOrEqual(t, c, 0xFFFFFF)
	}
}

func TestParseColorNamedCoverage(t *testing.T) {
	for name := range namedColors {
		_, err := ParseColor(name)
		require.NoError(t, err, strings.ToUpper(name))
	}
}
