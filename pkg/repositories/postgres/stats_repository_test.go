package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFloatArray(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []float64
		wantErr  bool
	}{
		{"integer bounds", "{0,10,20,30}", []float64{0, 10, 20, 30}, false},
		{"fractional bounds", "{0.5,1.25,2.75}", []float64{0.5, 1.25, 2.75}, false},
		{"whitespace", " {1, 2, 3} ", []float64{1, 2, 3}, false},
		{"empty array", "{}", nil, false},
		{"non-numeric", "{1995-01-01,1996-01-01}", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bounds, err := parseFloatArray(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, bounds)
		})
	}
}
