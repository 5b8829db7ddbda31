package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPositionFor(t *testing.T) {
	tests := []struct {
		name  string
		i     int
		total int
		want  string
	}{
		{"sole author is first", 0, 1, "first"},
		{"first of many", 0, 4, "first"},
		{"middle", 1, 4, "middle"},
		{"another middle", 2, 4, "middle"},
		{"last", 3, 4, "last"},
		{"second of two is last", 1, 2, "last"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, positionFor(tt.i, tt.total))
		})
	}
}

func TestParseRawAuthors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"semicolon separated", "A One; B Two;C Three", []string{"A One", "B Two", "C Three"}},
		{"comma fallback", "A One, B Two", []string{"A One", "B Two"}},
		{"semicolon preferred when both present", "One, A; Two, B", []string{"One, A", "Two, B"}},
		{"single name", "A One", []string{"A One"}},
		{"empty", "   ", nil},
		{"blank segments dropped", "A One;; ;B Two", []string{"A One", "B Two"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseRawAuthors(tt.raw))
		})
	}
}

func TestYearParam(t *testing.T) {
	assert.Nil(t, yearParam(0))
	assert.Nil(t, yearParam(-3))
	assert.Equal(t, 1987, yearParam(1987))
}
