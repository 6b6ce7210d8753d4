package ordering

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(i int) *int { return &i }

func TestNext(t *testing.T) {
	tests := []struct {
		name string
		max  *int
		want int
	}{
		{"empty", nil, 0},
		{"zero", ptr(0), 1},
		{"after gap", ptr(7), 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Next(tt.max))
		})
	}
}

func TestSpan(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2}, Span(nil, 3))
	assert.Equal(t, []int{5, 6}, Span(ptr(4), 2))
	assert.Nil(t, Span(ptr(4), 0))
	assert.Nil(t, Span(nil, -1))
}
