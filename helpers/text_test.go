package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanLabel(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "Lehigh University", "Lehigh University"},
		{"whitespace", "  Lehigh \n University\t", "Lehigh University"},
		{"entities", "Texas A&amp;M University", "Texas A&M University"},
		{"markup", "<b>Associate</b> Professor", "Associate Professor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanLabel(tt.in))
		})
	}
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", TruncateText("short", 10))
	assert.Equal(t, "abcdefgh...", TruncateText("abcdefgh ijklmnop", 14))
	assert.Equal(t, "a long se...", TruncateText("a long sentence here", 12))
	assert.Equal(t, "abc", TruncateText("abcdef", 3))
}
