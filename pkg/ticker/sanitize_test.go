package ticker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"trims and upper-cases", []string{" aapl ", "msft"}, []string{"AAPL", "MSFT"}},
		{"dedupes keeping order", []string{"TSLA", "AAPL", "tsla"}, []string{"TSLA", "AAPL"}},
		{"drops invalid symbols", []string{"", "TOOLONG", "BRK.A", "X1", "GS"}, []string{"GS"}},
		{"nil input", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.input))
		})
	}
}

func TestParseList(t *testing.T) {
	assert.Nil(t, ParseList("  "))
	assert.Equal(t, []string{"AAPL", "MSFT", "GOOGL"}, ParseList("AAPL, msft,GOOGL,,aapl"))
}
