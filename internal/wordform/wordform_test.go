package wordform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonical(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "lower", in: "apple", want: "Apple"},
		{name: "shouting", in: "APPLE", want: "Apple"},
		{name: "surrounding space", in: "  apple \n", want: "Apple"},
		{name: "cyrillic", in: "яБЛОКО", want: "Яблоко"},
		{name: "single rune", in: "a", want: "A"},
		{name: "empty", in: "   ", want: ""},
		{name: "hyphenated", in: "WELL-known", want: "Well-known"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonical(tt.in))
		})
	}
}

func TestCapitalize(t *testing.T) {
	assert.Equal(t, "Яблоко", Capitalize("яблоко"))
	assert.Equal(t, "New York", Capitalize("new York"))
	assert.Equal(t, "", Capitalize(""))
}

func TestKey_NFC(t *testing.T) {
	decomposed := "cafe\u0301"
	composed := "caf\u00e9"
	assert.Equal(t, composed, Key(" "+decomposed+" "))
}
