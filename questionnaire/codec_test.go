package questionnaire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeOther(t *testing.T) {
	tests := []struct {
		name    string
		segment string
		want    string
		ok      bool
	}{
		{"wrapped", "other(Cold weather)", "Cold weather", true},
		{"empty text", "other()", "", true},
		{"plain label", "Price", "", false},
		{"missing suffix", "other(Cold", "", false},
		{"nested parens", "other(a (b))", "a (b)", true},
		{"prefix only", "other(", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := DecodeOther(tt.segment)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitAnswer(t *testing.T) {
	assert.Nil(t, SplitAnswer(""))
	assert.Equal(t, []string{"Price", "other(Cold weather)"}, SplitAnswer("Price,other(Cold weather)"))
	// Dấu phẩy trong văn bản tự do vẫn bị tách; dữ liệu cũ cũng vậy.
	assert.Equal(t, []string{"other(a", "b)"}, SplitAnswer(EncodeOther("a,b")))
}

func TestIsNegative(t *testing.T) {
	for _, s := range []string{"No", "no", " NON ", "Non"} {
		assert.True(t, IsNegative(s), s)
	}
	for _, s := range []string{"Yes", "Oui", "nope", ""} {
		assert.False(t, IsNegative(s), s)
	}
}
