package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Graphic Tees", "graphic-tees"},
		{"graphic-tees", "graphic-tees"},
		{"  New   Arrivals  ", "new-arrivals"},
		{"Limited Edition!", "limited-edition"},
		{"Shop_By", "shop-by"},
		{"this week", "this-week"},
		{"Café Crème", "cafe-creme"},
		{"Señor Tee", "senor-tee"},
		{"a---b", "a-b"},
		{"-hello-", "hello"},
		{"123", "123"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Generate(tt.input))
		})
	}
}

func TestGenerate_Empty(t *testing.T) {
	assert.Equal(t, "", Generate(""))
	assert.Equal(t, "", Generate("   "))
	assert.Equal(t, "", Generate("!!!"))
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal("Bundle Deals", "bundle-deals"))
	assert.False(t, Equal("men", "women"))
}
