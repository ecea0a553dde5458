package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name string
		arg  string
		want string
	}{
		{"bare token", "abc123XYZ", "abc123XYZ"},
		{"bare token with separators", "a-b_c.9", "a-b_c.9"},
		{"token with whitespace", "  abc123  ", "abc123"},
		{"share path URL", "https://docs.example.com/share/tok42", "tok42"},
		{"short path URL", "https://docs.example.com/s/tok42", "tok42"},
		{"trailing slash", "https://docs.example.com/share/tok42/", "tok42"},
		{"token query param", "https://docs.example.com/view?token=tok42", "tok42"},
		{"query param wins over path", "https://docs.example.com/share/ignored?token=tok42", "tok42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractToken(tt.arg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractTokenRejects(t *testing.T) {
	tests := []struct {
		name string
		arg  string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"invalid characters", "tok 42!"},
		{"bare host URL", "https://docs.example.com/"},
		{"invalid token in path", "https://docs.example.com/share/bad%20token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := extractToken(tt.arg)
			assert.Error(t, err)
		})
	}
}
