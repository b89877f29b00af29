package mdast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPlainText(t *testing.T) {
	tests := []struct {
		buf  string
		want bool
	}{
		{"", false},
		{"a", true},
		{"abc_123", true},
		{"É", true},
		{"字", true},
		{"#", false},
		{" ", false},
		{"a ", false},
		{"-", false},
		{"\n", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsPlainText(tt.buf, 'x'), "buf %q", tt.buf)
	}
}

func TestIsHeader(t *testing.T) {
	tests := []struct {
		buf  string
		next rune
		want bool
	}{
		{"#", ' ', true},
		{"######", ' ', true},
		{"#######", ' ', false},
		{"#", '#', false},
		{"#", 'a', false},
		{"#", '\t', false},
		{"#", EOF, false},
		{"", ' ', false},
		{"a#", ' ', false},
		{"#a", ' ', false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsHeader(tt.buf, tt.next), "buf %q next %q", tt.buf, tt.next)
		assert.Equal(t, tt.want, IsChapter(tt.buf, tt.next), "chapter buf %q next %q", tt.buf, tt.next)
	}
}

func TestOpenerLevel(t *testing.T) {
	tests := []struct {
		line string
		want int
	}{
		{"# a", 1},
		{"### a", 3},
		{"###### a", 6},
		{"####### a", 0},
		{"#a", 0},
		{"#", 0},
		{"", 0},
		{" # a", 0},
		{"## ", 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, openerLevel(tt.line), "line %q", tt.line)
	}
}

func TestHeaderType(t *testing.T) {
	assert.Equal(t, TypeHeader1, HeaderType(1))
	assert.Equal(t, TypeHeader6, HeaderType(6))
	assert.Equal(t, ContentType(""), HeaderType(0))
	assert.Equal(t, ContentType(""), HeaderType(7))
}
