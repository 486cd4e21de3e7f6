package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"books", []string{"books"}},
		{"books  department=CSE\tyear=2", []string{"books", "department=CSE", "year=2"}},
		{`books search="operating systems"`, []string{"books", "search=operating systems"}},
		{`say "" x`, []string{"say", "", "x"}},
	}
	for _, tt := range tests {
		got, err := tokenize(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := tokenize(`say "unterminated`)
	assert.ErrorIs(t, err, ErrUnterminatedQuote)
}

func TestSplitArgs(t *testing.T) {
	pos, named, err := splitArgs([]string{"books", "b1", "Name=DBMS", "url=a=b"})
	require.NoError(t, err)
	assert.Equal(t, []string{"books", "b1"}, pos)
	assert.Equal(t, map[string]string{"name": "DBMS", "url": "a=b"}, named)

	_, _, err = splitArgs([]string{"=x"})
	assert.ErrorIs(t, err, ErrIncorrectArgument)
}

func TestContentFilter(t *testing.T) {
	f, err := contentFilter([]string{"graphs", "department=CSE", "year=3"})
	require.NoError(t, err)
	assert.Equal(t, "graphs", f.Search)
	assert.Equal(t, "CSE", f.Department)
	assert.Equal(t, "3", f.Year)

	f, err = contentFilter([]string{"ignored", "search=trees"})
	require.NoError(t, err)
	assert.Equal(t, "trees", f.Search)
}
