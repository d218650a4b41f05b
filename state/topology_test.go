package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTopology_Default(t *testing.T) {
	pairs, err := ParseTopology(DefaultTopology)
	assert.NoError(t, err)
	assert.Equal(t, []Pair[int, int]{
		{1, 2},
		{5, 4},
		{3, 2},
		{5, 1},
	}, pairs)
}

func TestParseTopology_Whitespace(t *testing.T) {
	pairs, err := ParseTopology("  1 - 2,,3-4 , ")
	assert.NoError(t, err)
	assert.Equal(t, []Pair[int, int]{{1, 2}, {3, 4}}, pairs)
}

func TestParseTopology_Empty(t *testing.T) {
	pairs, err := ParseTopology("")
	assert.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestParseTopology_Malformed(t *testing.T) {
	pairs, err := ParseTopology("1-2, a-b, 3, 4-5-6, 0-1, 2-3")
	assert.ErrorIs(t, err, ErrBadTopology)
	assert.ErrorContains(t, err, `"a-b"`)
	assert.ErrorContains(t, err, `"3"`)
	assert.ErrorContains(t, err, `"4-5-6"`)
	assert.ErrorContains(t, err, `"0-1"`)
	assert.Equal(t, []Pair[int, int]{{1, 2}, {2, 3}}, pairs)
}
