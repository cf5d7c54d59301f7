package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFuzzySimilarity_IdenticalStrings_ScoresOne(t *testing.T) {
	assert.Equal(t, 1.0, fuzzySimilarity("receipt", "receipt"))
}

func TestFuzzySimilarity_EmptyString_ScoresZero(t *testing.T) {
	assert.Equal(t, 0.0, fuzzySimilarity("receipt", ""))
	assert.Equal(t, 0.0, fuzzySimilarity("", "receipt"))
}

func TestFuzzySimilarity_OneEditAway_ScoresHigh(t *testing.T) {
	sim := fuzzySimilarity("receipt", "recipt")
	assert.Greater(t, sim, 0.8)
	assert.Less(t, sim, 1.0)
}

func TestFuzzySimilarity_UnrelatedStrings_ScoresLow(t *testing.T) {
	sim := fuzzySimilarity("receipt", "xyzxyzxyz")
	assert.Less(t, sim, fuzzyThreshold)
}
