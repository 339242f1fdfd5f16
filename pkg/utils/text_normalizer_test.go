package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTerm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercases", input: "Chest Pain", want: "chest pain"},
		{name: "collapses whitespace", input: "  shortness   of\tbreath ", want: "shortness of breath"},
		{name: "empty", input: "   ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTerm(tt.input))
		})
	}
}

func TestDedupeTerms(t *testing.T) {
	input := []string{
		"Chest pain",
		"chest  pain",
		"Dizziness",
		"  CHEST PAIN",
		"",
		"dizziness",
	}

	got := DedupeTerms(input)

	assert.Equal(t, []string{"Chest pain", "Dizziness"}, got)
}

func TestSplitConditions_RoundTrip(t *testing.T) {
	joined := JoinConditions([]string{"diabetes", "hypertension", " diabetes "})
	assert.Equal(t, "diabetes, hypertension", joined)
	assert.Equal(t, []string{"diabetes", "hypertension"}, SplitConditions(joined))
}

func TestSplitConditions_Empty(t *testing.T) {
	assert.Nil(t, SplitConditions("  "))
}
