package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "simple words",
			input: "Leg Day",
			want:  []string{"leg", "day"},
		},
		{
			name:  "fraction token preserved",
			input: "Run 1/2 mile",
			want:  []string{"run", "1/2", "mile"},
		},
		{
			name:  "hyphen is a separator",
			input: "Intervals: 1/2-mile repeats",
			want:  []string{"intervals", "1/2", "mile", "repeats"},
		},
		{
			name:  "single characters rejected",
			input: "a 5 x 10 squats",
			want:  []string{"10", "squats"},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "punctuation only",
			input: "-- !! ??",
			want:  nil,
		},
		{
			name:  "mixed case lowered",
			input: "EMOM Kettlebell",
			want:  []string{"emom", "kettlebell"},
		},
		{
			name:  "multi-segment fraction",
			input: "tempo 2/1/2 squat",
			want:  []string{"tempo", "2/1/2", "squat"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.input))
		})
	}
}

func TestTokenize_Deterministic(t *testing.T) {
	input := "Push Up Basics 3x10 — slow tempo"
	first := Tokenize(input)
	second := Tokenize(input)
	assert.Equal(t, first, second)
}
