// internal/workers/proposal/generate-draft/confidence_test.go
package generatedraft

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreConfidence(t *testing.T) {
	tests := []struct {
		name     string
		inputs   confidenceInputs
		expected int
	}{
		{
			name: "everything favorable clamps at ceiling",
			inputs: confidenceInputs{
				EnhanceSucceeded:    true,
				PhotoCount:          5,
				VisionAvgConfidence: 0.9,
				HasDamageOrIssues:   true,
				NotesLength:         50,
				NeedsMorePhotos:     0,
				MarketDataAvailable: true,
			},
			expected: 95, // 70+10+10+5+5+5+5 = 110 clamped
		},
		{
			name:     "nothing at all",
			inputs:   confidenceInputs{},
			expected: 45,
		},
		{
			name: "enhancement failed with decent signals",
			inputs: confidenceInputs{
				EnhanceSucceeded:    false,
				PhotoCount:          3,
				VisionAvgConfidence: 0.6,
				HasDamageOrIssues:   true,
				NotesLength:         30,
			},
			expected: 45 + 10 + 5 + 5 + 5 + 5, // 75, needsMore==0 and 3 photos
		},
		{
			name: "two photos gives smaller bonus",
			inputs: confidenceInputs{
				EnhanceSucceeded: true,
				PhotoCount:       2,
			},
			expected: 75,
		},
		{
			name: "needs more photos blocks completeness bonus",
			inputs: confidenceInputs{
				EnhanceSucceeded: true,
				PhotoCount:       4,
				NeedsMorePhotos:  2,
			},
			expected: 80,
		},
		{
			name: "avg confidence boundary not inclusive",
			inputs: confidenceInputs{
				EnhanceSucceeded:    true,
				VisionAvgConfidence: 0.7,
			},
			expected: 75, // 0.7 is not > 0.7, falls to > 0.5 bonus
		},
		{
			name: "notes boundary not inclusive",
			inputs: confidenceInputs{
				EnhanceSucceeded: true,
				NotesLength:      20,
			},
			expected: 70,
		},
		{
			name: "market data alone",
			inputs: confidenceInputs{
				EnhanceSucceeded:    true,
				MarketDataAvailable: true,
			},
			expected: 75,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := scoreConfidence(tt.inputs)
			assert.Equal(t, tt.expected, score)
			assert.GreaterOrEqual(t, score, 0)
			assert.LessOrEqual(t, score, 95)
		})
	}
}

func TestScoreConfidence_NeverExceedsCeiling(t *testing.T) {
	score := scoreConfidence(confidenceInputs{
		EnhanceSucceeded:    true,
		PhotoCount:          100,
		VisionAvgConfidence: 1.0,
		HasDamageOrIssues:   true,
		NotesLength:         10000,
		MarketDataAvailable: true,
	})
	assert.Equal(t, 95, score)
}
