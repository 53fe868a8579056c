package generatedraft

// confidenceCeiling keeps the score below 100 on purpose: a generated draft
// is always provisional until the contractor reviews it.
const confidenceCeiling = 95

type confidenceInputs struct {
	EnhanceSucceeded    bool
	PhotoCount          int
	VisionAvgConfidence float64
	HasDamageOrIssues   bool
	NotesLength         int
	NeedsMorePhotos     int
	MarketDataAvailable bool
}

// scoreConfidence computes the composite draft confidence. Base reflects
// whether the scope enhancer succeeded; everything else is an additive bonus.
func scoreConfidence(in confidenceInputs) int {
	score := 45
	if in.EnhanceSucceeded {
		score = 70
	}

	switch {
	case in.PhotoCount >= 3:
		score += 10
	case in.PhotoCount >= 2:
		score += 5
	}

	switch {
	case in.VisionAvgConfidence > 0.7:
		score += 10
	case in.VisionAvgConfidence > 0.5:
		score += 5
	}

	if in.HasDamageOrIssues {
		score += 5
	}
	if in.NotesLength > 20 {
		score += 5
	}
	if in.NeedsMorePhotos == 0 && in.PhotoCount >= 3 {
		score += 5
	}
	if in.MarketDataAvailable {
		score += 5
	}

	if score < 0 {
		score = 0
	}
	if score > confidenceCeiling {
		score = confidenceCeiling
	}
	return score
}
