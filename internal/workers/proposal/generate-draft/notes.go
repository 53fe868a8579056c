package generatedraft

import (
	"fmt"
	"strings"
)

const (
	maxObjectNotes    = 8
	maxMaterialLines  = 10
	maxFallbackLabels = 12
)

// scopeConfirmationMarkers signal that the contractor already finalized the
// scope. Vision content is suppressed entirely in that case so the downstream
// enhancer cannot reintroduce issues the contractor deselected.
var scopeConfirmationMarkers = []string{
	"confirmed scope",
	"scope tier:",
	"selected tier",
	"confirmed issues",
	"final scope",
}

func hasScopeConfirmation(notes string) bool {
	lower := strings.ToLower(notes)
	for _, marker := range scopeConfirmationMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// buildEnhancementNotes assembles the text payload for the scope-enhancement
// call. Explicitly confirmed notes pass through untouched; otherwise vision
// signals are appended in a fixed order, with a generic label line as the
// last-resort fallback.
func buildEnhancementNotes(vision *VisionContext, userNotes string) string {
	trimmed := strings.TrimSpace(userNotes)
	if trimmed != "" && hasScopeConfirmation(trimmed) {
		return trimmed
	}

	var lines []string
	if trimmed != "" {
		lines = append(lines, fmt.Sprintf("CONTRACTOR NOTES: %s", trimmed))
	}
	if len(vision.Damage) > 0 {
		lines = append(lines, fmt.Sprintf("DETECTED DAMAGE: %s", strings.Join(vision.Damage, ", ")))
	}
	if len(vision.Issues) > 0 {
		lines = append(lines, fmt.Sprintf("DETECTED ISSUES: %s", strings.Join(vision.Issues, ", ")))
	}
	if len(vision.Objects) > 0 {
		objects := vision.Objects
		if len(objects) > maxObjectNotes {
			objects = objects[:maxObjectNotes]
		}
		parts := make([]string, 0, len(objects))
		for _, obj := range objects {
			parts = append(parts, fmt.Sprintf("%s: %s", obj.Name, obj.Note))
		}
		lines = append(lines, fmt.Sprintf("OBSERVATIONS: %s", strings.Join(parts, "; ")))
	}
	if len(vision.Materials) > 0 {
		materials := vision.Materials
		if len(materials) > maxMaterialLines {
			materials = materials[:maxMaterialLines]
		}
		lines = append(lines, fmt.Sprintf("IDENTIFIED MATERIALS: %s", strings.Join(materials, ", ")))
	}

	if len(lines) == 0 && len(vision.Labels) > 0 {
		labels := vision.Labels
		if len(labels) > maxFallbackLabels {
			labels = labels[:maxFallbackLabels]
		}
		lines = append(lines, fmt.Sprintf("PHOTO ANALYSIS: %s", strings.Join(labels, ", ")))
	}

	return strings.Join(lines, "\n")
}
