// internal/workers/proposal/generate-draft/remedy_test.go
package generatedraft

import (
	"context"
	"testing"

	"proposal-workers/internal/common/remedystore"

	"github.com/stretchr/testify/assert"
)

func TestParseRemedySelections_MarkerGrammar(t *testing.T) {
	tests := []struct {
		name     string
		notes    string
		expected RemedySelections
	}{
		{
			name:     "single replace marker",
			notes:    "Kitchen faucet (ACTION: REPLACE) is dripping constantly",
			expected: RemedySelections{"faucet": "replace"},
		},
		{
			name:     "single repair marker",
			notes:    "Toilet (ACTION: REPAIR) runs after flushing",
			expected: RemedySelections{"toilet": "repair"},
		},
		{
			name:     "case insensitive marker",
			notes:    "bathroom tap (action: replace)",
			expected: RemedySelections{"faucet": "replace"},
		},
		{
			name:     "whitespace tolerant",
			notes:    "Water heater ( ACTION:  REPLACE )",
			expected: RemedySelections{"water_heater": "replace"},
		},
		{
			name:  "multiple markers",
			notes: "Main drain (ACTION: REPAIR), also the toilet (ACTION: REPLACE)",
			expected: RemedySelections{
				"drain":  "repair",
				"toilet": "replace",
			},
		},
		{
			name:     "last marker wins for same issue",
			notes:    "Faucet (ACTION: REPAIR). Changed my mind: faucet (ACTION: REPLACE)",
			expected: RemedySelections{"faucet": "replace"},
		},
		{
			name:     "unrecognized label dropped silently",
			notes:    "Garage door (ACTION: REPLACE)",
			expected: RemedySelections{},
		},
		{
			name:     "leak keyword maps to pipe",
			notes:    "Slab leak (ACTION: REPAIR) near the hallway",
			expected: RemedySelections{"pipe": "repair"},
		},
		{
			name:     "no markers",
			notes:    "Customer wants an estimate for a bathroom refresh",
			expected: RemedySelections{},
		},
		{
			name:     "empty notes",
			notes:    "",
			expected: RemedySelections{},
		},
		{
			name:     "invalid action word ignored",
			notes:    "Faucet (ACTION: UPGRADE)",
			expected: RemedySelections{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseRemedySelections(tt.notes))
		})
	}
}

func TestRemedyScopeItems_BuiltinTemplates(t *testing.T) {
	store := remedystore.New(nil, newTestLogger(t))

	items, sections := remedyScopeItems(context.Background(), store, RemedySelections{
		"toilet": "replace",
		"faucet": "repair",
	})

	// Deterministic issue-type ordering: faucet before toilet.
	assert.Len(t, sections, 2)
	assert.Equal(t, "Faucet Repair", sections[0].Title)
	assert.Equal(t, "Toilet Replacement", sections[1].Title)

	assert.Contains(t, items, "Replace worn cartridge, washers, and O-rings")
	assert.Contains(t, items, "Supply and install new toilet with wax ring and bolts")
	assert.Equal(t, len(sections[0].Items)+len(sections[1].Items), len(items))
}

func TestRemedyScopeItems_Empty(t *testing.T) {
	store := remedystore.New(nil, newTestLogger(t))

	items, sections := remedyScopeItems(context.Background(), store, RemedySelections{})
	assert.Nil(t, items)
	assert.Nil(t, sections)
}

func TestFilterConflictingItems(t *testing.T) {
	baseScope := []string{
		"Repair existing faucet cartridge",
		"Replace washer assembly",
		"Install new supply lines",
		"Test for leaks",
	}

	tests := []struct {
		name       string
		selections RemedySelections
		expected   []string
	}{
		{
			name:       "pure replace removes repair items",
			selections: RemedySelections{"faucet": "replace"},
			expected:   []string{"Install new supply lines", "Test for leaks"},
		},
		{
			name:       "mixed repair and replace keeps everything",
			selections: RemedySelections{"faucet": "replace", "toilet": "repair"},
			expected:   baseScope,
		},
		{
			name:       "repair only keeps everything",
			selections: RemedySelections{"faucet": "repair"},
			expected:   baseScope,
		},
		{
			name:       "no selections keeps everything",
			selections: RemedySelections{},
			expected:   baseScope,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, filterConflictingItems(baseScope, tt.selections))
		})
	}
}
