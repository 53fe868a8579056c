package generatedraft

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"proposal-workers/internal/common/remedystore"
)

// Remedy markers are a narrow text protocol, not NLP. The grammar is
// "<label> (ACTION: REPAIR|REPLACE)" embedded anywhere in the job notes,
// case-insensitive. Labels map to canonical issue types by keyword;
// unrecognized labels are dropped silently.
var remedyMarkerPattern = regexp.MustCompile(`(?i)([A-Za-z][A-Za-z0-9 _/-]*?)\s*\(\s*ACTION:\s*(REPAIR|REPLACE)\s*\)`)

// issueKeywords maps note keywords to canonical issue types. Order matters:
// earlier entries win when a label matches several keywords.
var issueKeywords = []struct {
	keyword   string
	issueType string
}{
	{"water heater", "water_heater"},
	{"heater", "water_heater"},
	{"faucet", "faucet"},
	{"tap", "faucet"},
	{"sink", "faucet"},
	{"toilet", "toilet"},
	{"drain", "drain"},
	{"sewer", "drain"},
	{"pipe", "pipe"},
	{"leak", "pipe"},
}

// RemedySelections maps canonical issue type to "repair" or "replace".
type RemedySelections map[string]string

// parseRemedySelections scans free-text notes for remedy markers. The last
// marker wins when the same issue type appears more than once.
func parseRemedySelections(notes string) RemedySelections {
	selections := RemedySelections{}
	if notes == "" {
		return selections
	}

	for _, match := range remedyMarkerPattern.FindAllStringSubmatch(notes, -1) {
		label := strings.ToLower(strings.TrimSpace(match[1]))
		remedy := strings.ToLower(match[2])

		issueType := canonicalIssueType(label)
		if issueType == "" {
			continue
		}
		selections[issueType] = remedy
	}

	return selections
}

func canonicalIssueType(label string) string {
	for _, entry := range issueKeywords {
		if strings.Contains(label, entry.keyword) {
			return entry.issueType
		}
	}
	return ""
}

// remedyScopeItems expands selections into scope items and titled sections,
// in deterministic issue-type order.
func remedyScopeItems(ctx context.Context, store *remedystore.Store, selections RemedySelections) ([]string, []ScopeSection) {
	if len(selections) == 0 {
		return nil, nil
	}

	issueTypes := make([]string, 0, len(selections))
	for issueType := range selections {
		issueTypes = append(issueTypes, issueType)
	}
	sort.Strings(issueTypes)

	var items []string
	var sections []ScopeSection
	for _, issueType := range issueTypes {
		remedy := selections[issueType]
		templateItems := store.GetRemedyScopeItems(ctx, issueType, remedy)
		if len(templateItems) == 0 {
			continue
		}
		items = append(items, templateItems...)
		sections = append(sections, ScopeSection{
			Title: remedystore.SectionTitle(issueType, remedy),
			Items: templateItems,
		})
	}

	return items, sections
}

// repairOnlyKeywords flag generic template items that contradict a pure
// replacement decision.
var repairOnlyKeywords = []string{"repair", "cartridge", "washer"}

// filterConflictingItems removes generic base-scope items that describe
// repair work when the contractor selected replacement and no repair for
// anything. Remedy-specific items always take precedence over generic ones.
func filterConflictingItems(baseScope []string, selections RemedySelections) []string {
	hasReplace := false
	hasRepair := false
	for _, remedy := range selections {
		switch remedy {
		case remedystore.RemedyReplace:
			hasReplace = true
		case remedystore.RemedyRepair:
			hasRepair = true
		}
	}

	if !hasReplace || hasRepair {
		out := make([]string, len(baseScope))
		copy(out, baseScope)
		return out
	}

	var filtered []string
	for _, item := range baseScope {
		lower := strings.ToLower(item)
		conflicts := false
		for _, keyword := range repairOnlyKeywords {
			if strings.Contains(lower, keyword) {
				conflicts = true
				break
			}
		}
		if !conflicts {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
