// Package remedystore resolves (issueType, remedy) pairs to scope-item
// templates. Templates live in postgres so they can be tuned without a
// deploy; the built-in table below is the fallback when the database is
// unreachable or has no rows for a pair.
package remedystore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"proposal-workers/internal/common/logger"
)

const (
	RemedyRepair  = "repair"
	RemedyReplace = "replace"
)

// builtinTemplates keys are "<issueType>:<remedy>".
var builtinTemplates = map[string][]string{
	"faucet:replace": {
		"Remove existing faucet and inspect supply connections",
		"Supply and install new faucet (mid-grade fixture)",
		"Replace supply lines and shutoff valves as needed",
		"Test for leaks under full pressure",
	},
	"faucet:repair": {
		"Disassemble faucet and inspect cartridge and seals",
		"Replace worn cartridge, washers, and O-rings",
		"Reassemble and test for drips and handle operation",
	},
	"toilet:replace": {
		"Remove and dispose of existing toilet",
		"Supply and install new toilet with wax ring and bolts",
		"Verify flush performance and check for base leaks",
	},
	"toilet:repair": {
		"Inspect flush valve, fill valve, and flapper",
		"Replace faulty internal components",
		"Adjust water level and verify flush performance",
	},
	"water_heater:replace": {
		"Drain and disconnect existing water heater",
		"Supply and install new water heater to code",
		"Install new supply connections and expansion tank if required",
		"Verify temperature and pressure relief operation",
	},
	"water_heater:repair": {
		"Diagnose heating element, thermostat, or gas valve fault",
		"Replace failed component",
		"Flush tank sediment and verify recovery time",
	},
	"drain:repair": {
		"Clear blockage with auger or hydro-jet",
		"Camera-inspect line to confirm clear flow",
	},
	"drain:replace": {
		"Excavate and remove damaged drain section",
		"Install new drain piping and fittings",
		"Pressure-test and backfill",
	},
	"pipe:repair": {
		"Locate and isolate leaking pipe section",
		"Repair leak with appropriate fitting or patch",
		"Restore water service and verify repair",
	},
	"pipe:replace": {
		"Isolate and drain affected supply line",
		"Remove damaged piping and install new line",
		"Pressure-test new piping before closing walls",
	},
}

// Store looks up remedy scope templates.
type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func New(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "remedystore"}),
	}
}

// GetRemedyScopeItems returns the ordered scope items for an issue/remedy
// pair. Lookup failures fall back to the built-in templates; an unknown pair
// yields nil.
func (s *Store) GetRemedyScopeItems(ctx context.Context, issueType, remedy string) []string {
	issueType = strings.ToLower(strings.TrimSpace(issueType))
	remedy = strings.ToLower(strings.TrimSpace(remedy))

	if items := s.lookupDB(ctx, issueType, remedy); len(items) > 0 {
		return items
	}
	return builtinTemplates[issueType+":"+remedy]
}

func (s *Store) lookupDB(ctx context.Context, issueType, remedy string) []string {
	if s.db == nil {
		return nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT item
		FROM remedy_scope_templates
		WHERE issue_type = $1 AND remedy = $2
		ORDER BY position ASC`,
		issueType, remedy,
	)
	if err != nil {
		s.logger.Warn("remedy template lookup failed", map[string]interface{}{
			"issueType": issueType,
			"remedy":    remedy,
			"error":     err.Error(),
		})
		return nil
	}
	defer rows.Close()

	var items []string
	for rows.Next() {
		var item string
		if err := rows.Scan(&item); err != nil {
			return nil
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil
	}
	return items
}

// SectionTitle builds the human-readable section heading for a remedy,
// e.g. "Faucet Replacement" or "Water Heater Repair".
func SectionTitle(issueType, remedy string) string {
	words := strings.Split(strings.ReplaceAll(issueType, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	name := strings.Join(words, " ")

	switch strings.ToLower(remedy) {
	case RemedyReplace:
		return fmt.Sprintf("%s Replacement", name)
	case RemedyRepair:
		return fmt.Sprintf("%s Repair", name)
	default:
		return name
	}
}

// BuiltinTemplates exposes a copy of the fallback table for seeding.
func BuiltinTemplates() map[string][]string {
	out := make(map[string][]string, len(builtinTemplates))
	for k, v := range builtinTemplates {
		items := make([]string, len(v))
		copy(items, v)
		out[k] = items
	}
	return out
}
