// internal/common/remedystore/store_test.go
package remedystore

import (
	"context"
	"errors"
	"testing"

	"proposal-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestGetRemedyScopeItems_DBHit(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT item").
		WithArgs("faucet", "replace").
		WillReturnRows(sqlmock.NewRows([]string{"item"}).
			AddRow("Custom step one").
			AddRow("Custom step two"))

	store := New(db, logger.NewTestLogger(t))
	items := store.GetRemedyScopeItems(context.Background(), "faucet", "replace")

	assert.Equal(t, []string{"Custom step one", "Custom step two"}, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRemedyScopeItems_DBErrorFallsBackToBuiltins(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT item").
		WillReturnError(errors.New("connection reset"))

	store := New(db, logger.NewTestLogger(t))
	items := store.GetRemedyScopeItems(context.Background(), "toilet", "repair")

	assert.Equal(t, builtinTemplates["toilet:repair"], items)
}

func TestGetRemedyScopeItems_EmptyDBFallsBackToBuiltins(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT item").
		WillReturnRows(sqlmock.NewRows([]string{"item"}))

	store := New(db, logger.NewTestLogger(t))
	items := store.GetRemedyScopeItems(context.Background(), "pipe", "replace")

	assert.Equal(t, builtinTemplates["pipe:replace"], items)
}

func TestGetRemedyScopeItems_NilDBUsesBuiltins(t *testing.T) {
	store := New(nil, logger.NewTestLogger(t))

	items := store.GetRemedyScopeItems(context.Background(), "Water_Heater", " REPLACE ")
	assert.Equal(t, builtinTemplates["water_heater:replace"], items)
}

func TestGetRemedyScopeItems_UnknownPair(t *testing.T) {
	store := New(nil, logger.NewTestLogger(t))

	assert.Nil(t, store.GetRemedyScopeItems(context.Background(), "chimney", "replace"))
}

func TestSectionTitle(t *testing.T) {
	tests := []struct {
		issueType string
		remedy    string
		expected  string
	}{
		{"faucet", "replace", "Faucet Replacement"},
		{"faucet", "repair", "Faucet Repair"},
		{"water_heater", "replace", "Water Heater Replacement"},
		{"drain", "REPAIR", "Drain Repair"},
		{"pipe", "inspect", "Pipe"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, SectionTitle(tt.issueType, tt.remedy))
	}
}

func TestBuiltinTemplates_ReturnsCopy(t *testing.T) {
	templates := BuiltinTemplates()
	assert.NotEmpty(t, templates)

	templates["faucet:replace"][0] = "mutated"
	assert.NotEqual(t, "mutated", builtinTemplates["faucet:replace"][0])
}
