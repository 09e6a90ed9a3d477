package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/Puppetdog/sp-calculator-sub000/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteStore(t *testing.T) (*SQLStore, *sql.DB) {
	t.Helper()

	db, err := Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s, err := NewSQLStore(db, "sqlite")
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	return s, db
}

func TestSQLStore_SQLite_Contract(t *testing.T) {
	runStoreContract(t, func(t *testing.T) ProgramStore {
		s, _ := newSQLiteStore(t)
		return s
	})
}

func TestSQLStore_MigrateIsIdempotent(t *testing.T) {
	s, _ := newSQLiteStore(t)
	assert.NoError(t, s.Migrate(context.Background()))
}

func TestSQLStore_ApplyCOLA_RollsBackWhenHistoryInsertFails(t *testing.T) {
	ctx := context.Background()
	s, db := newSQLiteStore(t)

	added, err := s.AddProgram(ctx, sampleProgram("Cash Support", "JO"))
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, "DROP TABLE benefit_adjustments")
	require.NoError(t, err)

	_, err = s.ApplyCOLA(ctx, added.ID, decimal.RequireFromString("0.10"), time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record adjustment")

	got, err := s.GetProgram(ctx, added.ID)
	require.NoError(t, err)
	assert.True(t, got.MinimumBenefit.Equal(decimal.RequireFromString("123.45")), "benefit update was rolled back, got %s", got.MinimumBenefit)
}

func TestSQLStore_AddProgram_IsAtomic(t *testing.T) {
	ctx := context.Background()
	s, _ := newSQLiteStore(t)

	first, err := s.AddProgram(ctx, sampleProgram("Cash Support", "JO"))
	require.NoError(t, err)

	// reusing a rule ID violates the primary key half way through the insert
	clash := sampleProgram("Clash", "JO")
	clash.EligibilityRules[0].ID = first.EligibilityRules[0].ID
	_, err = s.AddProgram(ctx, clash)
	require.Error(t, err)

	programs, err := s.ListActivePrograms(ctx, "JO")
	require.NoError(t, err)
	assert.Len(t, programs, 1, "the clashing program row was rolled back too")
}

func TestSQLStore_AddProgram_StoresPreparedRules(t *testing.T) {
	ctx := context.Background()
	s, db := newSQLiteStore(t)

	added, err := s.AddProgram(ctx, sampleProgram("Cash Support", "JO"))
	require.NoError(t, err)

	rows, err := db.QueryContext(ctx, "SELECT rule_type, operator FROM eligibility_rules WHERE program_id = ? ORDER BY priority", added.ID)
	require.NoError(t, err)
	defer rows.Close()

	var stored []string
	for rows.Next() {
		var ruleType, operator string
		require.NoError(t, rows.Scan(&ruleType, &operator))
		stored = append(stored, ruleType+" "+operator)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []string{"gender ===", "ageRange BETWEEN", "householdSize >="}, stored)
}

func TestSQLStore_UnsupportedDriver(t *testing.T) {
	_, err := Open("mysql", "")
	assert.Error(t, err)

	_, err = NewSQLStore(nil, "oracle")
	assert.Error(t, err)
}

func TestSQLStore_GetMEB_NotFound(t *testing.T) {
	s, _ := newSQLiteStore(t)

	_, err := s.GetMEB(context.Background(), "ZZ")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
