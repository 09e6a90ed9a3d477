package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/Puppetdog/sp-calculator-sub000/internal/domain"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// Supported database/sql driver names.
const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

const defaultTxTimeout = 5 * time.Second

//go:embed schema.sql
var schema string

// Open opens a database for one of the supported drivers. "postgres" is
// accepted as an alias of the pgx driver.
func Open(driver, dsn string) (*sql.DB, error) {
	name, err := driverName(driver)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", name, err)
	}
	if name == DriverSQLite {
		// a single connection keeps ":memory:" databases alive and
		// serializes writers
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

func driverName(driver string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "pgx", "postgres", "postgresql":
		return DriverPostgres, nil
	case "sqlite", "sqlite3":
		return DriverSQLite, nil
	}
	return "", fmt.Errorf("unsupported database driver %q", driver)
}

// SQLStore persists the catalog in PostgreSQL or SQLite.
type SQLStore struct {
	db        *sql.DB
	driver    string
	sb        sq.StatementBuilderType
	TxTimeout time.Duration
}

// NewSQLStore wraps an open database. driver selects the placeholder style.
func NewSQLStore(db *sql.DB, driver string) (*SQLStore, error) {
	name, err := driverName(driver)
	if err != nil {
		return nil, err
	}
	var placeholder sq.PlaceholderFormat = sq.Question
	if name == DriverPostgres {
		placeholder = sq.Dollar
	}
	return &SQLStore{
		db:     db,
		driver: name,
		sb:     sq.StatementBuilder.PlaceholderFormat(placeholder),
	}, nil
}

// Migrate creates the schema if it does not exist yet.
func (s *SQLStore) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// runner is satisfied by both *sql.DB and *sql.Tx.
type runner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// runInTx runs fn in a transaction with a default timeout. fn must use the
// given ctx and tx for every statement.
func (s *SQLStore) runInTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("transaction aborted: %w", err)
	}

	timeout := s.TxTimeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

var programColumns = []string{
	"id", "name", "description", "category", "program_country", "country_code", "active",
	"age_minimum", "age_maximum", "gender", "employment_status", "disability_status",
	"chronic_illness_status", "household_size", "citizenship_required",
	"minimum_benefit", "maximum_benefit", "benefit_frequency",
	"cash_transfer", "cash_transfer_monthly_amount", "in_kind_transfer", "in_kind_dollar_value_amt",
	"reapplication_period",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProgram(row rowScanner) (domain.Program, error) {
	var p domain.Program
	var ageMin, ageMax, household sql.NullInt64
	var gender, employment, disability, chronic sql.NullString
	var minBenefit, maxBenefit decimal.NullDecimal
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Category, &p.ProgramCountry, &p.CountryCode, &p.Active,
		&ageMin, &ageMax, &gender, &employment, &disability,
		&chronic, &household, &p.CitizenshipRequired,
		&minBenefit, &maxBenefit, &p.BenefitFrequency,
		&p.CashTransfer, &p.CashTransferMonthlyAmount, &p.InKindTransfer, &p.InKindDollarValueAmt,
		&p.ReapplicationPeriod,
	)
	if err != nil {
		return domain.Program{}, err
	}
	p.AgeMinimum = intFromNull(ageMin)
	p.AgeMaximum = intFromNull(ageMax)
	p.HouseholdSize = intFromNull(household)
	p.Gender = stringFromNull(gender)
	p.EmploymentStatus = stringFromNull(employment)
	p.DisabilityStatus = stringFromNull(disability)
	p.ChronicIllnessStatus = stringFromNull(chronic)
	p.MinimumBenefit = decimalFromNull(minBenefit)
	p.MaximumBenefit = decimalFromNull(maxBenefit)
	return p, nil
}

func (s *SQLStore) ListActivePrograms(ctx context.Context, countryCode string) ([]domain.Program, error) {
	return s.listPrograms(ctx, sq.Eq{"active": true, "country_code": countryKey(countryCode)})
}

func (s *SQLStore) ListAllActivePrograms(ctx context.Context) ([]domain.Program, error) {
	return s.listPrograms(ctx, sq.Eq{"active": true})
}

func (s *SQLStore) listPrograms(ctx context.Context, where sq.Eq) ([]domain.Program, error) {
	query, args, err := s.sb.Select(programColumns...).From("programs").Where(where).OrderBy("name", "id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build program query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	var programs []domain.Program
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan program: %w", err)
		}
		programs = append(programs, p)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}

	for i := range programs {
		if err := s.loadChildren(ctx, s.db, &programs[i]); err != nil {
			return nil, err
		}
		programs[i] = activeView(programs[i])
	}
	return programs, nil
}

func (s *SQLStore) GetProgram(ctx context.Context, id string) (domain.Program, error) {
	query, args, err := s.sb.Select(programColumns...).From("programs").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return domain.Program{}, fmt.Errorf("build program query: %w", err)
	}
	p, err := scanProgram(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Program{}, domain.NewNotFoundError("program", id)
		}
		return domain.Program{}, fmt.Errorf("get program: %w", err)
	}
	if err := s.loadChildren(ctx, s.db, &p); err != nil {
		return domain.Program{}, err
	}
	return activeView(p), nil
}

// loadChildren reads the active child rows of p. Each result set is fully
// drained before the next query runs.
func (s *SQLStore) loadChildren(ctx context.Context, q runner, p *domain.Program) error {
	byProgram := sq.Eq{"program_id": p.ID, "active": true}

	err := s.queryEach(ctx, q,
		s.sb.Select("id", "program_id", "rule_type", "operator", "value", "logic_group", "priority", "active").
			From("eligibility_rules").Where(byProgram).OrderBy("priority", "id"),
		func(row rowScanner) error {
			var r domain.EligibilityRule
			if err := row.Scan(&r.ID, &r.ProgramID, &r.RuleType, &r.Operator, &r.Value, &r.LogicGroup, &r.Priority, &r.Active); err != nil {
				return err
			}
			p.EligibilityRules = append(p.EligibilityRules, r)
			return nil
		})
	if err != nil {
		return fmt.Errorf("load eligibility rules: %w", err)
	}

	err = s.queryEach(ctx, q,
		s.sb.Select("id", "program_id", "condition_type", "operator", "threshold_value", "benefit_modifier", "modifier_type", "priority", "active").
			From("benefit_rules").Where(byProgram).OrderBy("priority", "id"),
		func(row rowScanner) error {
			var r domain.BenefitRule
			if err := row.Scan(&r.ID, &r.ProgramID, &r.ConditionType, &r.Operator, &r.ThresholdValue, &r.BenefitModifier, &r.ModifierType, &r.Priority, &r.Active); err != nil {
				return err
			}
			p.BenefitRules = append(p.BenefitRules, r)
			return nil
		})
	if err != nil {
		return fmt.Errorf("load benefit rules: %w", err)
	}

	err = s.queryEach(ctx, q,
		s.sb.Select("id", "program_id", "benefit_type", "condition_field", "condition_operator", "condition_value", "benefit_amount", "active").
			From("benefit_conditions").Where(byProgram).OrderBy("id"),
		func(row rowScanner) error {
			var c domain.BenefitCondition
			if err := row.Scan(&c.ID, &c.ProgramID, &c.BenefitType, &c.ConditionField, &c.ConditionOperator, &c.ConditionValue, &c.BenefitAmount, &c.Active); err != nil {
				return err
			}
			p.BenefitConditions = append(p.BenefitConditions, c)
			return nil
		})
	if err != nil {
		return fmt.Errorf("load benefit conditions: %w", err)
	}

	docIndex := make(map[string]int)
	err = s.queryEach(ctx, q,
		s.sb.Select("id", "document_type", "is_mandatory", "alternatives_allowed", "active").
			From("required_documents").Where(byProgram).OrderBy("id"),
		func(row rowScanner) error {
			var d domain.RequiredDocument
			if err := row.Scan(&d.ID, &d.DocumentType, &d.IsMandatory, &d.AlternativesAllowed, &d.Active); err != nil {
				return err
			}
			docIndex[d.ID] = len(p.RequiredDocuments)
			p.RequiredDocuments = append(p.RequiredDocuments, d)
			return nil
		})
	if err != nil {
		return fmt.Errorf("load required documents: %w", err)
	}

	if len(docIndex) > 0 {
		err = s.queryEach(ctx, q,
			s.sb.Select("a.id", "a.document_id", "a.alternative_type").
				From("document_alternatives a").
				Join("required_documents d ON d.id = a.document_id").
				Where(sq.Eq{"d.program_id": p.ID}).OrderBy("a.id"),
			func(row rowScanner) error {
				var alt domain.DocumentAlternative
				var documentID string
				if err := row.Scan(&alt.ID, &documentID, &alt.AlternativeType); err != nil {
					return err
				}
				if i, ok := docIndex[documentID]; ok {
					p.RequiredDocuments[i].Alternatives = append(p.RequiredDocuments[i].Alternatives, alt)
				}
				return nil
			})
		if err != nil {
			return fmt.Errorf("load document alternatives: %w", err)
		}
	}

	err = s.queryEach(ctx, q,
		s.sb.Select("id", "region", "coverage_type", "special_requirements", "active").
			From("geographic_coverage").Where(byProgram).OrderBy("id"),
		func(row rowScanner) error {
			var c domain.GeographicCoverage
			var requirements sql.NullString
			if err := row.Scan(&c.ID, &c.Region, &c.CoverageType, &requirements, &c.Active); err != nil {
				return err
			}
			c.SpecialRequirements = stringFromNull(requirements)
			p.GeographicCoverage = append(p.GeographicCoverage, c)
			return nil
		})
	if err != nil {
		return fmt.Errorf("load geographic coverage: %w", err)
	}
	return nil
}

func (s *SQLStore) queryEach(ctx context.Context, q runner, b sq.SelectBuilder, scan func(rowScanner) error) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *SQLStore) GetMEB(ctx context.Context, countryCode string) (domain.MEBValue, error) {
	query, args, err := s.sb.Select("country_code", "amount").From("meb_values").
		Where(sq.Eq{"country_code": countryKey(countryCode)}).ToSql()
	if err != nil {
		return domain.MEBValue{}, fmt.Errorf("build MEB query: %w", err)
	}

	var m domain.MEBValue
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&m.CountryCode, &m.Amount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.MEBValue{}, domain.NewNotFoundError("MEB for country", countryCode)
		}
		return domain.MEBValue{}, fmt.Errorf("get MEB: %w", err)
	}
	return m, nil
}

func (s *SQLStore) SaveMEB(ctx context.Context, meb domain.MEBValue) error {
	query, args, err := s.sb.Insert("meb_values").Columns("country_code", "amount").
		Values(countryKey(meb.CountryCode), meb.Amount).
		Suffix("ON CONFLICT (country_code) DO UPDATE SET amount = excluded.amount").ToSql()
	if err != nil {
		return fmt.Errorf("build MEB upsert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save MEB: %w", err)
	}
	return nil
}

func (s *SQLStore) AddProgram(ctx context.Context, p domain.Program) (domain.Program, error) {
	p = domain.PrepareProgram(withIDs(p))
	p.CountryCode = countryKey(p.CountryCode)

	err := s.runInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.insertProgram(ctx, tx, p)
	})
	if err != nil {
		return domain.Program{}, fmt.Errorf("add program %s: %w", p.Name, err)
	}
	return p, nil
}

func (s *SQLStore) insertProgram(ctx context.Context, q runner, p domain.Program) error {
	inserts := []sq.InsertBuilder{
		s.sb.Insert("programs").Columns(programColumns...).Values(
			p.ID, p.Name, p.Description, p.Category, p.ProgramCountry, p.CountryCode, p.Active,
			nullInt(p.AgeMinimum), nullInt(p.AgeMaximum), nullString(p.Gender), nullString(p.EmploymentStatus),
			nullString(p.DisabilityStatus), nullString(p.ChronicIllnessStatus), nullInt(p.HouseholdSize),
			p.CitizenshipRequired, nullDecimal(p.MinimumBenefit), nullDecimal(p.MaximumBenefit), p.BenefitFrequency,
			p.CashTransfer, p.CashTransferMonthlyAmount, p.InKindTransfer, p.InKindDollarValueAmt,
			p.ReapplicationPeriod,
		),
	}
	for _, r := range p.EligibilityRules {
		inserts = append(inserts, s.sb.Insert("eligibility_rules").
			Columns("id", "program_id", "rule_type", "operator", "value", "logic_group", "priority", "active").
			Values(r.ID, p.ID, r.RuleType, r.Operator, r.Value, r.LogicGroup, r.Priority, r.Active))
	}
	for _, r := range p.BenefitRules {
		inserts = append(inserts, s.sb.Insert("benefit_rules").
			Columns("id", "program_id", "condition_type", "operator", "threshold_value", "benefit_modifier", "modifier_type", "priority", "active").
			Values(r.ID, p.ID, r.ConditionType, r.Operator, r.ThresholdValue, r.BenefitModifier, r.ModifierType, r.Priority, r.Active))
	}
	for _, c := range p.BenefitConditions {
		inserts = append(inserts, s.sb.Insert("benefit_conditions").
			Columns("id", "program_id", "benefit_type", "condition_field", "condition_operator", "condition_value", "benefit_amount", "active").
			Values(c.ID, p.ID, c.BenefitType, c.ConditionField, c.ConditionOperator, c.ConditionValue, c.BenefitAmount, c.Active))
	}
	for _, d := range p.RequiredDocuments {
		inserts = append(inserts, s.sb.Insert("required_documents").
			Columns("id", "program_id", "document_type", "is_mandatory", "alternatives_allowed", "active").
			Values(d.ID, p.ID, d.DocumentType, d.IsMandatory, d.AlternativesAllowed, d.Active))
		for _, alt := range d.Alternatives {
			inserts = append(inserts, s.sb.Insert("document_alternatives").
				Columns("id", "document_id", "alternative_type").
				Values(alt.ID, d.ID, alt.AlternativeType))
		}
	}
	for _, c := range p.GeographicCoverage {
		inserts = append(inserts, s.sb.Insert("geographic_coverage").
			Columns("id", "program_id", "region", "coverage_type", "special_requirements", "active").
			Values(c.ID, p.ID, c.Region, c.CoverageType, nullString(c.SpecialRequirements), c.Active))
	}

	for _, ins := range inserts {
		query, args, err := ins.ToSql()
		if err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return nil
}

// ApplyCOLA updates the benefit bounds and appends the history row in one
// transaction.
func (s *SQLStore) ApplyCOLA(ctx context.Context, programID string, rate decimal.Decimal, effective time.Time) (domain.BenefitAdjustment, error) {
	adj := domain.BenefitAdjustment{
		ID:             uuid.NewString(),
		ProgramID:      programID,
		AdjustmentRate: rate,
		EffectiveDate:  effective.UTC(),
		Year:           effective.Year(),
	}

	err := s.runInTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		sel := s.sb.Select("minimum_benefit", "maximum_benefit").From("programs").Where(sq.Eq{"id": programID})
		if s.driver == DriverPostgres {
			sel = sel.Suffix("FOR UPDATE")
		}
		query, args, err := sel.ToSql()
		if err != nil {
			return err
		}

		var minBenefit, maxBenefit decimal.NullDecimal
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&minBenefit, &maxBenefit); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.NewNotFoundError("program", programID)
			}
			return err
		}

		update, args, err := s.sb.Update("programs").
			Set("minimum_benefit", nullDecimal(domain.AdjustedBenefit(decimalFromNull(minBenefit), rate))).
			Set("maximum_benefit", nullDecimal(domain.AdjustedBenefit(decimalFromNull(maxBenefit), rate))).
			Where(sq.Eq{"id": programID}).ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, update, args...); err != nil {
			return fmt.Errorf("update benefits: %w", err)
		}

		insert, args, err := s.sb.Insert("benefit_adjustments").
			Columns("id", "program_id", "adjustment_rate", "effective_date", "year").
			Values(adj.ID, adj.ProgramID, adj.AdjustmentRate, adj.EffectiveDate.Format(time.RFC3339Nano), adj.Year).ToSql()
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
			return fmt.Errorf("record adjustment: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.BenefitAdjustment{}, fmt.Errorf("apply COLA to program %s: %w", programID, err)
	}
	return adj, nil
}

func (s *SQLStore) ListAdjustments(ctx context.Context, programID string) ([]domain.BenefitAdjustment, error) {
	if _, err := s.GetProgram(ctx, programID); err != nil {
		return nil, err
	}

	var out []domain.BenefitAdjustment
	err := s.queryEach(ctx, s.db,
		s.sb.Select("id", "program_id", "adjustment_rate", "effective_date", "year").
			From("benefit_adjustments").Where(sq.Eq{"program_id": programID}).OrderBy("effective_date", "id"),
		func(row rowScanner) error {
			var a domain.BenefitAdjustment
			var effective string
			if err := row.Scan(&a.ID, &a.ProgramID, &a.AdjustmentRate, &effective, &a.Year); err != nil {
				return err
			}
			t, err := time.Parse(time.RFC3339Nano, effective)
			if err != nil {
				return fmt.Errorf("parse effective date %q: %w", effective, err)
			}
			a.EffectiveDate = t
			out = append(out, a)
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("list adjustments: %w", err)
	}
	return out, nil
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nullDecimal(v *decimal.Decimal) decimal.NullDecimal {
	if v == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *v, Valid: true}
}

func intFromNull(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

func stringFromNull(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func decimalFromNull(v decimal.NullDecimal) *decimal.Decimal {
	if !v.Valid {
		return nil
	}
	return &v.Decimal
}
