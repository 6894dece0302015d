// Package store persists advisors, submissions, routing settings and the
// round-robin cursor in Postgres (database/sql + lib/pq), with an optional
// Redis-backed cursor.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "advisor-routing/internal/common/errors"
	"advisor-routing/internal/models"
)

const advisorColumns = `id, name, email, phone, calendly_url, territories, created_at, updated_at`

type AdvisorStore struct {
	db *sql.DB
}

func NewAdvisorStore(db *sql.DB) *AdvisorStore {
	return &AdvisorStore{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAdvisor(row rowScanner) (models.Advisor, error) {
	var (
		a   models.Advisor
		raw string
	)
	if err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.CalendlyURL, &raw, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return a, err
	}
	a.Territories = models.ParseTerritories([]byte(raw))
	return a, nil
}

// List returns the full roster ordered by ascending id.
func (s *AdvisorStore) List(ctx context.Context) ([]models.Advisor, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+advisorColumns+` FROM advisors ORDER BY id ASC`)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list_advisors", err)
	}
	defer rows.Close()

	advisors := make([]models.Advisor, 0)
	for rows.Next() {
		a, err := scanAdvisor(rows)
		if err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("list_advisors", err)
		}
		advisors = append(advisors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list_advisors", err)
	}
	return advisors, nil
}

func (s *AdvisorStore) Get(ctx context.Context, id int64) (*models.Advisor, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+advisorColumns+` FROM advisors WHERE id = $1`, id)
	a, err := scanAdvisor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewAdvisorNotFoundError(id)
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("get_advisor", err)
	}
	return &a, nil
}

// Save inserts the advisor when ID is zero, otherwise updates it in place.
func (s *AdvisorStore) Save(ctx context.Context, a *models.Advisor) error {
	territories, err := encodeTerritories(a.Territories)
	if err != nil {
		return apperrors.NewInvalidTerritoriesError(err.Error())
	}

	if a.ID == 0 {
		err := s.db.QueryRowContext(ctx, `
			INSERT INTO advisors (name, email, phone, calendly_url, territories)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at`,
			a.Name, a.Email, a.Phone, a.CalendlyURL, territories,
		).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return apperrors.NewDatabaseInsertFailedError(err)
		}
		return nil
	}

	err = s.db.QueryRowContext(ctx, `
		UPDATE advisors
		SET name = $2, email = $3, phone = $4, calendly_url = $5, territories = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`,
		a.ID, a.Name, a.Email, a.Phone, a.CalendlyURL, territories,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NewAdvisorNotFoundError(a.ID)
	}
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("update_advisor", err)
	}
	return nil
}

// Delete unassigns the advisor's submissions and removes the advisor in one
// transaction.
func (s *AdvisorStore) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewDatabaseConnectionFailedError(err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, `UPDATE submissions SET advisor_id = NULL WHERE advisor_id = $1`, id); err != nil {
		return apperrors.NewQueryExecutionFailedError("unassign_submissions", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM advisors WHERE id = $1`, id)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("delete_advisor", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NewAdvisorNotFoundError(id)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewQueryExecutionFailedError("delete_advisor", err)
	}
	return nil
}

func encodeTerritories(t models.Territories) (string, error) {
	if t == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return "", fmt.Errorf("encode territories: %w", err)
	}
	return string(raw), nil
}
