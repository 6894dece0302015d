package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	apperrors "advisor-routing/internal/common/errors"
	"advisor-routing/internal/models"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
	recentLimit      = 5
)

const submissionSelect = `
	SELECT s.id, s.first_name, s.last_name, s.email, s.phone, s.age, s.gender,
	       s.zipcode, s.state, s.county, s.calculation_results, s.timestamp,
	       s.status, s.advisor_id, COALESCE(a.name, '')
	FROM submissions s
	LEFT JOIN advisors a ON a.id = s.advisor_id`

type SubmissionStore struct {
	db *sql.DB
}

func NewSubmissionStore(db *sql.DB) *SubmissionStore {
	return &SubmissionStore{db: db}
}

func scanSubmission(row rowScanner) (models.Submission, error) {
	var (
		s         models.Submission
		results   []byte
		status    string
		advisorID sql.NullInt64
	)
	err := row.Scan(&s.ID, &s.FirstName, &s.LastName, &s.Email, &s.Phone, &s.Age, &s.Gender,
		&s.ZipCode, &s.State, &s.County, &results, &s.Timestamp,
		&status, &advisorID, &s.AdvisorName)
	if err != nil {
		return s, err
	}
	if len(results) > 0 {
		s.CalculationResults = append([]byte(nil), results...)
	}
	s.Status = models.SubmissionStatus(status)
	if advisorID.Valid {
		id := advisorID.Int64
		s.AdvisorID = &id
	}
	return s, nil
}

// Create stores a new submission with status "new" and no advisor, filling
// in ID, Timestamp and Status.
func (s *SubmissionStore) Create(ctx context.Context, sub *models.Submission) error {
	var results interface{}
	if len(sub.CalculationResults) > 0 {
		results = string(sub.CalculationResults)
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO submissions
			(first_name, last_name, email, phone, age, gender, zipcode, state, county, calculation_results, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'new')
		RETURNING id, timestamp`,
		sub.FirstName, sub.LastName, sub.Email, sub.Phone, sub.Age, sub.Gender,
		sub.ZipCode, sub.State, sub.County, results,
	).Scan(&sub.ID, &sub.Timestamp)
	if err != nil {
		return apperrors.NewDatabaseInsertFailedError(err)
	}
	sub.Status = models.StatusNew
	sub.AdvisorID = nil
	return nil
}

// SetAdvisor records the routing outcome. A nil advisorID stores NULL.
func (s *SubmissionStore) SetAdvisor(ctx context.Context, submissionID int64, advisorID *int64) error {
	var value interface{}
	if advisorID != nil {
		value = *advisorID
	}
	res, err := s.db.ExecContext(ctx, `UPDATE submissions SET advisor_id = $2 WHERE id = $1`, submissionID, value)
	if err != nil {
		return apperrors.NewAssignmentPersistFailedError(submissionID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NewSubmissionNotFoundError(submissionID)
	}
	return nil
}

func (s *SubmissionStore) Get(ctx context.Context, id int64) (*models.Submission, error) {
	row := s.db.QueryRowContext(ctx, submissionSelect+` WHERE s.id = $1`, id)
	sub, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewSubmissionNotFoundError(id)
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("get_submission", err)
	}
	return &sub, nil
}

// List returns submissions newest first, optionally filtered by status and a
// case-insensitive search over name, email and ZIP.
func (s *SubmissionStore) List(ctx context.Context, filter models.SubmissionFilter) ([]models.Submission, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where = append(where, fmt.Sprintf("s.status = $%d", len(args)))
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		args = append(args, "%"+term+"%")
		p := len(args)
		where = append(where, fmt.Sprintf(
			"(s.first_name ILIKE $%d OR s.last_name ILIKE $%d OR s.email ILIKE $%d OR s.zipcode ILIKE $%d)", p, p, p, p))
	}

	query := submissionSelect
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY s.timestamp DESC, s.id DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list_submissions", err)
	}
	defer rows.Close()

	out := make([]models.Submission, 0)
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("list_submissions", err)
		}
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list_submissions", err)
	}
	return out, nil
}

// Update applies an admin edit. An empty update is rejected with "No data to update".
func (s *SubmissionStore) Update(ctx context.Context, id int64, upd models.SubmissionUpdate) error {
	if upd.Empty() {
		return apperrors.NewInvalidRequestError("No data to update", "")
	}

	var (
		sets []string
		args = []interface{}{id}
	)
	if upd.Status != nil {
		if !upd.Status.Valid() {
			return apperrors.NewInvalidRequestError("Invalid status", string(*upd.Status))
		}
		args = append(args, string(*upd.Status))
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}
	switch {
	case upd.ClearAdvisor:
		sets = append(sets, "advisor_id = NULL")
	case upd.AdvisorID != nil:
		args = append(args, *upd.AdvisorID)
		sets = append(sets, fmt.Sprintf("advisor_id = $%d", len(args)))
	}

	res, err := s.db.ExecContext(ctx, `UPDATE submissions SET `+strings.Join(sets, ", ")+` WHERE id = $1`, args...)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("update_submission", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NewSubmissionNotFoundError(id)
	}
	return nil
}

func (s *SubmissionStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM submissions WHERE id = $1`, id)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("delete_submission", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NewSubmissionNotFoundError(id)
	}
	return nil
}

// Dashboard collects the admin overview counters and the latest submissions.
func (s *SubmissionStore) Dashboard(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM submissions),
			(SELECT COUNT(*) FROM submissions WHERE status = 'new'),
			(SELECT COUNT(*) FROM advisors)`,
	).Scan(&stats.TotalSubmissions, &stats.NewSubmissions, &stats.TotalAdvisors)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("dashboard_counts", err)
	}

	recent, err := s.List(ctx, models.SubmissionFilter{Limit: recentLimit})
	if err != nil {
		return nil, err
	}
	stats.RecentSubmissions = recent
	return stats, nil
}
