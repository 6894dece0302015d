package store

import (
	"context"
	"database/sql"
	"errors"

	apperrors "advisor-routing/internal/common/errors"
	"advisor-routing/internal/models"
)

// SettingsStore reads and writes the single routing_settings row and the
// notification template overrides. Until the row exists the configured
// defaults are reported.
type SettingsStore struct {
	db       *sql.DB
	defaults models.PolicyConfig
}

func NewSettingsStore(db *sql.DB, defaults models.PolicyConfig) *SettingsStore {
	if defaults.Method == "" {
		defaults.Method = models.MethodRoundRobin
	}
	return &SettingsStore{db: db, defaults: defaults}
}

func (s *SettingsStore) Get(ctx context.Context) (*models.RoutingSettings, error) {
	var (
		method string
		out    models.RoutingSettings
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT assignment_method, default_advisor_id, last_assigned_index
		FROM routing_settings WHERE id = 1`,
	).Scan(&method, &out.DefaultAdvisorID, &out.LastAssignedIndex)
	if errors.Is(err, sql.ErrNoRows) {
		return &models.RoutingSettings{PolicyConfig: s.defaults}, nil
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("get_settings", err)
	}
	out.Method = models.AssignmentMethod(method)
	return &out, nil
}

// Policy returns the routing configuration without the cursor position.
func (s *SettingsStore) Policy(ctx context.Context) (models.PolicyConfig, error) {
	st, err := s.Get(ctx)
	if err != nil {
		return models.PolicyConfig{}, err
	}
	return st.PolicyConfig, nil
}

func (s *SettingsStore) SetAssignmentMethod(ctx context.Context, method models.AssignmentMethod) error {
	if !method.Valid() {
		return apperrors.NewInvalidAssignmentMethodError(string(method))
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO routing_settings (id, assignment_method, default_advisor_id)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET assignment_method = EXCLUDED.assignment_method, updated_at = NOW()`,
		string(method), s.defaults.DefaultAdvisorID,
	)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("set_assignment_method", err)
	}
	return nil
}

// SetDefaultAdvisor stores the fallback advisor id; 0 clears it.
func (s *SettingsStore) SetDefaultAdvisor(ctx context.Context, advisorID int64) error {
	if advisorID < 0 {
		return apperrors.NewInvalidRequestError("Invalid default advisor", "advisor id must not be negative")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO routing_settings (id, assignment_method, default_advisor_id)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET default_advisor_id = EXCLUDED.default_advisor_id, updated_at = NOW()`,
		string(s.defaults.Method), advisorID,
	)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("set_default_advisor", err)
	}
	return nil
}

// Cursor returns the Postgres-backed round-robin cursor stored on the same row.
func (s *SettingsStore) Cursor() *PostgresCursor {
	return &PostgresCursor{db: s.db, defaults: s.defaults}
}

// GetTemplate returns the stored override for kind, or nil when none exists.
func (s *SettingsStore) GetTemplate(ctx context.Context, kind models.TemplateKind) (*models.NotificationTemplate, error) {
	t := models.NotificationTemplate{Kind: kind}
	err := s.db.QueryRowContext(ctx,
		`SELECT subject, body FROM notification_templates WHERE kind = $1`, string(kind),
	).Scan(&t.Subject, &t.Body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("get_template", err)
	}
	return &t, nil
}

func (s *SettingsStore) ListTemplates(ctx context.Context) ([]models.NotificationTemplate, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT kind, subject, body FROM notification_templates ORDER BY kind`)
	if err != nil {
		return nil, apperrors.NewQueryExecutionFailedError("list_templates", err)
	}
	defer rows.Close()

	out := make([]models.NotificationTemplate, 0, 2)
	for rows.Next() {
		var (
			t    models.NotificationTemplate
			kind string
		)
		if err := rows.Scan(&kind, &t.Subject, &t.Body); err != nil {
			return nil, apperrors.NewQueryExecutionFailedError("list_templates", err)
		}
		t.Kind = models.TemplateKind(kind)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SettingsStore) SaveTemplate(ctx context.Context, t models.NotificationTemplate) error {
	if !t.Kind.Valid() {
		return apperrors.NewInvalidRequestError("Invalid template kind", string(t.Kind))
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notification_templates (kind, subject, body)
		VALUES ($1, $2, $3)
		ON CONFLICT (kind) DO UPDATE SET subject = EXCLUDED.subject, body = EXCLUDED.body, updated_at = NOW()`,
		string(t.Kind), t.Subject, t.Body,
	)
	if err != nil {
		return apperrors.NewQueryExecutionFailedError("save_template", err)
	}
	return nil
}
