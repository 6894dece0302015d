package routing

import (
	"context"
	"errors"
	"fmt"

	"advisor-routing/internal/models"
)

var (
	ErrEmptyCandidates = errors.New("EMPTY_CANDIDATES")
	ErrUnknownMethod   = errors.New("INVALID_ASSIGNMENT_METHOD")
	ErrCursorUpdate    = errors.New("CURSOR_UPDATE_FAILED")
)

// Assign picks one advisor from matched. It returns nil when matched is empty.
//
// Round-robin advances the cursor modulo len(matched) of this call only. When
// submissions match candidate lists of different sizes the shared cursor is
// reinterpreted against each list, so fairness holds per candidate list and
// not across the whole roster.
func Assign(ctx context.Context, matched []models.Advisor, method models.AssignmentMethod, cursor Cursor) (*models.Advisor, int, error) {
	if len(matched) == 0 {
		return nil, -1, nil
	}

	switch method {
	case models.MethodFirstMatch:
		return &matched[0], 0, nil

	case models.MethodRoundRobin, "":
		if cursor == nil {
			return nil, -1, fmt.Errorf("%w: no cursor configured", ErrCursorUpdate)
		}
		next, err := cursor.Advance(ctx, len(matched))
		if err != nil {
			return nil, -1, fmt.Errorf("%w: %v", ErrCursorUpdate, err)
		}
		if next < 0 || next >= len(matched) {
			return nil, -1, fmt.Errorf("%w: cursor returned %d for %d candidates", ErrCursorUpdate, next, len(matched))
		}
		return &matched[next], next, nil

	default:
		return nil, -1, fmt.Errorf("%w: %s", ErrUnknownMethod, method)
	}
}
