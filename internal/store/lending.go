package store

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"pride-finance-backend/internal/models"
)

// Patch bodies shared by the three lending tables.

func closePatch(now time.Time) map[string]any {
	return map[string]any{
		"is_closed":    true,
		"closure_date": models.Date{Time: now}.String(),
	}
}

func softDeletePatch(now time.Time) map[string]any {
	return map[string]any{
		"deleted_at": now.UTC().Format(time.RFC3339),
	}
}

// softDeleteRow hides the row from active queries. An absent or
// already-deleted id is a not-found. The patch cannot be verified through
// the usual guarded re-fetch (success makes the row invisible to it), so
// the write is confirmed by absence instead.
func softDeleteRow[T any](ctx context.Context, s *Store, table string, id int64) error {
	q := activeByID(id)
	row, err := firstRow[T](ctx, s, table, q)
	if err != nil {
		return err
	}
	if row == nil {
		return ErrNotFound
	}

	if _, err := s.do(ctx, http.MethodPatch, table, q, softDeletePatch(time.Now())); err != nil {
		return err
	}

	row, err = firstRow[T](ctx, s, table, q)
	if err != nil {
		return err
	}
	if row != nil {
		return fmt.Errorf("%w: soft delete from %s left the row active", ErrWriteVerification, table)
	}
	return nil
}
