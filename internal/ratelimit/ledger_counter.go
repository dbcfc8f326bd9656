package ratelimit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/consult-scheduler/internal/models"
)

// LedgerCounter keeps counters in the rate_limits table.
type LedgerCounter struct {
	db *gorm.DB
}

func NewLedgerCounter(db *gorm.DB) *LedgerCounter {
	return &LedgerCounter{db: db}
}

func (c *LedgerCounter) Increment(
	ctx context.Context,
	userID uuid.UUID,
	action Action,
	windowStart time.Time,
	_ time.Duration,
) (int, error) {

	var count int
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// single-statement increment, the unique key serializes concurrent callers
		if err := tx.Exec(`
			INSERT INTO rate_limits (user_id, action_type, window_start, request_count, created_at)
			VALUES (?, ?, ?, 1, ?)
			ON CONFLICT (user_id, action_type, window_start)
			DO UPDATE SET request_count = rate_limits.request_count + 1
		`, userID, string(action), windowStart, time.Now().UTC()).Error; err != nil {
			return err
		}

		var row models.RateLimit
		if err := tx.
			Select("request_count").
			Where("user_id = ? AND action_type = ? AND window_start = ?", userID, string(action), windowStart).
			Take(&row).Error; err != nil {
			return err
		}
		count = row.RequestCount
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Purge removes windows that ended before the cutoff.
func (c *LedgerCounter) Purge(ctx context.Context, before time.Time) (int64, error) {
	res := c.db.WithContext(ctx).
		Where("window_start < ?", before).
		Delete(&models.RateLimit{})
	return res.RowsAffected, res.Error
}

var _ Counter = (*LedgerCounter)(nil)
