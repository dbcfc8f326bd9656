package audit

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/consult-scheduler/internal/logging"
	"github.com/BruksfildServices01/consult-scheduler/internal/models"
	"github.com/BruksfildServices01/consult-scheduler/internal/testutil"
)

type failingSink struct {
	mu    sync.Mutex
	calls int
}

func (s *failingSink) Log(context.Context, Event) error {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return errors.New("activity_logs unavailable")
}

func (s *failingSink) LogError(context.Context, ErrorEvent) error {
	panic("error_logs exploded")
}

func TestDispatcher_PersistsActivityWithDuration(t *testing.T) {
	db := testutil.NewDB(t)
	d := NewDispatcher(New(db), logging.Discard(), 10)

	actor := uuid.New()
	d.Record(Event{
		ActorID:    &actor,
		Action:     "enrollment_activate",
		EntityType: "enrollment",
		EntityID:   "e-1",
		Metadata:   map[string]any{"status": "activated"},
		Duration:   42 * time.Millisecond,
	})
	d.RecordError(ErrorEvent{ActorID: &actor, Function: "process-enrollment", Err: errors.New("boom")})
	d.Close()

	var rows []models.ActivityLog
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "enrollment_activate", rows[0].Action)

	var meta map[string]any
	require.NoError(t, json.Unmarshal([]byte(rows[0].Metadata), &meta))
	assert.Equal(t, "activated", meta["status"])
	assert.EqualValues(t, 42, meta["duration_ms"])

	var errs []models.ErrorLog
	require.NoError(t, db.Find(&errs).Error)
	require.Len(t, errs, 1)
	assert.Equal(t, "boom", errs[0].ErrorMessage)
}

func TestDispatcher_SinkFailuresAreSwallowed(t *testing.T) {
	s := &failingSink{}
	d := newDispatcher(s, logging.Discard(), 10)

	assert.NotPanics(t, func() {
		d.Record(Event{Action: "consultation_booked"})
		d.RecordError(ErrorEvent{Function: "book_consultation"})
		d.Record(Event{Action: "consultation_booked"})
		d.Close()
	})
	assert.Equal(t, 2, s.calls)
}

func TestDispatcher_RecordAfterCloseDoesNotPanic(t *testing.T) {
	d := newDispatcher(&failingSink{}, logging.Discard(), 1)
	d.Close()
	assert.NotPanics(t, func() { d.Record(Event{Action: "late"}) })
	d.Close()
}
