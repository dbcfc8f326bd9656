package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type Action string

const (
	ActionEnroll             Action = "enrollment_enroll"
	ActionActivate           Action = "enrollment_activate"
	ActionCancel             Action = "enrollment_cancel"
	ActionBook               Action = "consultation_book"
	ActionConfirm            Action = "consultation_confirm"
	ActionComplete           Action = "consultation_complete"
	ActionConsultationCancel Action = "consultation_cancel"
)

type Rule struct {
	Max    int
	Window time.Duration
}

// DefaultRules: cancellations are stricter than reads-heavy actions.
var DefaultRules = map[Action]Rule{
	ActionEnroll:             {Max: 5, Window: time.Minute},
	ActionActivate:           {Max: 10, Window: time.Minute},
	ActionCancel:             {Max: 3, Window: time.Minute},
	ActionBook:               {Max: 5, Window: time.Minute},
	ActionConfirm:            {Max: 10, Window: time.Minute},
	ActionComplete:           {Max: 10, Window: time.Minute},
	ActionConsultationCancel: {Max: 3, Window: time.Minute},
}

var fallbackRule = Rule{Max: 10, Window: time.Minute}

// Counter atomically increments the attempt count of one fixed window and
// returns the count after the increment.
type Counter interface {
	Increment(ctx context.Context, userID uuid.UUID, action Action, windowStart time.Time, window time.Duration) (int, error)
}

type Decision struct {
	Allowed    bool
	Count      int
	Limit      int
	RetryAfter time.Duration
}

type DenialObserver func(userID uuid.UUID, action Action, d Decision)

type Limiter struct {
	counter Counter
	rules   map[Action]Rule
	log     *slog.Logger
	now     func() time.Time
	onDeny  DenialObserver
}

type Option func(*Limiter)

func WithRules(rules map[Action]Rule) Option {
	return func(l *Limiter) { l.rules = rules }
}

func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// OnDeny is called for every denial, after the decision is made.
func OnDeny(fn DenialObserver) Option {
	return func(l *Limiter) { l.onDeny = fn }
}

func New(counter Counter, log *slog.Logger, opts ...Option) *Limiter {
	if log == nil {
		log = slog.Default()
	}
	l := &Limiter{
		counter: counter,
		rules:   DefaultRules,
		log:     log,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Limiter) Rule(action Action) Rule {
	if r, ok := l.rules[action]; ok && r.Max > 0 && r.Window > 0 {
		return r
	}
	return fallbackRule
}

// CheckAndIncrement counts the attempt and decides whether it may proceed.
// Counter failures allow the request.
func (l *Limiter) CheckAndIncrement(ctx context.Context, userID uuid.UUID, action Action) Decision {
	rule := l.Rule(action)
	now := l.now().UTC()
	windowStart := now.Truncate(rule.Window)

	count, err := l.counter.Increment(ctx, userID, action, windowStart, rule.Window)
	if err != nil {
		l.log.Warn("rate limit check failed, allowing request",
			"user_id", userID.String(), "action", string(action), "error", err)
		return Decision{Allowed: true, Limit: rule.Max}
	}

	if count <= rule.Max {
		return Decision{Allowed: true, Count: count, Limit: rule.Max}
	}

	d := Decision{
		Allowed:    false,
		Count:      count,
		Limit:      rule.Max,
		RetryAfter: windowStart.Add(rule.Window).Sub(now),
	}

	l.log.Warn("rate limit exceeded",
		"user_id", userID.String(), "action", string(action), "max_requests", rule.Max)

	if l.onDeny != nil {
		l.onDeny(userID, action, d)
	}
	return d
}
