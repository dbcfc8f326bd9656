package httperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("invalid_action", "bad"), http.StatusBadRequest},
		{Unauthenticated("missing_token", "no"), http.StatusUnauthorized},
		{Forbidden("not_owner", "no"), http.StatusForbidden},
		{NotFoundErr("enrollment_not_found", "no"), http.StatusNotFound},
		{ErrBusiness("illegal_transition"), http.StatusConflict},
		{RateLimited(time.Minute), http.StatusTooManyRequests},
		{Transient("store_unavailable", errors.New("down")), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusOf(tc.err), tc.err.Error())
	}
}

func TestIsBusiness_Wrapped(t *testing.T) {
	err := fmt.Errorf("activate: %w", ErrBusiness("illegal_transition"))
	assert.True(t, IsBusiness(err, "illegal_transition"))
	assert.False(t, IsBusiness(err, "already_enrolled"))
}

func TestFromStore(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(FromStore(gorm.ErrRecordNotFound, "slot_not_found")))
	assert.True(t, IsBusiness(FromStore(gorm.ErrRecordNotFound, "slot_not_found"), "slot_not_found"))
	assert.Equal(t, KindConflict, KindOf(FromStore(gorm.ErrDuplicatedKey, "x")))
	assert.Equal(t, KindTransient, KindOf(FromStore(context.DeadlineExceeded, "x")))
	assert.Equal(t, KindTransient, KindOf(FromStore(&pgconn.PgError{Code: "08006"}, "x")))
	assert.Equal(t, KindUnexpected, KindOf(FromStore(&pgconn.PgError{Code: "22001"}, "x")))
	assert.Nil(t, FromStore(nil, "x"))
}

func TestRespond_RateLimitedSetsRetryAfter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Respond(c, RateLimited(1500*time.Millisecond))

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), `"error_code":"rate_limited"`)
}

func TestRespond_UnexpectedHidesDetails(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Respond(c, errors.New("pq: password authentication failed for user"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "password")
}
