package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
	"github.com/BruksfildServices01/consult-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/consult-scheduler/internal/models"
	"github.com/BruksfildServices01/consult-scheduler/internal/timezone"
)

// ======================================================
// HANDLER
// ======================================================

type AuditLogsHandler struct {
	db *gorm.DB
}

func NewAuditLogsHandler(db *gorm.DB) *AuditLogsHandler {
	return &AuditLogsHandler{db: db}
}

type pageParams struct {
	page   int
	limit  int
	offset int
}

func readPage(c *gin.Context) pageParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	return pageParams{page: page, limit: limit, offset: (page - 1) * limit}
}

// dateRange applies the optional from/to day filters on created_at.
func dateRange(c *gin.Context, q *gorm.DB) *gorm.DB {
	if fromStr := c.Query("from"); fromStr != "" {
		if from, err := time.Parse(timezone.DateLayout, fromStr); err == nil {
			q = q.Where("created_at >= ?", from)
		}
	}
	if toStr := c.Query("to"); toStr != "" {
		if to, err := time.Parse(timezone.DateLayout, toStr); err == nil {
			q = q.Where("created_at < ?", to.Add(24*time.Hour))
		}
	}
	return q
}

func userFilter(c *gin.Context, q *gorm.DB) *gorm.DB {
	if raw := c.Query("user_id"); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			q = q.Where("user_id = ?", id)
		}
	}
	return q
}

// ======================================================
// GET /admin/activity-logs
// ======================================================

func (h *AuditLogsHandler) ListActivity(c *gin.Context) {
	p := readPage(c)

	q := h.db.WithContext(c.Request.Context()).Model(&models.ActivityLog{})

	if action := c.Query("action"); action != "" {
		q = q.Where("action = ?", action)
	}
	if entity := c.Query("entity_type"); entity != "" {
		q = q.Where("entity_type = ?", entity)
	}
	q = userFilter(c, q)
	q = dateRange(c, q)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Internal(c, "audit_count_failed", "Failed to count activity logs.")
		return
	}

	var logs []models.ActivityLog
	if err := q.
		Order("created_at DESC").
		Limit(p.limit).
		Offset(p.offset).
		Find(&logs).Error; err != nil {

		httperr.Internal(c, "audit_list_failed", "Failed to list activity logs.")
		return
	}

	httpresp.Page(c, logs, p.page, p.limit, total)
}

// ======================================================
// GET /admin/error-logs
// ======================================================

func (h *AuditLogsHandler) ListErrors(c *gin.Context) {
	p := readPage(c)

	q := h.db.WithContext(c.Request.Context()).Model(&models.ErrorLog{})

	if fn := c.Query("function_name"); fn != "" {
		q = q.Where("function_name = ?", fn)
	}
	q = userFilter(c, q)
	q = dateRange(c, q)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		httperr.Internal(c, "error_log_count_failed", "Failed to count error logs.")
		return
	}

	var logs []models.ErrorLog
	if err := q.
		Order("created_at DESC").
		Limit(p.limit).
		Offset(p.offset).
		Find(&logs).Error; err != nil {

		httperr.Internal(c, "error_log_list_failed", "Failed to list error logs.")
		return
	}

	httpresp.Page(c, logs, p.page, p.limit, total)
}
