package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/consult-scheduler/internal/domain/consultation"
	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
	"github.com/BruksfildServices01/consult-scheduler/internal/models"
)

type ConsultationGormRepository struct {
	db *gorm.DB
}

func NewConsultationGormRepository(db *gorm.DB) *ConsultationGormRepository {
	return &ConsultationGormRepository{db: db}
}

// --------------------------------------------------
// Specialist
// --------------------------------------------------

func (r *ConsultationGormRepository) GetSpecialist(
	ctx context.Context,
	specialistID uuid.UUID,
) (*models.Specialist, error) {

	var sp models.Specialist
	if err := r.db.WithContext(ctx).First(&sp, "id = ?", specialistID).Error; err != nil {
		return nil, httperr.FromStore(err, "specialist_not_found")
	}
	return &sp, nil
}

// --------------------------------------------------
// Slots
// --------------------------------------------------

func (r *ConsultationGormRepository) ListOpenSlots(
	ctx context.Context,
	specialistID uuid.UUID,
	date string,
) ([]models.TimeSlot, error) {

	var slots []models.TimeSlot
	if err := r.db.WithContext(ctx).
		Where("specialist_id = ? AND slot_date = ? AND is_booked = ?", specialistID, date, false).
		Order("slot_time ASC").
		Find(&slots).Error; err != nil {
		return nil, httperr.FromStore(err, "slot_not_found")
	}
	return slots, nil
}

// ReserveSlot is the only write path that sets is_booked. The conditional
// update and the insert share one transaction; a zero-row update means
// another caller already holds the slot.
func (r *ConsultationGormRepository) ReserveSlot(
	ctx context.Context,
	c *models.Consultation,
) error {

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.TimeSlot{}).
			Where("id = ? AND specialist_id = ? AND is_booked = ?", c.TimeSlotID, c.SpecialistID, false).
			Update("is_booked", true)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected != 1 {
			var exists int64
			if err := tx.Model(&models.TimeSlot{}).
				Where("id = ? AND specialist_id = ?", c.TimeSlotID, c.SpecialistID).
				Count(&exists).Error; err != nil {
				return err
			}
			if exists == 0 {
				return httperr.NotFoundErr("slot_not_found", "Time slot not found.")
			}
			return httperr.ErrBusiness("slot_not_available")
		}

		return tx.Omit(clause.Associations).Create(c).Error
	})

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return httperr.ErrBusiness("slot_not_available")
	}
	if httperr.IsTransientStore(err) || errors.Is(err, context.Canceled) {
		// the commit may have landed, callers must re-read the slot
		return httperr.Transient("reservation_outcome_unknown", err)
	}
	if err != nil {
		return httperr.FromStore(err, "slot_not_found")
	}
	return nil
}

func (r *ConsultationGormRepository) ReleaseSlot(
	ctx context.Context,
	slotID uuid.UUID,
) error {
	return r.db.WithContext(ctx).
		Model(&models.TimeSlot{}).
		Where("id = ?", slotID).
		Update("is_booked", false).Error
}

// --------------------------------------------------
// Consultation
// --------------------------------------------------

func (r *ConsultationGormRepository) GetConsultation(
	ctx context.Context,
	consultationID uuid.UUID,
) (*models.Consultation, error) {

	var c models.Consultation
	if err := r.db.WithContext(ctx).First(&c, "id = ?", consultationID).Error; err != nil {
		return nil, httperr.FromStore(err, "consultation_not_found")
	}
	return &c, nil
}

func (r *ConsultationGormRepository) UpdateStatus(
	ctx context.Context,
	c *models.Consultation,
	fromStatus string,
) error {

	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now()
	}

	res := r.db.WithContext(ctx).
		Model(&models.Consultation{}).
		Where("id = ? AND status = ?", c.ID, fromStatus).
		Updates(map[string]any{
			"status":     c.Status,
			"updated_at": c.UpdatedAt,
		})
	if res.Error != nil {
		return httperr.FromStore(res.Error, "consultation_not_found")
	}
	if res.RowsAffected != 1 {
		return errConcurrentUpdate()
	}
	return nil
}

func errConcurrentUpdate() error {
	return httperr.Conflict("concurrent_update", "The record was modified by another request, please reload and retry.")
}

// Compile-time check
var _ domain.Repository = (*ConsultationGormRepository)(nil)
