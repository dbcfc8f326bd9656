package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/consult-scheduler/internal/models"
)

type IdentityGormRepository struct {
	db *gorm.DB
}

func NewIdentityGormRepository(db *gorm.DB) *IdentityGormRepository {
	return &IdentityGormRepository{db: db}
}

// GetUserRole returns the stored role, student when none is recorded.
func (r *IdentityGormRepository) GetUserRole(ctx context.Context, userID uuid.UUID) (string, error) {
	var ur models.UserRole
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Take(&ur).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RoleStudent, nil
	}
	if err != nil {
		return "", err
	}
	return ur.Role, nil
}
