package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ensureID assigns a random id before insert so rows get ids on every dialect.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (s *Specialist) BeforeCreate(tx *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

func (s *TimeSlot) BeforeCreate(tx *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}

func (c *Consultation) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	ensureID(&l.ID)
	return nil
}

func (e *Enrollment) BeforeCreate(tx *gorm.DB) error {
	ensureID(&e.ID)
	return nil
}

func (p *CourseProgress) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
