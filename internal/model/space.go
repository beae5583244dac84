package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SpaceStatus string

const (
	SpaceStatusAvailable SpaceStatus = "available"
	SpaceStatusReserved  SpaceStatus = "reserved"
)

func (s SpaceStatus) Valid() bool {
	return s == SpaceStatusAvailable || s == SpaceStatusReserved
}

// spaces
type Space struct {
	ID uuid.UUID `gorm:"type:char(36);primaryKey"`

	Name     string      `gorm:"type:varchar(255);not null"`
	Location string      `gorm:"type:varchar(255);index"`
	Status   SpaceStatus `gorm:"type:varchar(16);not null;index"`

	// Окно использования. При бронировании перезаписывается окном брони,
	// по end_time работает очистка просроченных броней.
	StartTime *time.Time `gorm:"index"`
	EndTime   *time.Time `gorm:"index"`

	UsageNotes string `gorm:"type:text"`
	ImageURL   string `gorm:"type:varchar(1024)"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (s *Space) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = SpaceStatusAvailable
	}
	return nil
}
