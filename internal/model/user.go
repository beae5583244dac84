package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxUsernameLen совпадает с шириной колонки username.
const MaxUsernameLen = 64

// users
type User struct {
	ID uuid.UUID `gorm:"type:char(36);primaryKey"`

	Username     string `gorm:"type:varchar(64);not null;uniqueIndex"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	Role         Role   `gorm:"type:varchar(16);not null"`

	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// BeforeCreate выдаёт id на стороне приложения, чтобы схема не зависела
// от gen_random_uuid() и одинаково мигрировала на всех драйверах.
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}
