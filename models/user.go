package models

import "time"

type User struct {
	ID          uint   `gorm:"primaryKey"`
	Email       string `gorm:"size:255;uniqueIndex;not null"`
	Name        string `gorm:"size:255"`
	Password    string `gorm:"not null" json:"-"` // bcrypt hash, never exposed
	IsActive    bool   `gorm:"not null;default:true"`
	IsStaff     bool   `gorm:"not null;default:false"`
	IsSuperuser bool   `gorm:"not null;default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
