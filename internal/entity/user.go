package entity

import "time"

const DefaultBalance int64 = 1000

type User struct {
	UserID   int64  `gorm:"primaryKey;autoIncrement:false"`
	Balance  int64  `gorm:"not null"`
	Language string `gorm:"size:10;not null;default:en"`

	Completions []UserTask `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE" json:"-"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
