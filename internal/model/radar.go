package model

import "time"

// Radar — серверная модель радара. ID — номер радара, выдаётся не базой.
type Radar struct {
	ID     int64 `gorm:"primaryKey;autoIncrement:false"`
	UserID int64 `gorm:"not null;index"` // ссылка на users.id

	// Связи
	User *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`

	Section           string `gorm:"not null;index"` // Open, Closed, Archive
	State             string `gorm:"not null"`
	Title             string `gorm:"not null"`
	Component         string
	RequiresAttention bool `gorm:"not null;default:false"`
	Hidden            bool `gorm:"not null;default:false"`
	Description       string
	OriginatedAt      time.Time

	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
