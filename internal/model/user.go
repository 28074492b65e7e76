package model

import "time"

// User — учётная запись заглушки bugreporter.
type User struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	Login    string `gorm:"uniqueIndex;not null"` // Apple ID
	Password string `gorm:"not null"`             // bcrypt-хеш

	CreatedAt time.Time `gorm:"autoCreateTime"`
}
