package models

import "time"

// Content is a key/value entry for static site copy.
type Content struct {
	Base
	Key   string `json:"key"   gorm:"column:content_key;type:varchar(191);uniqueIndex;not null"`
	Value string `json:"value" gorm:"type:text"`
	Type  string `json:"type"  gorm:"column:content_type;default:text"`
}

func (Content) TableName() string { return "contents" }

// AdminUser owns the write side of the API.
type AdminUser struct {
	Base
	Username     string     `json:"username"    gorm:"type:varchar(191);uniqueIndex;not null"`
	PasswordHash string     `json:"-"           gorm:"not null"`
	LastLoginAt  *time.Time `json:"lastLoginAt"`
}

func (AdminUser) TableName() string { return "admin_users" }
