package models

import "time"

// Blog is a post. Views and Likes only ever grow; PublishedAt is stamped when Published
// flips to true.
type Blog struct {
	Base
	Title       string      `json:"title"       gorm:"not null"`
	Slug        string      `json:"slug"        gorm:"type:varchar(191);uniqueIndex;not null"`
	Excerpt     string      `json:"excerpt"     gorm:"type:text"`
	Content     string      `json:"content"     gorm:"type:text"`
	CoverImage  string      `json:"coverImage"`
	Tags        StringArray `json:"tags"`
	Author      string      `json:"author"`
	Published   bool        `json:"published"   gorm:"default:false;index"`
	Featured    bool        `json:"featured"    gorm:"default:false"`
	Views       int         `json:"views"       gorm:"default:0"`
	Likes       int         `json:"likes"       gorm:"default:0"`
	ReadTime    int         `json:"readTime"    gorm:"default:0"`
	PublishedAt *time.Time  `json:"publishedAt" gorm:"index"`
}

func (Blog) TableName() string { return "blogs" }
