package models

// Project is a portfolio showcase item.
type Project struct {
	Base
	Title       string      `json:"title"       gorm:"not null"`
	Description string      `json:"description" gorm:"type:text"`
	Image       string      `json:"image"`
	Link        string      `json:"link"`
	Github      string      `json:"github"`
	Tags        StringArray `json:"tags"`
	Featured    bool        `json:"featured"    gorm:"default:false;index"`
	Order       int         `json:"order"       gorm:"column:sort_order;default:0"`
}

func (Project) TableName() string { return "projects" }

// Recommendation is a testimonial from a colleague.
type Recommendation struct {
	Base
	Name     string `json:"name"     gorm:"not null"`
	Position string `json:"position"`
	Company  string `json:"company"`
	Text     string `json:"text"     gorm:"type:text"`
	Image    string `json:"image"`
	LinkedIn string `json:"linkedin" gorm:"column:linkedin"`
	Order    int    `json:"order"    gorm:"column:sort_order;default:0"`
}

func (Recommendation) TableName() string { return "recommendations" }
