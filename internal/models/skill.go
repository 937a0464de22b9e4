package models

// Skill names are unique across the table; Level is a 0-100 proficiency percentage.
type Skill struct {
	Base
	Name     string `json:"name"     gorm:"type:varchar(191);uniqueIndex;not null"`
	Category string `json:"category" gorm:"index"`
	Level    int    `json:"level"    gorm:"default:0"`
	Icon     string `json:"icon"`
	Order    int    `json:"order"    gorm:"column:sort_order;default:0"`
}

func (Skill) TableName() string { return "skills" }
