package models

import "time"

// Experience is a work history entry. EndDate is nil while Current is true.
type Experience struct {
	Base
	Company      string      `json:"company"      gorm:"not null"`
	Position     string      `json:"position"     gorm:"not null"`
	Description  string      `json:"description"  gorm:"type:text"`
	StartDate    time.Time   `json:"startDate"`
	EndDate      *time.Time  `json:"endDate"`
	Current      bool        `json:"current"      gorm:"column:is_current;default:false"`
	Location     string      `json:"location"`
	Logo         string      `json:"logo"`
	Technologies StringArray `json:"technologies"`
	Order        int         `json:"order"        gorm:"column:sort_order;default:0"`
}

func (Experience) TableName() string { return "experiences" }

// Education follows the same Current/EndDate rule as Experience.
type Education struct {
	Base
	Institution string     `json:"institution" gorm:"not null"`
	Degree      string     `json:"degree"`
	Field       string     `json:"field"`
	Description string     `json:"description" gorm:"type:text"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Current     bool       `json:"current"     gorm:"column:is_current;default:false"`
	Grade       string     `json:"grade"`
	Order       int        `json:"order"       gorm:"column:sort_order;default:0"`
}

func (Education) TableName() string { return "education" }
