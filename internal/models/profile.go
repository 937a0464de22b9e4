package models

// Profile is the site owner's bio. At most one row exists.
type Profile struct {
	Base
	Name              string `json:"name"              gorm:"not null"`
	Title             string `json:"title"`
	Bio               string `json:"bio"               gorm:"type:text"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	Location          string `json:"location"`
	Avatar            string `json:"avatar"`
	ResumeURL         string `json:"resumeUrl"`
	AvailableForWork  bool   `json:"availableForWork"  gorm:"default:false"`
	YearsOfExperience int    `json:"yearsOfExperience" gorm:"default:0"`
}

func (Profile) TableName() string { return "profiles" }

// SocialLink is a profile link rendered in display order.
type SocialLink struct {
	Base
	Name     string `json:"name"     gorm:"not null"`
	Platform string `json:"platform" gorm:"index"`
	URL      string `json:"url"      gorm:"not null"`
	Icon     string `json:"icon"`
	Order    int    `json:"order"    gorm:"column:sort_order;default:0"`
	Visible  bool   `json:"visible"`
}

func (SocialLink) TableName() string { return "social_links" }
