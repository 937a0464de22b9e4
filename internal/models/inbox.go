package models

import "time"

// NewsletterSubscriber rows are never duplicated per email; unsubscribing flips Subscribed.
type NewsletterSubscriber struct {
	Base
	Email       string     `json:"email"       gorm:"type:varchar(191);uniqueIndex;not null"`
	Name        string     `json:"name"`
	Subscribed  bool       `json:"subscribed"  gorm:"index"`
	ConfirmedAt *time.Time `json:"confirmedAt"`
}

func (NewsletterSubscriber) TableName() string { return "newsletter_subscribers" }

const (
	ContactPending  = "pending"
	ContactReplied  = "replied"
	ContactArchived = "archived"
)

// ContactRequest is a message left through the contact form.
type ContactRequest struct {
	Base
	Name      string     `json:"name"      gorm:"not null"`
	Email     string     `json:"email"     gorm:"not null"`
	Subject   string     `json:"subject"`
	Message   string     `json:"message"   gorm:"type:text"`
	Type      string     `json:"type"      gorm:"index"`
	Status    string     `json:"status"    gorm:"index;default:pending"`
	Replied   bool       `json:"replied"   gorm:"default:false"`
	RepliedAt *time.Time `json:"repliedAt"`
}

func (ContactRequest) TableName() string { return "contact_requests" }
