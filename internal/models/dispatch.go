package models

import (
	"time"
)

// Dispatch kinds
const (
	DispatchKindMail     = "mail"
	DispatchKindFeedback = "feedback"
)

// Dispatch outcomes
const (
	OutcomeSent   = "sent"
	OutcomeFailed = "failed"
)

// Dispatch is one journaled send attempt
type Dispatch struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	DispatchID      string    `gorm:"uniqueIndex;not null;size:36" json:"dispatch_id"`
	Kind            string    `gorm:"not null;size:16;index" json:"kind"`
	Outcome         string    `gorm:"not null;size:16" json:"outcome"`
	ErrorKind       string    `gorm:"size:32" json:"error_kind,omitempty"`
	ErrorMessage    string    `json:"error_message,omitempty"`
	Subject         string    `gorm:"size:255" json:"subject,omitempty"`
	RecipientCount  int       `json:"recipient_count"`
	AttachmentCount int       `json:"attachment_count"`
	CreatedAt       time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName returns the table name for Dispatch
func (Dispatch) TableName() string {
	return "dispatches"
}
