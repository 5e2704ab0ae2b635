package message

import (
	"strings"
	"time"

	"github.com/obsidianfr/intranet/internal"
)

type SendMessageDTO struct {
	RecipientID int64  `json:"recipient_id"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	Priority    string `json:"priority"`
}

func (d *SendMessageDTO) Validate() error {
	d.Subject = strings.TrimSpace(d.Subject)
	if d.Priority == "" {
		d.Priority = PriorityInformation
	}

	if d.RecipientID == 0 {
		return internal.NewValidationFieldError("recipient_id", "recipient is required", internal.ErrCodeValidationFailed)
	}
	if d.Subject == "" {
		return internal.NewValidationFieldError("subject", "subject is required", internal.ErrCodeValidationFailed)
	}
	if !IsValidPriority(d.Priority) {
		return internal.NewValidationFieldError("priority", "priority must be information, alerte or critique", internal.ErrCodeInvalidPriority)
	}
	return nil
}

// DraftDTO has no required fields besides the subject: a draft may be
// saved before a recipient is chosen.
type DraftDTO struct {
	RecipientID *int64 `json:"recipient_id,omitempty"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	Priority    string `json:"priority"`
}

func (d *DraftDTO) Validate() error {
	d.Subject = strings.TrimSpace(d.Subject)
	if d.Priority == "" {
		d.Priority = PriorityInformation
	}
	if d.Subject == "" {
		return internal.NewValidationFieldError("subject", "subject is required", internal.ErrCodeValidationFailed)
	}
	if !IsValidPriority(d.Priority) {
		return internal.NewValidationFieldError("priority", "priority must be information, alerte or critique", internal.ErrCodeInvalidPriority)
	}
	return nil
}

type MoveDTO struct {
	Folder string `json:"folder"`
}

func (d *MoveDTO) Validate() error {
	if !IsValidFolder(d.Folder) {
		return internal.NewValidationFieldError("folder", "unknown folder", internal.ErrCodeInvalidFolder)
	}
	return nil
}

type CreateRestrictionDTO struct {
	UserID int64  `json:"user_id"`
	Reason string `json:"reason"`
	Hours  *int   `json:"hours,omitempty"`
}

func (d *CreateRestrictionDTO) Validate() error {
	if d.UserID == 0 {
		return internal.NewValidationFieldError("user_id", "user is required", internal.ErrCodeValidationFailed)
	}
	if d.Hours != nil && *d.Hours <= 0 {
		return internal.NewValidationFieldError("hours", "hours must be positive", internal.ErrCodeValidationFailed)
	}
	return nil
}

// BlockedUntil converts the optional hour count to an absolute deadline.
// Nil means blocked indefinitely.
func (d *CreateRestrictionDTO) BlockedUntil(now time.Time) *time.Time {
	if d.Hours == nil {
		return nil
	}
	t := now.Add(time.Duration(*d.Hours) * time.Hour)
	return &t
}

type FolderListResponse struct {
	Messages []*Message `json:"messages"`
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	PerPage  int        `json:"per_page"`
}
