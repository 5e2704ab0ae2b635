package message

import (
	"time"

	msgDatamodel "github.com/obsidianfr/intranet/internal/core/datamodel/message"
)

const (
	FolderInbox    = msgDatamodel.FolderInbox
	FolderSent     = msgDatamodel.FolderSent
	FolderDrafts   = msgDatamodel.FolderDrafts
	FolderArchived = msgDatamodel.FolderArchived
	FolderTrash    = msgDatamodel.FolderTrash
)

const (
	PriorityInformation = msgDatamodel.PriorityInformation
	PriorityAlerte      = msgDatamodel.PriorityAlerte
	PriorityCritique    = msgDatamodel.PriorityCritique
)

func AllFolders() []string {
	return []string{FolderInbox, FolderSent, FolderDrafts, FolderArchived, FolderTrash}
}

func AllPriorities() []string {
	return []string{PriorityInformation, PriorityAlerte, PriorityCritique}
}

func IsValidFolder(folder string) bool {
	for _, f := range AllFolders() {
		if f == folder {
			return true
		}
	}
	return false
}

func IsValidPriority(priority string) bool {
	for _, p := range AllPriorities() {
		if p == priority {
			return true
		}
	}
	return false
}

// Message is one participant's view: the shared body joined with their
// mailbox row.
type Message struct {
	ID          int64     `json:"id"`
	SenderID    int64     `json:"sender_id"`
	RecipientID *int64    `json:"recipient_id,omitempty"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	Priority    string    `json:"priority"`
	Folder      string    `json:"folder"`
	IsRead      bool      `json:"is_read"`
	CreatedAt   time.Time `json:"created_at"`
}

type Restriction struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	Reason       string     `json:"reason"`
	BlockedUntil *time.Time `json:"blocked_until,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func FromDataModel(msg *msgDatamodel.Message, box *msgDatamodel.Mailbox) *Message {
	return &Message{
		ID:          msg.ID,
		SenderID:    msg.SenderID,
		RecipientID: msg.RecipientID,
		Subject:     msg.Subject,
		Body:        msg.Body,
		Priority:    msg.Priority,
		Folder:      box.Folder,
		IsRead:      box.IsRead,
		CreatedAt:   msg.CreatedAt,
	}
}

func RestrictionFromDataModel(row *msgDatamodel.SendRestriction) *Restriction {
	return &Restriction{
		ID:           row.ID,
		UserID:       row.UserID,
		Reason:       row.Reason,
		BlockedUntil: row.BlockedUntil,
		CreatedAt:    row.CreatedAt,
	}
}
