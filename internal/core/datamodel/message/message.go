package message

import "time"

const (
	FolderInbox    = "inbox"
	FolderSent     = "sent"
	FolderDrafts   = "drafts"
	FolderArchived = "archived"
	FolderTrash    = "trash"
)

const (
	PriorityInformation = "information"
	PriorityAlerte      = "alerte"
	PriorityCritique    = "critique"
)

// Message is the shared body; folder and read state live on Mailbox rows.
// RecipientID is nullable because a draft may be saved before a recipient
// is chosen.
type Message struct {
	ID          int64     `gorm:"primaryKey"`
	SenderID    int64     `gorm:"column:sender_id;not null;index"`
	RecipientID *int64    `gorm:"column:recipient_id;index"`
	Subject     string    `gorm:"column:subject;not null"`
	Body        string    `gorm:"column:body"`
	Priority    string    `gorm:"column:priority;not null;default:information"`
	CreatedAt   time.Time `gorm:"column:created_at;default:now()"`
}

func (Message) TableName() string {
	return "messages"
}

// Mailbox is one participant's view of one message in one folder. The
// natural key (user_id, message_id, folder) is unique; moving a message
// rewrites the folder column rather than inserting a second row.
type Mailbox struct {
	ID        int64      `gorm:"primaryKey"`
	UserID    int64      `gorm:"column:user_id;not null;uniqueIndex:idx_mailbox_entry"`
	MessageID int64      `gorm:"column:message_id;not null;uniqueIndex:idx_mailbox_entry"`
	Folder    string     `gorm:"column:folder;not null;uniqueIndex:idx_mailbox_entry"`
	IsRead    bool       `gorm:"column:is_read;default:false"`
	Deleted   bool       `gorm:"column:deleted;default:false"`
	CreatedAt time.Time  `gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time  `gorm:"column:updated_at;default:now()"`
	DeletedAt *time.Time `gorm:"column:deleted_at"`
}

func (Mailbox) TableName() string {
	return "mailboxes"
}

// SendRestriction blocks a user from sending, indefinitely or until
// blocked_until passes.
type SendRestriction struct {
	ID           int64      `gorm:"primaryKey"`
	UserID       int64      `gorm:"column:user_id;not null;index"`
	Reason       string     `gorm:"column:reason"`
	BlockedUntil *time.Time `gorm:"column:blocked_until"`
	CreatedBy    int64      `gorm:"column:created_by;not null"`
	CreatedAt    time.Time  `gorm:"column:created_at;default:now()"`
}

func (SendRestriction) TableName() string {
	return "user_message_restrictions"
}
