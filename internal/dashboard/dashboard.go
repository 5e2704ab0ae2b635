package dashboard

import (
	"github.com/obsidianfr/intranet/internal"
	"github.com/obsidianfr/intranet/internal/document"
	"github.com/obsidianfr/intranet/internal/message"
	"github.com/obsidianfr/intranet/internal/module"
)

type MessagingStats struct {
	Unread       int `json:"unread"`
	SentWeek     int `json:"sent_7d"`
	ReceivedWeek int `json:"received_7d"`
}

type DocumentStats struct {
	CreatedWeek int `json:"created_7d"`
	ViewedWeek  int `json:"viewed_7d"`
	// PendingValidation is only filled for direction and staff viewers.
	PendingValidation *int `json:"pending_validation,omitempty"`
}

type Overview struct {
	User            *internal.SessionUser `json:"user"`
	Modules         []*module.Module      `json:"modules"`
	Messaging       MessagingStats        `json:"messaging"`
	Documents       DocumentStats         `json:"documents"`
	RecentMessages  []*message.Message    `json:"recent_messages"`
	RecentDocuments []*document.Document  `json:"recent_documents"`
}
