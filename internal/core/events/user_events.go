package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeUserCreated       = "user.created"
	EventTypeUserDeleted       = "user.deleted"
	EventTypeUserPasswordReset = "user.password_reset"
)

// UserCreatedEvent is published after HR provisions an account. The temporary
// password rides on the event so the notifier can relay it; it is never
// persisted in clear anywhere else.
type UserCreatedEvent struct {
	BaseEvent
	UserID            int64  `json:"user_id"`
	Username          string `json:"username"`
	Role              string `json:"role"`
	Department        string `json:"department"`
	TemporaryPassword string `json:"-"`
}

func NewUserCreatedEvent(userID int64, username, role, department, temporaryPassword string) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserCreated,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id":    userID,
				"username":   username,
				"role":       role,
				"department": department,
			},
		},
		UserID:            userID,
		Username:          username,
		Role:              role,
		Department:        department,
		TemporaryPassword: temporaryPassword,
	}
}

type UserDeletedEvent struct {
	BaseEvent
	Username   string `json:"username"`
	Role       string `json:"role"`
	Department string `json:"department"`
	DeletedBy  string `json:"deleted_by"`
}

func NewUserDeletedEvent(username, role, department, deletedBy string) *UserDeletedEvent {
	return &UserDeletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserDeleted,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"username":   username,
				"role":       role,
				"department": department,
				"deleted_by": deletedBy,
			},
		},
		Username:   username,
		Role:       role,
		Department: department,
		DeletedBy:  deletedBy,
	}
}

type UserPasswordResetEvent struct {
	BaseEvent
	Username          string `json:"username"`
	TemporaryPassword string `json:"-"`
}

func NewUserPasswordResetEvent(username, temporaryPassword string) *UserPasswordResetEvent {
	return &UserPasswordResetEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserPasswordReset,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"username": username,
			},
		},
		Username:          username,
		TemporaryPassword: temporaryPassword,
	}
}
