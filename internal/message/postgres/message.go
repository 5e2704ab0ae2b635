package postgres

import (
	"time"

	"gorm.io/gorm"

	msgDatamodel "github.com/obsidianfr/intranet/internal/core/datamodel/message"
	userDatamodel "github.com/obsidianfr/intranet/internal/core/datamodel/user"
	"github.com/obsidianfr/intranet/internal/message"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) message.Repository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) CreateMessage(msg *msgDatamodel.Message, boxes []*msgDatamodel.Mailbox) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		for _, box := range boxes {
			box.MessageID = msg.ID
			if err := tx.Create(box).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *MessageRepository) GetEntry(userID, messageID int64) (*message.Entry, error) {
	var box msgDatamodel.Mailbox
	err := r.db.Where("user_id = ? AND message_id = ? AND deleted = ?", userID, messageID, false).
		First(&box).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	var msg msgDatamodel.Message
	if err := r.db.Where("id = ?", messageID).First(&msg).Error; err != nil {
		return nil, err
	}
	return &message.Entry{Message: &msg, Mailbox: &box}, nil
}

func (r *MessageRepository) ListFolder(userID int64, folder string, offset, limit int) ([]*message.Entry, int, error) {
	base := r.db.Model(&msgDatamodel.Mailbox{}).
		Where("user_id = ? AND folder = ? AND deleted = ?", userID, folder, false)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var boxes []*msgDatamodel.Mailbox
	err := r.db.Where("user_id = ? AND folder = ? AND deleted = ?", userID, folder, false).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&boxes).Error
	if err != nil {
		return nil, 0, err
	}

	entries, err := r.attachMessages(boxes)
	if err != nil {
		return nil, 0, err
	}
	return entries, int(total), nil
}

func (r *MessageRepository) FolderCounts(userID int64) (map[string]int, error) {
	type folderCount struct {
		Folder string
		Count  int
	}
	var rows []folderCount
	err := r.db.Model(&msgDatamodel.Mailbox{}).
		Select("folder, COUNT(*) as count").
		Where("user_id = ? AND deleted = ?", userID, false).
		Group("folder").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Folder] = row.Count
	}
	return counts, nil
}

func (r *MessageRepository) UnreadCount(userID int64) (int, error) {
	var count int64
	err := r.db.Model(&msgDatamodel.Mailbox{}).
		Where("user_id = ? AND folder = ? AND is_read = ? AND deleted = ?", userID, msgDatamodel.FolderInbox, false, false).
		Count(&count).Error
	return int(count), err
}

func (r *MessageRepository) SetRead(userID, messageID int64, read bool) error {
	return r.db.Model(&msgDatamodel.Mailbox{}).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Update("is_read", read).Error
}

func (r *MessageRepository) MoveFolder(userID, messageID int64, folder string) error {
	return r.db.Model(&msgDatamodel.Mailbox{}).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Update("folder", folder).Error
}

func (r *MessageRepository) SoftDeleteEntry(userID, messageID int64) error {
	return r.db.Model(&msgDatamodel.Mailbox{}).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Updates(map[string]interface{}{
			"deleted":    true,
			"deleted_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}).Error
}

func (r *MessageRepository) Search(userID int64, query string, limit int) ([]*message.Entry, error) {
	pattern := "%" + query + "%"

	var boxes []*msgDatamodel.Mailbox
	err := r.db.
		Select("mailboxes.*").
		Joins("JOIN messages ON messages.id = mailboxes.message_id").
		Where("mailboxes.user_id = ? AND mailboxes.deleted = ?", userID, false).
		Where("messages.subject LIKE ? OR messages.body LIKE ?", pattern, pattern).
		Order("messages.created_at DESC").
		Limit(limit).
		Find(&boxes).Error
	if err != nil {
		return nil, err
	}
	return r.attachMessages(boxes)
}

func (r *MessageRepository) CountSentToday(userID int64) (int, error) {
	startOfDay := message.StartOfDay(time.Now())
	var count int64
	err := r.db.Model(&msgDatamodel.Message{}).
		Where("sender_id = ? AND recipient_id IS NOT NULL AND created_at >= ?", userID, startOfDay).
		Count(&count).Error
	return int(count), err
}

func (r *MessageRepository) ActiveRestriction(userID int64, now time.Time) (*msgDatamodel.SendRestriction, error) {
	var row msgDatamodel.SendRestriction
	err := r.db.Where("user_id = ? AND (blocked_until IS NULL OR blocked_until > ?)", userID, now).
		First(&row).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *MessageRepository) ListRestrictions(userID int64) ([]*msgDatamodel.SendRestriction, error) {
	var rows []*msgDatamodel.SendRestriction
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&rows).Error
	return rows, err
}

func (r *MessageRepository) CreateRestriction(row *msgDatamodel.SendRestriction) error {
	return r.db.Create(row).Error
}

func (r *MessageRepository) DeleteRestriction(restrictionID int64) error {
	return r.db.Where("id = ?", restrictionID).Delete(&msgDatamodel.SendRestriction{}).Error
}

func (r *MessageRepository) UserExists(userID int64) (bool, error) {
	var count int64
	err := r.db.Model(&userDatamodel.User{}).
		Where("id = ? AND suspended = ?", userID, false).
		Count(&count).Error
	return count > 0, err
}

func (r *MessageRepository) SaveDraft(msg *msgDatamodel.Message, box *msgDatamodel.Mailbox) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		box.MessageID = msg.ID
		return tx.Create(box).Error
	})
}

func (r *MessageRepository) UpdateDraft(userID int64, msg *msgDatamodel.Message) error {
	return r.db.Model(&msgDatamodel.Message{}).
		Where("id = ? AND sender_id = ?", msg.ID, userID).
		Updates(map[string]interface{}{
			"subject":      msg.Subject,
			"body":         msg.Body,
			"priority":     msg.Priority,
			"recipient_id": msg.RecipientID,
		}).Error
}

func (r *MessageRepository) attachMessages(boxes []*msgDatamodel.Mailbox) ([]*message.Entry, error) {
	if len(boxes) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(boxes))
	for _, box := range boxes {
		ids = append(ids, box.MessageID)
	}

	var msgs []*msgDatamodel.Message
	if err := r.db.Where("id IN ?", ids).Find(&msgs).Error; err != nil {
		return nil, err
	}
	byID := make(map[int64]*msgDatamodel.Message, len(msgs))
	for _, m := range msgs {
		byID[m.ID] = m
	}

	entries := make([]*message.Entry, 0, len(boxes))
	for _, box := range boxes {
		if m, ok := byID[box.MessageID]; ok {
			entries = append(entries, &message.Entry{Message: m, Mailbox: box})
		}
	}
	return entries, nil
}
