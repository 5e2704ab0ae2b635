package audit

import "time"

// Log rows are append-only; nothing in the API updates or deletes them.
type Log struct {
	ID        int64     `gorm:"primaryKey"`
	Action    string    `gorm:"column:action;not null;index"`
	UserID    *int64    `gorm:"column:user_id;index"`
	Details   string    `gorm:"column:details"`
	IPAddress string    `gorm:"column:ip_address"`
	CreatedAt time.Time `gorm:"column:created_at;default:now();index"`
}

func (Log) TableName() string {
	return "logs"
}
