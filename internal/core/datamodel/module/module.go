package module

import "time"

type Module struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	Description string    `gorm:"column:description"`
	Enabled     bool      `gorm:"column:enabled;default:true"`
	Config      string    `gorm:"column:config;default:'{}'"`
	UpdatedAt   time.Time `gorm:"column:updated_at;default:now()"`
}

func (Module) TableName() string {
	return "modules"
}
