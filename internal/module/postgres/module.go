package postgres

import (
	"errors"

	"gorm.io/gorm"

	moduleDatamodel "github.com/obsidianfr/intranet/internal/core/datamodel/module"
)

type ModuleRepository struct {
	db *gorm.DB
}

func NewModuleRepository(db *gorm.DB) *ModuleRepository {
	return &ModuleRepository{db: db}
}

func (r *ModuleRepository) GetAll() ([]*moduleDatamodel.Module, error) {
	var rows []*moduleDatamodel.Module
	if err := r.db.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ModuleRepository) GetByName(name string) (*moduleDatamodel.Module, error) {
	var row moduleDatamodel.Module
	err := r.db.Where("name = ?", name).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *ModuleRepository) SetEnabled(name string, enabled bool) error {
	return r.db.Model(&moduleDatamodel.Module{}).
		Where("name = ?", name).
		Update("enabled", enabled).Error
}

func (r *ModuleRepository) SetConfig(name string, config string) error {
	return r.db.Model(&moduleDatamodel.Module{}).
		Where("name = ?", name).
		Update("config", config).Error
}
