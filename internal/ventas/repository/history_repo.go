package repository

import (
	"context"

	"github.com/bitfantasy/nimo-ventas/internal/ventas/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HistoryRepository 状态变更审计仓库
type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Record 写入一条审计记录
// 必须传入调用方所在事务的tx，写入失败时错误向上传播、整个迁移回滚
func (r *HistoryRepository) Record(tx *gorm.DB, h *entity.StatusHistory) error {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	return tx.Create(h).Error
}

// FindByEntity 查询某单据的状态时间线
func (r *HistoryRepository) FindByEntity(ctx context.Context, companyID, entityType, entityID string, page, pageSize int) ([]entity.StatusHistory, int64, error) {
	var items []entity.StatusHistory
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.StatusHistory{}).
		Where("company_id = ? AND entity_type = ? AND entity_id = ?", companyID, entityType, entityID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}
