package repository

import (
	"context"
	"time"

	"github.com/bitfantasy/nimo-ventas/internal/ventas/entity"
	"gorm.io/gorm"
)

// QuoteRepository 报价单仓库
type QuoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) *QuoteRepository {
	return &QuoteRepository{db: db}
}

func (r *QuoteRepository) Create(ctx context.Context, q *entity.Quote) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *QuoteRepository) GetByID(ctx context.Context, companyID, id string) (*entity.Quote, error) {
	var q entity.Quote
	err := r.db.WithContext(ctx).
		Preload("Client").Preload("Items").
		Where("id = ? AND company_id = ? AND deleted_at IS NULL", id, companyID).
		First(&q).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// GetByIDTx 在事务内读取（迁移执行时复核当前状态用）
func (r *QuoteRepository) GetByIDTx(tx *gorm.DB, companyID, id string) (*entity.Quote, error) {
	var q entity.Quote
	err := tx.Preload("Items").
		Where("id = ? AND company_id = ? AND deleted_at IS NULL", id, companyID).
		First(&q).Error
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// TransitionStatus 条件更新状态，WHERE带上from状态实现乐观并发保护
// 返回受影响行数，0表示状态已被并发请求改走
func (r *QuoteRepository) TransitionStatus(tx *gorm.DB, companyID, id, from, to string) (int64, error) {
	result := tx.Model(&entity.Quote{}).
		Where("id = ? AND company_id = ? AND status = ? AND deleted_at IS NULL", id, companyID, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// QuoteListParams 报价单列表查询参数
type QuoteListParams struct {
	Status   string
	ClientID string
	SellerID string
	Keyword  string
	Page     int
	Size     int
}

func (r *QuoteRepository) List(ctx context.Context, companyID string, params QuoteListParams) ([]entity.Quote, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Quote{}).
		Where("company_id = ? AND deleted_at IS NULL", companyID)
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.ClientID != "" {
		query = query.Where("client_id = ?", params.ClientID)
	}
	if params.SellerID != "" {
		query = query.Where("seller_id = ?", params.SellerID)
	}
	if params.Keyword != "" {
		query = query.Where("quote_code ILIKE ?", "%"+params.Keyword+"%")
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var quotes []entity.Quote
	err := query.Preload("Client").Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&quotes).Error
	return quotes, total, err
}

// FindStale 查询有效期已过且仍可作废的报价单（定时任务用）
func (r *QuoteRepository) FindStale(ctx context.Context, now time.Time) ([]entity.Quote, error) {
	var quotes []entity.Quote
	err := r.db.WithContext(ctx).
		Where("valid_until IS NOT NULL AND valid_until < ? AND status IN ? AND deleted_at IS NULL",
			now, []string{entity.QuoteStatusDraft, entity.QuoteStatusApproved}).
		Find(&quotes).Error
	return quotes, err
}
