package repository

import (
	"context"

	"github.com/bitfantasy/nimo-ventas/internal/ventas/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClientRepository 客户仓库
type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, c *entity.Client) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ClientRepository) GetByID(ctx context.Context, companyID, id string) (*entity.Client, error) {
	var c entity.Client
	err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ? AND deleted_at IS NULL", id, companyID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ClientRepository) Update(ctx context.Context, c *entity.Client) error {
	return r.db.WithContext(ctx).Save(c).Error
}

// ClientListParams 客户列表查询参数
type ClientListParams struct {
	Status  string
	Blocked *bool
	Keyword string
	Page    int
	Size    int
}

func (r *ClientRepository) List(ctx context.Context, companyID string, params ClientListParams) ([]entity.Client, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Client{}).
		Where("company_id = ? AND deleted_at IS NULL", companyID)
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.Blocked != nil {
		query = query.Where("blocked = ?", *params.Blocked)
	}
	if params.Keyword != "" {
		kw := "%" + params.Keyword + "%"
		query = query.Where("name ILIKE ? OR client_code ILIKE ?", kw, kw)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var clients []entity.Client
	err := query.Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&clients).Error
	return clients, total, err
}

// CreateBlockHistory 写入封锁历史（在调用方事务内）
func (r *ClientRepository) CreateBlockHistory(tx *gorm.DB, h *entity.ClientBlockHistory) error {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	return tx.Create(h).Error
}

// ListBlockHistory 查询客户封锁历史
func (r *ClientRepository) ListBlockHistory(ctx context.Context, companyID, clientID string, page, pageSize int) ([]entity.ClientBlockHistory, int64, error) {
	var items []entity.ClientBlockHistory
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.ClientBlockHistory{}).
		Where("company_id = ? AND client_id = ?", companyID, clientID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&items).Error
	return items, total, err
}
