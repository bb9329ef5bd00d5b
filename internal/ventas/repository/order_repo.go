package repository

import (
	"context"
	"time"

	"github.com/bitfantasy/nimo-ventas/internal/ventas/entity"
	"gorm.io/gorm"
)

// OrderRepository 销售订单仓库
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, o *entity.SalesOrder) error {
	return r.db.WithContext(ctx).Create(o).Error
}

// CreateTx 在事务内创建（报价单转订单时与报价单状态更新同事务）
func (r *OrderRepository) CreateTx(tx *gorm.DB, o *entity.SalesOrder) error {
	return tx.Create(o).Error
}

func (r *OrderRepository) GetByID(ctx context.Context, companyID, id string) (*entity.SalesOrder, error) {
	var o entity.SalesOrder
	err := r.db.WithContext(ctx).
		Preload("Client").Preload("Items").
		Where("id = ? AND company_id = ? AND deleted_at IS NULL", id, companyID).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) GetByIDTx(tx *gorm.DB, companyID, id string) (*entity.SalesOrder, error) {
	var o entity.SalesOrder
	err := tx.Where("id = ? AND company_id = ? AND deleted_at IS NULL", id, companyID).
		First(&o).Error
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// TransitionStatus 条件更新状态（乐观并发保护，见QuoteRepository.TransitionStatus）
func (r *OrderRepository) TransitionStatus(tx *gorm.DB, companyID, id, from, to string) (int64, error) {
	result := tx.Model(&entity.SalesOrder{}).
		Where("id = ? AND company_id = ? AND status = ? AND deleted_at IS NULL", id, companyID, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// OrderListParams 销售订单列表查询参数
type OrderListParams struct {
	Status   string
	ClientID string
	Keyword  string
	Page     int
	Size     int
}

func (r *OrderRepository) List(ctx context.Context, companyID string, params OrderListParams) ([]entity.SalesOrder, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.SalesOrder{}).
		Where("company_id = ? AND deleted_at IS NULL", companyID)
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.ClientID != "" {
		query = query.Where("client_id = ?", params.ClientID)
	}
	if params.Keyword != "" {
		query = query.Where("order_code ILIKE ?", "%"+params.Keyword+"%")
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var orders []entity.SalesOrder
	err := query.Preload("Client").Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&orders).Error
	return orders, total, err
}
