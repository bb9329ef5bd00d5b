package repository

import (
	"context"
	"time"

	"github.com/bitfantasy/nimo-ventas/internal/ventas/entity"
	"gorm.io/gorm"
)

// DeliveryRepository 发货单仓库
type DeliveryRepository struct {
	db *gorm.DB
}

func NewDeliveryRepository(db *gorm.DB) *DeliveryRepository {
	return &DeliveryRepository{db: db}
}

func (r *DeliveryRepository) Create(ctx context.Context, d *entity.Delivery) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DeliveryRepository) GetByID(ctx context.Context, companyID, id string) (*entity.Delivery, error) {
	var d entity.Delivery
	err := r.db.WithContext(ctx).
		Preload("Order").Preload("Client").
		Where("id = ? AND company_id = ? AND deleted_at IS NULL", id, companyID).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DeliveryRepository) GetByIDTx(tx *gorm.DB, companyID, id string) (*entity.Delivery, error) {
	var d entity.Delivery
	err := tx.Where("id = ? AND company_id = ? AND deleted_at IS NULL", id, companyID).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// TransitionStatus 条件更新状态，extra携带随迁移一起落库的字段（司机、时间戳等）
func (r *DeliveryRepository) TransitionStatus(tx *gorm.DB, companyID, id, from, to string, extra map[string]interface{}) (int64, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	for k, v := range extra {
		updates[k] = v
	}
	result := tx.Model(&entity.Delivery{}).
		Where("id = ? AND company_id = ? AND status = ? AND deleted_at IS NULL", id, companyID, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// DeliveryListParams 发货单列表查询参数
type DeliveryListParams struct {
	Status   string
	ClientID string
	OrderID  string
	Keyword  string
	Page     int
	Size     int
}

func (r *DeliveryRepository) List(ctx context.Context, companyID string, params DeliveryListParams) ([]entity.Delivery, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.Delivery{}).
		Where("company_id = ? AND deleted_at IS NULL", companyID)
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.ClientID != "" {
		query = query.Where("client_id = ?", params.ClientID)
	}
	if params.OrderID != "" {
		query = query.Where("order_id = ?", params.OrderID)
	}
	if params.Keyword != "" {
		query = query.Where("delivery_code ILIKE ?", "%"+params.Keyword+"%")
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var deliveries []entity.Delivery
	err := query.Preload("Client").Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&deliveries).Error
	return deliveries, total, err
}
