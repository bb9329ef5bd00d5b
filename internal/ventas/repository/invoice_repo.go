package repository

import (
	"context"
	"time"

	"github.com/bitfantasy/nimo-ventas/internal/ventas/entity"
	"gorm.io/gorm"
)

// InvoiceRepository 发票与客户付款仓库
type InvoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

// --- Invoice ---

func (r *InvoiceRepository) Create(ctx context.Context, inv *entity.Invoice) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *InvoiceRepository) GetByID(ctx context.Context, companyID, id string) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := r.db.WithContext(ctx).
		Preload("Order").Preload("Client").
		Where("id = ? AND company_id = ? AND deleted_at IS NULL", id, companyID).
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvoiceRepository) GetByIDTx(tx *gorm.DB, companyID, id string) (*entity.Invoice, error) {
	var inv entity.Invoice
	err := tx.Where("id = ? AND company_id = ? AND deleted_at IS NULL", id, companyID).
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// TransitionStatus 条件更新发票状态
func (r *InvoiceRepository) TransitionStatus(tx *gorm.DB, companyID, id, from, to string, extra map[string]interface{}) (int64, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	for k, v := range extra {
		updates[k] = v
	}
	result := tx.Model(&entity.Invoice{}).
		Where("id = ? AND company_id = ? AND status = ? AND deleted_at IS NULL", id, companyID, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// AddPaidAmount 累计已付金额（与付款确认同事务）
func (r *InvoiceRepository) AddPaidAmount(tx *gorm.DB, companyID, id string, amount float64) error {
	return tx.Model(&entity.Invoice{}).
		Where("id = ? AND company_id = ?", id, companyID).
		Updates(map[string]interface{}{
			"paid_amount": gorm.Expr("paid_amount + ?", amount),
			"updated_at":  time.Now(),
		}).Error
}

// --- ClientPayment ---

func (r *InvoiceRepository) CreatePayment(ctx context.Context, p *entity.ClientPayment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *InvoiceRepository) GetPaymentByID(ctx context.Context, companyID, id string) (*entity.ClientPayment, error) {
	var p entity.ClientPayment
	err := r.db.WithContext(ctx).
		Preload("Invoice").Preload("Client").
		Where("id = ? AND company_id = ?", id, companyID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *InvoiceRepository) GetPaymentByIDTx(tx *gorm.DB, companyID, id string) (*entity.ClientPayment, error) {
	var p entity.ClientPayment
	err := tx.Where("id = ? AND company_id = ?", id, companyID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// TransitionPaymentStatus 条件更新付款状态
func (r *InvoiceRepository) TransitionPaymentStatus(tx *gorm.DB, companyID, id, from, to string, extra map[string]interface{}) (int64, error) {
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	for k, v := range extra {
		updates[k] = v
	}
	result := tx.Model(&entity.ClientPayment{}).
		Where("id = ? AND company_id = ? AND status = ?", id, companyID, from).
		Updates(updates)
	return result.RowsAffected, result.Error
}

// PaymentListParams 付款列表查询参数
type PaymentListParams struct {
	Status    string
	InvoiceID string
	ClientID  string
	Page      int
	Size      int
}

func (r *InvoiceRepository) ListPayments(ctx context.Context, companyID string, params PaymentListParams) ([]entity.ClientPayment, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.ClientPayment{}).
		Where("company_id = ?", companyID)
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.InvoiceID != "" {
		query = query.Where("invoice_id = ?", params.InvoiceID)
	}
	if params.ClientID != "" {
		query = query.Where("client_id = ?", params.ClientID)
	}
	var total int64
	query.Count(&total)
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.Size <= 0 {
		params.Size = 20
	}
	var payments []entity.ClientPayment
	err := query.Preload("Invoice").Order("created_at DESC").
		Offset((params.Page - 1) * params.Size).Limit(params.Size).
		Find(&payments).Error
	return payments, total, err
}
