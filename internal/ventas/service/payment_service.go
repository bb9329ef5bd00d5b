package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-ventas/internal/ventas/entity"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/lifecycle"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/notify"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentService 发票与客户付款服务
type PaymentService struct {
	repo        *repository.InvoiceRepository
	orderRepo   *repository.OrderRepository
	historyRepo *repository.HistoryRepository
	db          *gorm.DB
	dispatcher  *notify.Dispatcher
}

func NewPaymentService(repo *repository.InvoiceRepository, orderRepo *repository.OrderRepository, historyRepo *repository.HistoryRepository, db *gorm.DB, dispatcher *notify.Dispatcher) *PaymentService {
	return &PaymentService{
		repo:        repo,
		orderRepo:   orderRepo,
		historyRepo: historyRepo,
		db:          db,
		dispatcher:  dispatcher,
	}
}

// IssueInvoiceRequest 开票请求
type IssueInvoiceRequest struct {
	OrderID string     `json:"order_id" binding:"required"`
	DueDate *time.Time `json:"due_date"`
	Notes   string     `json:"notes"`
}

// IssueInvoice 从已完成订单开票（EMITIDA）
func (s *PaymentService) IssueInvoice(ctx context.Context, actor lifecycle.Actor, req IssueInvoiceRequest) (*entity.Invoice, error) {
	order, err := s.orderRepo.GetByID(ctx, actor.CompanyID, req.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &lifecycle.NotFoundError{Entity: "pedido", ID: req.OrderID}
		}
		return nil, err
	}
	if order.Status != entity.SOStatusCompleted {
		return nil, &lifecycle.ValidationError{Message: fmt.Sprintf("el pedido no admite facturación en estado %s", order.Status)}
	}

	now := time.Now()
	invoice := &entity.Invoice{
		ID:          uuid.New().String(),
		CompanyID:   actor.CompanyID,
		InvoiceCode: genCode("FAC"),
		OrderID:     order.ID,
		ClientID:    order.ClientID,
		Status:      entity.InvoiceStatusIssued,
		TotalAmount: order.TotalAmount,
		Currency:    order.Currency,
		IssuedAt:    &now,
		DueDate:     req.DueDate,
		Notes:       req.Notes,
		CreatedBy:   actor.UserID,
	}
	if err := s.repo.Create(ctx, invoice); err != nil {
		return nil, fmt.Errorf("创建发票失败: %w", err)
	}
	return invoice, nil
}

// GetInvoice 获取发票详情
func (s *PaymentService) GetInvoice(ctx context.Context, actor lifecycle.Actor, id string) (*entity.Invoice, error) {
	invoice, err := s.repo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &lifecycle.NotFoundError{Entity: "factura", ID: id}
		}
		return nil, err
	}
	return invoice, nil
}

// RegisterPaymentRequest 登记付款请求
type RegisterPaymentRequest struct {
	InvoiceID string     `json:"invoice_id" binding:"required"`
	Amount    float64    `json:"amount" binding:"required,gt=0"`
	Method    string     `json:"method"`
	Reference string     `json:"reference"`
	PaidAt    *time.Time `json:"paid_at"`
	Notes     string     `json:"notes"`
}

// RegisterPayment 登记客户付款（PENDIENTE，待财务确认）
func (s *PaymentService) RegisterPayment(ctx context.Context, actor lifecycle.Actor, req RegisterPaymentRequest) (*entity.ClientPayment, error) {
	invoice, err := s.GetInvoice(ctx, actor, req.InvoiceID)
	if err != nil {
		return nil, err
	}
	if invoice.Status != entity.InvoiceStatusIssued {
		return nil, &lifecycle.ValidationError{Message: fmt.Sprintf("la factura no admite pagos en estado %s", invoice.Status)}
	}

	method := req.Method
	if method == "" {
		method = entity.PaymentMethodTransfer
	}

	payment := &entity.ClientPayment{
		ID:          uuid.New().String(),
		CompanyID:   actor.CompanyID,
		PaymentCode: genCode("PAG"),
		InvoiceID:   invoice.ID,
		ClientID:    invoice.ClientID,
		Status:      entity.PaymentStatusPending,
		Amount:      req.Amount,
		Method:      method,
		Reference:   req.Reference,
		PaidAt:      req.PaidAt,
		Notes:       req.Notes,
		CreatedBy:   actor.UserID,
	}
	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		return nil, fmt.Errorf("登记付款失败: %w", err)
	}
	return payment, nil
}

// GetPayment 获取付款详情
func (s *PaymentService) GetPayment(ctx context.Context, actor lifecycle.Actor, id string) (*entity.ClientPayment, error) {
	payment, err := s.repo.GetPaymentByID(ctx, actor.CompanyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &lifecycle.NotFoundError{Entity: "pago", ID: id}
		}
		return nil, err
	}
	return payment, nil
}

// ListPayments 付款列表
func (s *PaymentService) ListPayments(ctx context.Context, actor lifecycle.Actor, params repository.PaymentListParams) ([]entity.ClientPayment, int64, error) {
	return s.repo.ListPayments(ctx, actor.CompanyID, params)
}

// ConfirmPayment 确认付款（PENDIENTE→CONFIRMADO）
// 付款确认、发票累计已付金额、付清时发票→PAGADA、审计记录同一事务
func (s *PaymentService) ConfirmPayment(ctx context.Context, actor lifecycle.Actor, id string) error {
	var confirmed *entity.ClientPayment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, err := s.repo.GetPaymentByIDTx(tx, actor.CompanyID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &lifecycle.NotFoundError{Entity: "pago", ID: id}
			}
			return err
		}
		if err := lifecycle.Validate(lifecycle.DocPayment, payment.Status, entity.PaymentStatusConfirmed); err != nil {
			return err
		}

		now := time.Now()
		extra := map[string]interface{}{
			"confirmed_at": now,
			"confirmed_by": actor.UserID,
		}
		rows, err := s.repo.TransitionPaymentStatus(tx, actor.CompanyID, payment.ID, payment.Status, entity.PaymentStatusConfirmed, extra)
		if err != nil {
			return fmt.Errorf("更新付款状态失败: %w", err)
		}
		if rows == 0 {
			return &lifecycle.StateConflictError{Message: "付款状态已变更，请刷新后重试"}
		}
		if err := recordTransition(tx, s.historyRepo, actor, lifecycle.DocPayment,
			payment.ID, payment.PaymentCode, payment.Status, entity.PaymentStatusConfirmed, ""); err != nil {
			return err
		}

		if err := s.repo.AddPaidAmount(tx, actor.CompanyID, payment.InvoiceID, payment.Amount); err != nil {
			return fmt.Errorf("更新发票已付金额失败: %w", err)
		}

		// 付清时发票流转为已付
		invoice, err := s.repo.GetByIDTx(tx, actor.CompanyID, payment.InvoiceID)
		if err != nil {
			return fmt.Errorf("factura no encontrada: %w", err)
		}
		if invoice.Status == entity.InvoiceStatusIssued && invoice.PaidAmount >= invoice.TotalAmount {
			rows, err := s.repo.TransitionStatus(tx, actor.CompanyID, invoice.ID, invoice.Status, entity.InvoiceStatusPaid, nil)
			if err != nil {
				return fmt.Errorf("更新发票状态失败: %w", err)
			}
			if rows > 0 {
				if err := recordTransition(tx, s.historyRepo, actor, lifecycle.DocInvoice,
					invoice.ID, invoice.InvoiceCode, invoice.Status, entity.InvoiceStatusPaid, "pago completo"); err != nil {
					return err
				}
			}
		}

		confirmed = payment
		return nil
	})
	if err != nil {
		return err
	}

	s.dispatcher.Enqueue(notify.Event{
		Type:       notify.EventPaymentConfirmed,
		CompanyID:  actor.CompanyID,
		EntityType: string(lifecycle.DocPayment),
		EntityID:   confirmed.ID,
		EntityCode: confirmed.PaymentCode,
		UserID:     actor.UserID,
		Payload:    map[string]interface{}{"estado": entity.PaymentStatusConfirmed},
	})
	return nil
}

// RejectPayment 拒绝付款（PENDIENTE→RECHAZADO）
func (s *PaymentService) RejectPayment(ctx context.Context, actor lifecycle.Actor, id, reason string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		payment, err := s.repo.GetPaymentByIDTx(tx, actor.CompanyID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &lifecycle.NotFoundError{Entity: "pago", ID: id}
			}
			return err
		}
		if err := lifecycle.Validate(lifecycle.DocPayment, payment.Status, entity.PaymentStatusRejected); err != nil {
			return err
		}

		rows, err := s.repo.TransitionPaymentStatus(tx, actor.CompanyID, payment.ID, payment.Status, entity.PaymentStatusRejected, nil)
		if err != nil {
			return fmt.Errorf("更新付款状态失败: %w", err)
		}
		if rows == 0 {
			return &lifecycle.StateConflictError{Message: "付款状态已变更，请刷新后重试"}
		}
		return recordTransition(tx, s.historyRepo, actor, lifecycle.DocPayment,
			payment.ID, payment.PaymentCode, payment.Status, entity.PaymentStatusRejected, reason)
	})
}
