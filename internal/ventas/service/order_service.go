package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/nimo-ventas/internal/ventas/entity"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/lifecycle"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderService 销售订单服务
type OrderService struct {
	repo        *repository.OrderRepository
	clientRepo  *repository.ClientRepository
	historyRepo *repository.HistoryRepository
	db          *gorm.DB
}

func NewOrderService(repo *repository.OrderRepository, clientRepo *repository.ClientRepository, historyRepo *repository.HistoryRepository, db *gorm.DB) *OrderService {
	return &OrderService{
		repo:        repo,
		clientRepo:  clientRepo,
		historyRepo: historyRepo,
		db:          db,
	}
}

// CreateOrderRequest 直接创建订单请求（不经报价单）
type CreateOrderRequest struct {
	ClientID        string            `json:"client_id" binding:"required"`
	SellerID        string            `json:"seller_id"`
	Currency        string            `json:"currency"`
	ShippingAddress string            `json:"shipping_address"`
	Notes           string            `json:"notes"`
	Items           []CreateQuoteItem `json:"items" binding:"required,min=1"`
}

// CreateOrder 直接创建销售订单（PENDIENTE），封锁客户拒绝创建
func (s *OrderService) CreateOrder(ctx context.Context, actor lifecycle.Actor, req CreateOrderRequest) (*entity.SalesOrder, error) {
	client, err := s.clientRepo.GetByID(ctx, actor.CompanyID, req.ClientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &lifecycle.NotFoundError{Entity: "cliente", ID: req.ClientID}
		}
		return nil, err
	}
	if client.Blocked {
		return nil, &lifecycle.ValidationError{Message: fmt.Sprintf("cliente bloqueado: %s", client.BlockReason)}
	}

	sellerID := req.SellerID
	if sellerID == "" {
		sellerID = actor.UserID
	}
	currency := req.Currency
	if currency == "" {
		currency = "ARS"
	}

	now := time.Now()
	order := &entity.SalesOrder{
		ID:              uuid.New().String(),
		CompanyID:       actor.CompanyID,
		OrderCode:       genCode("PED"),
		ClientID:        req.ClientID,
		SellerID:        sellerID,
		Status:          entity.SOStatusPending,
		Currency:        currency,
		OrderDate:       &now,
		ShippingAddress: req.ShippingAddress,
		Notes:           req.Notes,
		CreatedBy:       actor.UserID,
	}
	var total float64
	for _, it := range req.Items {
		amount := it.Quantity * it.UnitPrice
		total += amount
		order.Items = append(order.Items, entity.SOItem{
			ID:          uuid.New().String(),
			OrderID:     order.ID,
			ProductID:   it.ProductID,
			ProductCode: it.ProductCode,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Amount:      amount,
		})
	}
	order.TotalAmount = total

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("创建订单失败: %w", err)
	}
	return order, nil
}

// GetOrder 获取订单详情
func (s *OrderService) GetOrder(ctx context.Context, actor lifecycle.Actor, id string) (*entity.SalesOrder, error) {
	order, err := s.repo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &lifecycle.NotFoundError{Entity: "pedido", ID: id}
		}
		return nil, err
	}
	return order, nil
}

// ListOrders 订单列表
func (s *OrderService) ListOrders(ctx context.Context, actor lifecycle.Actor, params repository.OrderListParams) ([]entity.SalesOrder, int64, error) {
	return s.repo.List(ctx, actor.CompanyID, params)
}

// ConfirmOrder 确认订单（PENDIENTE→CONFIRMADA），封锁客户拒绝确认
func (s *OrderService) ConfirmOrder(ctx context.Context, actor lifecycle.Actor, id string) error {
	order, err := s.GetOrder(ctx, actor, id)
	if err != nil {
		return err
	}
	client, err := s.clientRepo.GetByID(ctx, actor.CompanyID, order.ClientID)
	if err != nil {
		return fmt.Errorf("cliente no encontrado: %w", err)
	}
	if client.Blocked {
		return &lifecycle.ValidationError{Message: fmt.Sprintf("cliente bloqueado: %s", client.BlockReason)}
	}
	return s.transition(ctx, actor, order, entity.SOStatusConfirmed, "")
}

// PrepareOrder 订单进入备货（CONFIRMADA→EN_PREPARACION）
func (s *OrderService) PrepareOrder(ctx context.Context, actor lifecycle.Actor, id string) error {
	order, err := s.GetOrder(ctx, actor, id)
	if err != nil {
		return err
	}
	return s.transition(ctx, actor, order, entity.SOStatusPreparing, "")
}

// CompleteOrder 订单完成（EN_PREPARACION→COMPLETADA）
func (s *OrderService) CompleteOrder(ctx context.Context, actor lifecycle.Actor, id string) error {
	order, err := s.GetOrder(ctx, actor, id)
	if err != nil {
		return err
	}
	return s.transition(ctx, actor, order, entity.SOStatusCompleted, "")
}

// CancelOrder 取消订单，备货后不可取消
func (s *OrderService) CancelOrder(ctx context.Context, actor lifecycle.Actor, id, reason string) error {
	order, err := s.GetOrder(ctx, actor, id)
	if err != nil {
		return err
	}
	return s.transition(ctx, actor, order, entity.SOStatusCancelled, reason)
}

// transition 执行订单状态迁移：图校验 + 条件更新 + 审计，同事务
func (s *OrderService) transition(ctx context.Context, actor lifecycle.Actor, order *entity.SalesOrder, to, reason string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lifecycle.Validate(lifecycle.DocSalesOrder, order.Status, to); err != nil {
			return err
		}
		rows, err := s.repo.TransitionStatus(tx, actor.CompanyID, order.ID, order.Status, to)
		if err != nil {
			return fmt.Errorf("更新订单状态失败: %w", err)
		}
		if rows == 0 {
			return &lifecycle.StateConflictError{Message: "订单状态已变更，请刷新后重试"}
		}
		return recordTransition(tx, s.historyRepo, actor, lifecycle.DocSalesOrder,
			order.ID, order.OrderCode, order.Status, to, reason)
	})
}
