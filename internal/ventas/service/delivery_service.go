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

// DeliveryService 发货单服务
type DeliveryService struct {
	repo        *repository.DeliveryRepository
	orderRepo   *repository.OrderRepository
	historyRepo *repository.HistoryRepository
	db          *gorm.DB
	dispatcher  *notify.Dispatcher
}

func NewDeliveryService(repo *repository.DeliveryRepository, orderRepo *repository.OrderRepository, historyRepo *repository.HistoryRepository, db *gorm.DB, dispatcher *notify.Dispatcher) *DeliveryService {
	return &DeliveryService{
		repo:        repo,
		orderRepo:   orderRepo,
		historyRepo: historyRepo,
		db:          db,
		dispatcher:  dispatcher,
	}
}

// CreateDeliveryRequest 创建发货单请求
type CreateDeliveryRequest struct {
	OrderID string `json:"order_id" binding:"required"`
	Address string `json:"address"`
	Notes   string `json:"notes"`
}

// CreateDelivery 从订单创建发货单（LISTA_PARA_DESPACHO）
func (s *DeliveryService) CreateDelivery(ctx context.Context, actor lifecycle.Actor, req CreateDeliveryRequest) (*entity.Delivery, error) {
	order, err := s.orderRepo.GetByID(ctx, actor.CompanyID, req.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &lifecycle.NotFoundError{Entity: "pedido", ID: req.OrderID}
		}
		return nil, err
	}
	if order.Status != entity.SOStatusConfirmed && order.Status != entity.SOStatusPreparing {
		return nil, &lifecycle.ValidationError{Message: fmt.Sprintf("el pedido no admite entregas en estado %s", order.Status)}
	}

	address := req.Address
	if address == "" {
		address = order.ShippingAddress
	}

	delivery := &entity.Delivery{
		ID:           uuid.New().String(),
		CompanyID:    actor.CompanyID,
		DeliveryCode: genCode("ENT"),
		OrderID:      order.ID,
		ClientID:     order.ClientID,
		Status:       entity.DeliveryStatusReady,
		Address:      address,
		Notes:        req.Notes,
		CreatedBy:    actor.UserID,
	}
	if err := s.repo.Create(ctx, delivery); err != nil {
		return nil, fmt.Errorf("创建发货单失败: %w", err)
	}
	return delivery, nil
}

// GetDelivery 获取发货单详情
func (s *DeliveryService) GetDelivery(ctx context.Context, actor lifecycle.Actor, id string) (*entity.Delivery, error) {
	delivery, err := s.repo.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &lifecycle.NotFoundError{Entity: "entrega", ID: id}
		}
		return nil, err
	}
	return delivery, nil
}

// ListDeliveries 发货单列表
func (s *DeliveryService) ListDeliveries(ctx context.Context, actor lifecycle.Actor, params repository.DeliveryListParams) ([]entity.Delivery, int64, error) {
	return s.repo.List(ctx, actor.CompanyID, params)
}

// DispatchRequest 发货请求
type DispatchRequest struct {
	DriverName string `json:"driver_name"`
	Vehicle    string `json:"vehicle"`
}

// Dispatch 发货（LISTA_PARA_DESPACHO/ENTREGA_FALLIDA → EN_TRANSITO）
// 首次发货必须有司机和车辆；失败重发沿用原值，可选覆盖
func (s *DeliveryService) Dispatch(ctx context.Context, actor lifecycle.Actor, id string, req DispatchRequest) error {
	var dispatched *entity.Delivery
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		delivery, err := s.repo.GetByIDTx(tx, actor.CompanyID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &lifecycle.NotFoundError{Entity: "entrega", ID: id}
			}
			return err
		}
		if err := lifecycle.ValidateDeliveryDispatch(delivery, req.DriverName, req.Vehicle); err != nil {
			return err
		}

		now := time.Now()
		extra := map[string]interface{}{
			"dispatched_at": now,
			"fail_reason":   "",
		}
		if req.DriverName != "" {
			extra["driver_name"] = req.DriverName
		}
		if req.Vehicle != "" {
			extra["vehicle"] = req.Vehicle
		}
		reason := ""
		if delivery.Status == entity.DeliveryStatusFailed {
			extra["retry_count"] = delivery.RetryCount + 1
			reason = "reintento de entrega"
		}

		rows, err := s.repo.TransitionStatus(tx, actor.CompanyID, delivery.ID, delivery.Status, entity.DeliveryStatusInTransit, extra)
		if err != nil {
			return fmt.Errorf("更新发货单状态失败: %w", err)
		}
		if rows == 0 {
			return &lifecycle.StateConflictError{Message: "发货单状态已变更，请刷新后重试"}
		}
		if err := recordTransition(tx, s.historyRepo, actor, lifecycle.DocDelivery,
			delivery.ID, delivery.DeliveryCode, delivery.Status, entity.DeliveryStatusInTransit, reason); err != nil {
			return err
		}
		dispatched = delivery
		return nil
	})
	if err != nil {
		return err
	}

	// 状态已提交，通知尽力而为
	s.dispatcher.Enqueue(notify.Event{
		Type:       notify.EventDeliveryDispatched,
		CompanyID:  actor.CompanyID,
		EntityType: string(lifecycle.DocDelivery),
		EntityID:   dispatched.ID,
		EntityCode: dispatched.DeliveryCode,
		UserID:     actor.UserID,
		Payload:    map[string]interface{}{"estado": entity.DeliveryStatusInTransit},
	})
	return nil
}

// DeliverRequest 签收请求
type DeliverRequest struct {
	ReceiverName  string `json:"receiver_name"`
	ReceiverNotes string `json:"receiver_notes"`
}

// MarkDelivered 签收（EN_TRANSITO→ENTREGADA）
func (s *DeliveryService) MarkDelivered(ctx context.Context, actor lifecycle.Actor, id string, req DeliverRequest) error {
	var delivered *entity.Delivery
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		delivery, err := s.repo.GetByIDTx(tx, actor.CompanyID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &lifecycle.NotFoundError{Entity: "entrega", ID: id}
			}
			return err
		}
		if err := lifecycle.Validate(lifecycle.DocDelivery, delivery.Status, entity.DeliveryStatusDelivered); err != nil {
			return err
		}

		now := time.Now()
		extra := map[string]interface{}{
			"delivered_at":   now,
			"receiver_name":  req.ReceiverName,
			"receiver_notes": req.ReceiverNotes,
		}
		rows, err := s.repo.TransitionStatus(tx, actor.CompanyID, delivery.ID, delivery.Status, entity.DeliveryStatusDelivered, extra)
		if err != nil {
			return fmt.Errorf("更新发货单状态失败: %w", err)
		}
		if rows == 0 {
			return &lifecycle.StateConflictError{Message: "发货单状态已变更，请刷新后重试"}
		}
		if err := recordTransition(tx, s.historyRepo, actor, lifecycle.DocDelivery,
			delivery.ID, delivery.DeliveryCode, delivery.Status, entity.DeliveryStatusDelivered, ""); err != nil {
			return err
		}
		delivered = delivery
		return nil
	})
	if err != nil {
		return err
	}

	s.dispatcher.Enqueue(notify.Event{
		Type:       notify.EventDeliveryDelivered,
		CompanyID:  actor.CompanyID,
		EntityType: string(lifecycle.DocDelivery),
		EntityID:   delivered.ID,
		EntityCode: delivered.DeliveryCode,
		UserID:     actor.UserID,
	})
	return nil
}

// FailRequest 配送失败请求
type FailRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// MarkFailed 配送失败（EN_TRANSITO→ENTREGA_FALLIDA），之后可重新发货
func (s *DeliveryService) MarkFailed(ctx context.Context, actor lifecycle.Actor, id string, req FailRequest) error {
	var failed *entity.Delivery
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		delivery, err := s.repo.GetByIDTx(tx, actor.CompanyID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &lifecycle.NotFoundError{Entity: "entrega", ID: id}
			}
			return err
		}
		if err := lifecycle.Validate(lifecycle.DocDelivery, delivery.Status, entity.DeliveryStatusFailed); err != nil {
			return err
		}

		extra := map[string]interface{}{"fail_reason": req.Reason}
		rows, err := s.repo.TransitionStatus(tx, actor.CompanyID, delivery.ID, delivery.Status, entity.DeliveryStatusFailed, extra)
		if err != nil {
			return fmt.Errorf("更新发货单状态失败: %w", err)
		}
		if rows == 0 {
			return &lifecycle.StateConflictError{Message: "发货单状态已变更，请刷新后重试"}
		}
		if err := recordTransition(tx, s.historyRepo, actor, lifecycle.DocDelivery,
			delivery.ID, delivery.DeliveryCode, delivery.Status, entity.DeliveryStatusFailed, req.Reason); err != nil {
			return err
		}
		failed = delivery
		return nil
	})
	if err != nil {
		return err
	}

	s.dispatcher.Enqueue(notify.Event{
		Type:       notify.EventDeliveryFailed,
		CompanyID:  actor.CompanyID,
		EntityType: string(lifecycle.DocDelivery),
		EntityID:   failed.ID,
		EntityCode: failed.DeliveryCode,
		UserID:     actor.UserID,
		Payload:    map[string]interface{}{"motivo": req.Reason},
	})
	return nil
}
