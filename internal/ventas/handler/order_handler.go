package handler

import (
	"github.com/bitfantasy/nimo-ventas/internal/middleware"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/repository"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/service"
	"github.com/gin-gonic/gin"
)

// OrderHandler 销售订单处理器
type OrderHandler struct {
	svc *service.OrderService
}

func NewOrderHandler(svc *service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// Create 直接创建销售订单
// POST /api/v1/ventas/pedidos
func (h *OrderHandler) Create(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	actor := middleware.MustActor(c)
	order, err := h.svc.CreateOrder(c.Request.Context(), actor, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, order)
}

// Get 订单详情
func (h *OrderHandler) Get(c *gin.Context) {
	actor := middleware.MustActor(c)
	order, err := h.svc.GetOrder(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, order)
}

// List 订单列表
func (h *OrderHandler) List(c *gin.Context) {
	actor := middleware.MustActor(c)
	page, pageSize := GetPagination(c)
	orders, total, err := h.svc.ListOrders(c.Request.Context(), actor, repository.OrderListParams{
		Status:   c.Query("status"),
		ClientID: c.Query("client_id"),
		Keyword:  c.Query("keyword"),
		Page:     page,
		Size:     pageSize,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	List(c, orders, page, pageSize, total)
}

// Confirm 确认订单
// POST /api/v1/ventas/pedidos/:id/confirmar
func (h *OrderHandler) Confirm(c *gin.Context) {
	actor := middleware.MustActor(c)
	if err := h.svc.ConfirmOrder(c.Request.Context(), actor, c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"status": "CONFIRMADA"})
}

// Prepare 订单进入备货
// POST /api/v1/ventas/pedidos/:id/preparar
func (h *OrderHandler) Prepare(c *gin.Context) {
	actor := middleware.MustActor(c)
	if err := h.svc.PrepareOrder(c.Request.Context(), actor, c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"status": "EN_PREPARACION"})
}

// Complete 订单完成
// POST /api/v1/ventas/pedidos/:id/completar
func (h *OrderHandler) Complete(c *gin.Context) {
	actor := middleware.MustActor(c)
	if err := h.svc.CompleteOrder(c.Request.Context(), actor, c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"status": "COMPLETADA"})
}

// Cancel 取消订单
// POST /api/v1/ventas/pedidos/:id/anular
func (h *OrderHandler) Cancel(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	actor := middleware.MustActor(c)
	if err := h.svc.CancelOrder(c.Request.Context(), actor, c.Param("id"), req.Reason); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"status": "ANULADA"})
}
