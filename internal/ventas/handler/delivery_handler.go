package handler

import (
	"github.com/bitfantasy/nimo-ventas/internal/middleware"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/repository"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/service"
	"github.com/gin-gonic/gin"
)

// DeliveryHandler 发货单处理器
type DeliveryHandler struct {
	svc *service.DeliveryService
}

func NewDeliveryHandler(svc *service.DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{svc: svc}
}

// Create 从订单创建发货单
// POST /api/v1/ventas/entregas
func (h *DeliveryHandler) Create(c *gin.Context) {
	var req service.CreateDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	actor := middleware.MustActor(c)
	delivery, err := h.svc.CreateDelivery(c.Request.Context(), actor, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, delivery)
}

// Get 发货单详情
func (h *DeliveryHandler) Get(c *gin.Context) {
	actor := middleware.MustActor(c)
	delivery, err := h.svc.GetDelivery(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, delivery)
}

// List 发货单列表
func (h *DeliveryHandler) List(c *gin.Context) {
	actor := middleware.MustActor(c)
	page, pageSize := GetPagination(c)
	deliveries, total, err := h.svc.ListDeliveries(c.Request.Context(), actor, repository.DeliveryListParams{
		Status:   c.Query("status"),
		ClientID: c.Query("client_id"),
		OrderID:  c.Query("order_id"),
		Keyword:  c.Query("keyword"),
		Page:     page,
		Size:     pageSize,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	List(c, deliveries, page, pageSize, total)
}

// Dispatch 发货，配送失败后也经此路由重发
// POST /api/v1/ventas/entregas/:id/despachar
// POST /api/v1/ventas/entregas/:id/reintentar
func (h *DeliveryHandler) Dispatch(c *gin.Context) {
	var req service.DispatchRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	actor := middleware.MustActor(c)
	if err := h.svc.Dispatch(c.Request.Context(), actor, c.Param("id"), req); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"status": "EN_TRANSITO"})
}

// Deliver 签收
// POST /api/v1/ventas/entregas/:id/entregar
func (h *DeliveryHandler) Deliver(c *gin.Context) {
	var req service.DeliverRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	actor := middleware.MustActor(c)
	if err := h.svc.MarkDelivered(c.Request.Context(), actor, c.Param("id"), req); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"status": "ENTREGADA"})
}

// Fail 配送失败
// POST /api/v1/ventas/entregas/:id/fallar
func (h *DeliveryHandler) Fail(c *gin.Context) {
	var req service.FailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "se requiere el motivo del fallo")
		return
	}
	actor := middleware.MustActor(c)
	if err := h.svc.MarkFailed(c.Request.Context(), actor, c.Param("id"), req); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"status": "ENTREGA_FALLIDA"})
}
