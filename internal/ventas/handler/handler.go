package handler

import (
	"strconv"

	"github.com/bitfantasy/nimo-ventas/internal/middleware"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/lifecycle"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/service"
	"github.com/gin-gonic/gin"
)

// Handlers 处理器集合
type Handlers struct {
	Client   *ClientHandler
	Quote    *QuoteHandler
	Approval *ApprovalHandler
	Order    *OrderHandler
	Delivery *DeliveryHandler
	Payment  *PaymentHandler
	History  *HistoryHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Client:   NewClientHandler(svc.Client),
		Quote:    NewQuoteHandler(svc.Quote, svc.Approval),
		Approval: NewApprovalHandler(svc.Approval),
		Order:    NewOrderHandler(svc.Order),
		Delivery: NewDeliveryHandler(svc.Delivery),
		Payment:  NewPaymentHandler(svc.Payment),
		History:  NewHistoryHandler(svc.History),
	}
}

// RegisterRoutes 注册销售模块路由
func RegisterRoutes(r *gin.Engine, h *Handlers, jwtSecret string) {
	v1 := r.Group("/api/v1/ventas")
	v1.Use(middleware.JWTAuth(jwtSecret))
	{
		// 客户
		clientes := v1.Group("/clientes")
		{
			clientes.POST("", middleware.RequirePermission("ventas.clientes.edit"), h.Client.Create)
			clientes.GET("", middleware.RequirePermission("ventas.clientes.view"), h.Client.List)
			clientes.GET("/:id", middleware.RequirePermission("ventas.clientes.view"), h.Client.Get)
			clientes.POST("/:id/bloquear", middleware.RequirePermission("ventas.clientes.block"), h.Client.Block)
			clientes.POST("/:id/desbloquear", middleware.RequirePermission("ventas.clientes.block"), h.Client.Unblock)
			clientes.GET("/:id/bloqueos", middleware.RequirePermission("ventas.clientes.view"), h.Client.ListBlockHistory)
		}

		// 报价单
		cotizaciones := v1.Group("/cotizaciones")
		{
			cotizaciones.POST("", middleware.RequirePermission("ventas.cotizaciones.edit"), h.Quote.Create)
			cotizaciones.GET("", middleware.RequirePermission("ventas.cotizaciones.view"), h.Quote.List)
			cotizaciones.GET("/:id", middleware.RequirePermission("ventas.cotizaciones.view"), h.Quote.Get)
			cotizaciones.POST("/:id/solicitar-aprobacion", middleware.RequirePermission("ventas.cotizaciones.edit"), h.Quote.RequestApproval)
			cotizaciones.POST("/:id/convertir", middleware.RequirePermission("ventas.cotizaciones.convert"), h.Quote.Convert)
		}

		// 审批流
		aprobaciones := v1.Group("/aprobaciones")
		{
			aprobaciones.GET("", middleware.RequirePermission("ventas.aprobaciones.view"), h.Approval.List)
			aprobaciones.GET("/pendientes", middleware.RequirePermission("ventas.aprobaciones.decide"), h.Approval.ListMyPending)
			aprobaciones.GET("/:id", middleware.RequirePermission("ventas.aprobaciones.view"), h.Approval.Get)
			aprobaciones.POST("/:id/niveles/:nivel/aprobar", middleware.RequirePermission("ventas.aprobaciones.decide"), h.Approval.Approve)
			aprobaciones.POST("/:id/niveles/:nivel/rechazar", middleware.RequirePermission("ventas.aprobaciones.decide"), h.Approval.Reject)
		}

		// 销售订单
		pedidos := v1.Group("/pedidos")
		{
			pedidos.POST("", middleware.RequirePermission("ventas.pedidos.edit"), h.Order.Create)
			pedidos.GET("", middleware.RequirePermission("ventas.pedidos.view"), h.Order.List)
			pedidos.GET("/:id", middleware.RequirePermission("ventas.pedidos.view"), h.Order.Get)
			pedidos.POST("/:id/confirmar", middleware.RequirePermission("ventas.pedidos.edit"), h.Order.Confirm)
			pedidos.POST("/:id/preparar", middleware.RequirePermission("ventas.pedidos.edit"), h.Order.Prepare)
			pedidos.POST("/:id/completar", middleware.RequirePermission("ventas.pedidos.edit"), h.Order.Complete)
			pedidos.POST("/:id/anular", middleware.RequirePermission("ventas.pedidos.cancel"), h.Order.Cancel)
		}

		// 发货单
		entregas := v1.Group("/entregas")
		{
			entregas.POST("", middleware.RequirePermission("ventas.entregas.edit"), h.Delivery.Create)
			entregas.GET("", middleware.RequirePermission("ventas.entregas.view"), h.Delivery.List)
			entregas.GET("/:id", middleware.RequirePermission("ventas.entregas.view"), h.Delivery.Get)
			entregas.POST("/:id/despachar", middleware.RequirePermission("ventas.entregas.edit"), h.Delivery.Dispatch)
			entregas.POST("/:id/entregar", middleware.RequirePermission("ventas.entregas.edit"), h.Delivery.Deliver)
			entregas.POST("/:id/fallar", middleware.RequirePermission("ventas.entregas.edit"), h.Delivery.Fail)
			entregas.POST("/:id/reintentar", middleware.RequirePermission("ventas.entregas.edit"), h.Delivery.Dispatch)
		}

		// 发票与收款
		facturas := v1.Group("/facturas")
		{
			facturas.POST("", middleware.RequirePermission("ventas.pagos.edit"), h.Payment.IssueInvoice)
			facturas.GET("/:id", middleware.RequirePermission("ventas.pagos.view"), h.Payment.GetInvoice)
		}
		pagos := v1.Group("/pagos")
		{
			pagos.POST("", middleware.RequirePermission("ventas.pagos.edit"), h.Payment.Register)
			pagos.GET("", middleware.RequirePermission("ventas.pagos.view"), h.Payment.List)
			pagos.GET("/:id", middleware.RequirePermission("ventas.pagos.view"), h.Payment.Get)
			pagos.POST("/:id/confirmar", middleware.RequirePermission("ventas.pagos.confirm"), h.Payment.Confirm)
			pagos.POST("/:id/rechazar", middleware.RequirePermission("ventas.pagos.confirm"), h.Payment.Reject)
		}

		// 状态迁移历史
		v1.GET("/historial/:entidad/:id", middleware.RequirePermission("ventas.historial.view"), h.History.Timeline)
	}
}

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ListResponse 列表响应结构
type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

// Pagination 分页信息
type Pagination struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// List 列表响应
func List(c *gin.Context, items interface{}, page, pageSize int, total int64) {
	Success(c, ListResponse{
		Items: items,
		Pagination: &Pagination{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
		},
	})
}

// BadRequest 参数错误响应
func BadRequest(c *gin.Context, message string) {
	c.JSON(400, Response{Code: 40000, Message: message})
}

// HandleError 业务错误响应，按错误类型映射HTTP状态码
func HandleError(c *gin.Context, err error) {
	status := lifecycle.HTTPStatus(err)
	c.JSON(status, Response{
		Code:    status * 100,
		Message: err.Error(),
	})
}

// GetPagination 从请求获取分页参数
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}
