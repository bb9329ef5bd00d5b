package handler

import (
	"github.com/bitfantasy/nimo-ventas/internal/middleware"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/repository"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/service"
	"github.com/gin-gonic/gin"
)

// PaymentHandler 发票与收款处理器
type PaymentHandler struct {
	svc *service.PaymentService
}

func NewPaymentHandler(svc *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

// IssueInvoice 从已完成订单开票
// POST /api/v1/ventas/facturas
func (h *PaymentHandler) IssueInvoice(c *gin.Context) {
	var req service.IssueInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	actor := middleware.MustActor(c)
	invoice, err := h.svc.IssueInvoice(c.Request.Context(), actor, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, invoice)
}

// GetInvoice 发票详情
// GET /api/v1/ventas/facturas/:id
func (h *PaymentHandler) GetInvoice(c *gin.Context) {
	actor := middleware.MustActor(c)
	invoice, err := h.svc.GetInvoice(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, invoice)
}

// Register 登记客户付款
// POST /api/v1/ventas/pagos
func (h *PaymentHandler) Register(c *gin.Context) {
	var req service.RegisterPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	actor := middleware.MustActor(c)
	payment, err := h.svc.RegisterPayment(c.Request.Context(), actor, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, payment)
}

// Get 付款详情
func (h *PaymentHandler) Get(c *gin.Context) {
	actor := middleware.MustActor(c)
	payment, err := h.svc.GetPayment(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, payment)
}

// List 付款列表
func (h *PaymentHandler) List(c *gin.Context) {
	actor := middleware.MustActor(c)
	page, pageSize := GetPagination(c)
	payments, total, err := h.svc.ListPayments(c.Request.Context(), actor, repository.PaymentListParams{
		Status:    c.Query("status"),
		InvoiceID: c.Query("invoice_id"),
		ClientID:  c.Query("client_id"),
		Page:      page,
		Size:      pageSize,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	List(c, payments, page, pageSize, total)
}

// Confirm 财务确认付款，发票付清后自动转PAGADA
// POST /api/v1/ventas/pagos/:id/confirmar
func (h *PaymentHandler) Confirm(c *gin.Context) {
	actor := middleware.MustActor(c)
	if err := h.svc.ConfirmPayment(c.Request.Context(), actor, c.Param("id")); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"status": "CONFIRMADO"})
}

// Reject 财务驳回付款
// POST /api/v1/ventas/pagos/:id/rechazar
func (h *PaymentHandler) Reject(c *gin.Context) {
	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "se requiere el motivo del rechazo")
		return
	}
	actor := middleware.MustActor(c)
	if err := h.svc.RejectPayment(c.Request.Context(), actor, c.Param("id"), req.Reason); err != nil {
		HandleError(c, err)
		return
	}
	Success(c, gin.H{"status": "RECHAZADO"})
}
