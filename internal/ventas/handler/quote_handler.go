package handler

import (
	"github.com/bitfantasy/nimo-ventas/internal/middleware"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/repository"
	"github.com/bitfantasy/nimo-ventas/internal/ventas/service"
	"github.com/gin-gonic/gin"
)

// QuoteHandler 报价单处理器
type QuoteHandler struct {
	svc         *service.QuoteService
	approvalSvc *service.ApprovalService
}

func NewQuoteHandler(svc *service.QuoteService, approvalSvc *service.ApprovalService) *QuoteHandler {
	return &QuoteHandler{svc: svc, approvalSvc: approvalSvc}
}

// Create 创建报价单
// POST /api/v1/ventas/cotizaciones
func (h *QuoteHandler) Create(c *gin.Context) {
	var req service.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	actor := middleware.MustActor(c)
	quote, err := h.svc.CreateQuote(c.Request.Context(), actor, req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, quote)
}

// Get 报价单详情
func (h *QuoteHandler) Get(c *gin.Context) {
	actor := middleware.MustActor(c)
	quote, err := h.svc.GetQuote(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, quote)
}

// List 报价单列表
func (h *QuoteHandler) List(c *gin.Context) {
	actor := middleware.MustActor(c)
	page, pageSize := GetPagination(c)
	quotes, total, err := h.svc.ListQuotes(c.Request.Context(), actor, repository.QuoteListParams{
		Status:   c.Query("status"),
		ClientID: c.Query("client_id"),
		SellerID: c.Query("seller_id"),
		Keyword:  c.Query("keyword"),
		Page:     page,
		Size:     pageSize,
	})
	if err != nil {
		HandleError(c, err)
		return
	}
	List(c, quotes, page, pageSize, total)
}

// RequestApproval 为报价单发起审批
// POST /api/v1/ventas/cotizaciones/:id/solicitar-aprobacion
// 低于阈值时直接批准，否则创建审批流等待审批
func (h *QuoteHandler) RequestApproval(c *gin.Context) {
	actor := middleware.MustActor(c)
	result, err := h.approvalSvc.RequestApproval(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	Success(c, result)
}

// Convert 已批准的报价单转销售订单
// POST /api/v1/ventas/cotizaciones/:id/convertir
func (h *QuoteHandler) Convert(c *gin.Context) {
	var req service.ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}
	actor := middleware.MustActor(c)
	order, err := h.svc.ConvertToOrder(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	Created(c, order)
}
