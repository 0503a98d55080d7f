package handler

import (
	"net/http"
	"topup_store/internal/domain/order/service"
	"topup_store/internal/domain/payment/payway"
	"topup_store/pkg/response"
	"topup_store/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderHandler struct {
	service service.OrderService
	log     *zap.Logger
}

func NewOrderHandler(service service.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{service: service, log: log}
}

type CheckoutInput struct {
	ProductID    string `json:"productId" binding:"required"`
	CostID       string `json:"costId" binding:"required"`
	UserID       string `json:"userId" binding:"required"`
	ZoneID       string `json:"zoneId"`
	Game         string `json:"game"`
	Region       string `json:"region"`
	Coupon       string `json:"coupon"`
	OrderDetails string `json:"orderDetails"`
}

// Checkout 创建待支付订单
// @Summary 下单
// @Tags order
// @Accept json
// @Produce json
// @Param body body CheckoutInput true "订单"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/order [post]
func (h *OrderHandler) Checkout(c *gin.Context) {
	var input CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	res, err := h.service.Checkout(c.Request.Context(), service.CheckoutInput{
		ProductID:    input.ProductID,
		CostID:       input.CostID,
		UserID:       input.UserID,
		ZoneID:       input.ZoneID,
		Game:         input.Game,
		Region:       input.Region,
		Coupon:       input.Coupon,
		OrderDetails: input.OrderDetails,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, res)
}

type PaymentCallbackInput struct {
	Status payway.StatusCode `json:"status"`
	TranID string            `json:"tran_id" binding:"required"`
	APV    string            `json:"apv"`
}

// PaymentCallback 网关支付回调
// @Summary 支付回调
// @Tags payment
// @Accept json
// @Produce json
// @Param orderId query string true "订单 ID"
// @Param body body PaymentCallbackInput true "回调内容"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /payment/pay [post]
func (h *OrderHandler) PaymentCallback(c *gin.Context) {
	orderID := c.Query("orderId")
	if orderID == "" {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "orderId is required")
		return
	}

	var input PaymentCallbackInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	msg, order, err := h.service.HandlePaymentCallback(c.Request.Context(), orderID, service.CallbackInput{
		Status: int(input.Status),
		TranID: input.TranID,
		APV:    input.APV,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessMsg(c, msg, order)
}

type BanglaWebhookInput struct {
	Status  string `json:"status"`
	UID     string `json:"uid"`
	Trx     string `json:"trx"`
	OrderID string `json:"orderid"`
}

// BanglaWebhook 供应商到账通知，无论结果都返回 200，避免对方重试风暴
// @Summary Bangla 到账通知
// @Tags provision
// @Accept json
// @Produce json
// @Param body body BanglaWebhookInput true "通知内容"
// @Success 200 {object} response.Response
// @Router /api/webhook/bangla [post]
func (h *OrderHandler) BanglaWebhook(c *gin.Context) {
	var input BanglaWebhookInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.log.Warn("bangla webhook: invalid body", zap.Error(err))
		response.SuccessMsg(c, "Invalid payload", nil)
		return
	}

	msg, err := h.service.HandleBanglaWebhook(c.Request.Context(), service.WebhookInput{
		Status:  input.Status,
		UID:     input.UID,
		Trx:     input.Trx,
		OrderID: input.OrderID,
	})
	if err != nil {
		h.log.Warn("bangla webhook rejected",
			zap.String("orderid", input.OrderID), zap.String("result", msg), zap.Error(err))
	} else {
		h.log.Info("bangla webhook handled", zap.String("orderid", input.OrderID), zap.String("result", msg))
	}

	response.SuccessMsg(c, msg, nil)
}

// GetOrder 管理员查看订单
// @Summary 订单详情
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param id path string true "订单 ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /admin/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.service.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, order)
}

// ListOrders 管理员分页查看订单
// @Summary 订单列表
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param status query string false "订单状态"
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} response.Response
// @Router /admin/orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	offset, limit := p.GetPageOffset()

	orders, total, err := h.service.ListOrders(c.Request.Context(), c.Query("status"), offset, limit)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, utils.PageResult{List: orders, Total: total, Page: p.Page, Limit: p.Limit})
}
