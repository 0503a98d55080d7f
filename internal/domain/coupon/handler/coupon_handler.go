package handler

import (
	"net/http"
	"time"
	"topup_store/internal/domain/coupon/model"
	"topup_store/internal/domain/coupon/service"
	"topup_store/pkg/response"
	"topup_store/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CouponHandler struct {
	service service.CouponService
}

func NewCouponHandler(service service.CouponService) *CouponHandler {
	return &CouponHandler{service: service}
}

type ValidateCouponInput struct {
	Coupon    string          `json:"coupon" binding:"required"`
	CostID    string          `json:"costId" binding:"required"`
	Price     decimal.Decimal `json:"price"`
	ProductID string          `json:"productId" binding:"required"`
}

// ValidateCoupon 校验优惠券并返回折扣明细
// @Summary 校验优惠券
// @Tags coupon
// @Accept json
// @Produce json
// @Param body body ValidateCouponInput true "券码与面额"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/coupon/validate [post]
func (h *CouponHandler) ValidateCoupon(c *gin.Context) {
	var input ValidateCouponInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	if !input.Price.IsPositive() {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Price must be positive")
		return
	}

	quote, err := h.service.Validate(c.Request.Context(), service.ValidateInput{
		Code:      input.Coupon,
		CostID:    input.CostID,
		Price:     input.Price,
		ProductID: input.ProductID,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, quote)
}

type CreateCouponInput struct {
	Code            string           `json:"code" binding:"required"`
	Discount        decimal.Decimal  `json:"discount"`
	Type            model.CouponType `json:"type" binding:"required,oneof=flat percentage"`
	MaxDiscount     *decimal.Decimal `json:"maxDiscount"`
	MinAmount       decimal.Decimal  `json:"minAmount"`
	StartDate       time.Time        `json:"startDate" binding:"required"`
	Expiry          time.Time        `json:"expiry" binding:"required"`
	IsActive        *bool            `json:"isActive"`
	Limit           int              `json:"limit" binding:"min=0"`
	SelectedProduct string           `json:"selectedProduct" binding:"required"`
	SelectedCosts   []string         `json:"selectedCosts"`
}

// CreateCoupon 管理员创建优惠券
// @Summary 创建优惠券
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body CreateCouponInput true "优惠券"
// @Success 200 {object} response.Response
// @Router /admin/coupons [post]
func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	var input CreateCouponInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	in := service.CreateInput{
		Code:            input.Code,
		Discount:        input.Discount,
		Type:            input.Type,
		MinAmount:       input.MinAmount,
		StartDate:       input.StartDate,
		Expiry:          input.Expiry,
		IsActive:        true,
		Limit:           input.Limit,
		SelectedProduct: input.SelectedProduct,
		SelectedCosts:   input.SelectedCosts,
	}
	if input.MaxDiscount != nil {
		in.MaxDiscount = decimal.NewNullDecimal(*input.MaxDiscount)
	}
	if input.IsActive != nil {
		in.IsActive = *input.IsActive
	}

	coupon, err := h.service.CreateCoupon(c.Request.Context(), in)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, coupon)
}

// ListCoupons 管理员查看优惠券
// @Summary 优惠券列表
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param page query int false "页码"
// @Param limit query int false "每页数量"
// @Success 200 {object} response.Response
// @Router /admin/coupons [get]
func (h *CouponHandler) ListCoupons(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	offset, limit := p.GetPageOffset()

	coupons, total, err := h.service.ListCoupons(c.Request.Context(), offset, limit)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, utils.PageResult{List: coupons, Total: total, Page: p.Page, Limit: p.Limit})
}
