package handler

import (
	"net/http"
	"topup_store/internal/domain/spin/service"
	"topup_store/pkg/response"

	"github.com/gin-gonic/gin"
)

type SpinHandler struct {
	service service.SpinService
}

func NewSpinHandler(service service.SpinService) *SpinHandler {
	return &SpinHandler{service: service}
}

type SpinInput struct {
	TransactionID string `json:"transactionId" binding:"required"`
}

// Spin 使用交易赠送的抽奖机会
// @Summary 抽奖
// @Tags spin
// @Accept json
// @Produce json
// @Param body body SpinInput true "交易号"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/spin [post]
func (h *SpinHandler) Spin(c *gin.Context) {
	var input SpinInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	prize, err := h.service.Spin(c.Request.Context(), input.TransactionID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, gin.H{"prize": prize})
}

// GetSpins 查询交易剩余抽奖次数
// @Summary 剩余抽奖次数
// @Tags spin
// @Produce json
// @Param transactionId query string true "交易号"
// @Success 200 {object} response.Response
// @Router /api/spin [get]
func (h *SpinHandler) GetSpins(c *gin.Context) {
	tranID := c.Query("transactionId")
	if tranID == "" {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "transactionId is required")
		return
	}

	n, err := h.service.AvailableSpins(c.Request.Context(), tranID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, gin.H{"spins": n})
}

type CreatePrizeInput struct {
	ProductID string  `json:"productId" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	Color     string  `json:"color"`
	WinRate   float64 `json:"winRate"`
	Weight    int     `json:"weight" binding:"min=0"`
	Limit     int     `json:"limit" binding:"min=0"`
	IsActive  *bool   `json:"isActive"`
}

// CreatePrize 管理员创建奖品
// @Summary 创建奖品
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body CreatePrizeInput true "奖品"
// @Success 200 {object} response.Response
// @Router /admin/prizes [post]
func (h *SpinHandler) CreatePrize(c *gin.Context) {
	var input CreatePrizeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	prize, err := h.service.CreatePrize(c.Request.Context(), service.CreatePrizeInput{
		ProductID: input.ProductID,
		Name:      input.Name,
		Color:     input.Color,
		WinRate:   input.WinRate,
		Weight:    input.Weight,
		Limit:     input.Limit,
		IsActive:  active,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, prize)
}

// ListPrizes 管理员查看奖品
// @Summary 奖品列表
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param productId query string false "商品 ID"
// @Success 200 {object} response.Response
// @Router /admin/prizes [get]
func (h *SpinHandler) ListPrizes(c *gin.Context) {
	prizes, err := h.service.ListPrizes(c.Request.Context(), c.Query("productId"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, prizes)
}
