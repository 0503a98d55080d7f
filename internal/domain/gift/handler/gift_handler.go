package handler

import (
	"net/http"
	"topup_store/internal/domain/gift/service"
	"topup_store/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type GiftHandler struct {
	service service.GiftService
}

func NewGiftHandler(service service.GiftService) *GiftHandler {
	return &GiftHandler{service: service}
}

// GetProgress 查询玩家当月消费进度
// @Summary 礼包进度
// @Tags gift
// @Produce json
// @Param userId query string true "游戏账号"
// @Param productId query string true "商品 ID"
// @Success 200 {object} response.Response
// @Router /api/gift/progress [get]
func (h *GiftHandler) GetProgress(c *gin.Context) {
	userID, productID := c.Query("userId"), c.Query("productId")
	if userID == "" || productID == "" {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "userId and productId are required")
		return
	}

	progress, err := h.service.Progress(c.Request.Context(), userID, productID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, progress)
}

type ClaimInput struct {
	UserID    string `json:"userId" binding:"required"`
	ZoneID    string `json:"zoneId"`
	ProductID string `json:"productId" binding:"required"`
	Level     int    `json:"level" binding:"required,min=1"`
}

// Claim 领取档位礼包
// @Summary 领取礼包
// @Tags gift
// @Accept json
// @Produce json
// @Param body body ClaimInput true "领取信息"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/gift/claim [post]
func (h *GiftHandler) Claim(c *gin.Context) {
	var input ClaimInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	claim, err := h.service.Claim(c.Request.Context(), service.ClaimInput{
		UserID:    input.UserID,
		ZoneID:    input.ZoneID,
		ProductID: input.ProductID,
		Level:     input.Level,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.SuccessMsg(c, "Gift claimed", claim)
}

type CreateGiftInput struct {
	ProductID string          `json:"productId" binding:"required"`
	Level     int             `json:"level" binding:"required"`
	Threshold decimal.Decimal `json:"threshold"`
	Reward    string          `json:"reward" binding:"required"`
	IsActive  *bool           `json:"isActive"`
}

// CreateGift 创建礼包档位 (管理员)
// @Summary 创建礼包档位
// @Tags admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body CreateGiftInput true "档位"
// @Success 200 {object} response.Response
// @Router /admin/gifts [post]
func (h *GiftHandler) CreateGift(c *gin.Context) {
	var input CreateGiftInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	gift, err := h.service.CreateGift(c.Request.Context(), service.CreateGiftInput{
		ProductID: input.ProductID,
		Level:     input.Level,
		Threshold: input.Threshold,
		Reward:    input.Reward,
		IsActive:  active,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, gift)
}
