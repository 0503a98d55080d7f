package handler

import (
	"net/http"
	"topup_store/internal/domain/provision/service"
	"topup_store/pkg/response"

	"github.com/gin-gonic/gin"
)

type PlayerHandler struct {
	service service.PlayerService
}

func NewPlayerHandler(service service.PlayerService) *PlayerHandler {
	return &PlayerHandler{service: service}
}

type VerifyPlayerInput struct {
	Game   string `json:"game" binding:"required"`
	Region string `json:"region"`
	UserID string `json:"userId" binding:"required"`
	ZoneID string `json:"zoneId"`
}

// VerifyPlayer 下单前校验玩家账号
// @Summary 校验玩家账号
// @Tags provision
// @Accept json
// @Produce json
// @Param body body VerifyPlayerInput true "玩家信息"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/player/verify [post]
func (h *PlayerHandler) VerifyPlayer(c *gin.Context) {
	var input VerifyPlayerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	info, err := h.service.VerifyPlayer(c.Request.Context(), input.Game, input.Region, input.UserID, input.ZoneID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, info)
}
