package handler

import (
	"errors"
	"net/http"
	"topup_store/internal/domain/catalog/repository"
	"topup_store/pkg/response"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	repo repository.ProductRepository
}

func NewProductHandler(repo repository.ProductRepository) *ProductHandler {
	return &ProductHandler{repo: repo}
}

// GetProduct 获取商品及面额
// @Summary 商品详情
// @Tags catalog
// @Produce json
// @Param id path string true "商品 ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/products/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	product, err := h.repo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrProductNotFound, "Product not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}

	response.Success(c, product)
}
