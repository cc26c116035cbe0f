package handlers

import (
	"net/http"
	"strings"

	"voicetask/models"
	"voicetask/services/provider"
	"voicetask/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProviderHandler struct {
	Catalog provider.CatalogService
}

func NewProviderHandler(catalog provider.CatalogService) *ProviderHandler {
	return &ProviderHandler{Catalog: catalog}
}

// SearchProvidersHandler returns ranked providers for ?category=&q=&location=.
func (h *ProviderHandler) SearchProvidersHandler(c *gin.Context) {
	var params models.SearchParams
	if err := c.ShouldBindQuery(&params); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid search", err.Error())
		return
	}
	if strings.TrimSpace(params.Category) == "" {
		utils.JSONError(c, http.StatusBadRequest, "Invalid search", "category is required")
		return
	}

	providers, err := h.Catalog.Search(c.Request.Context(), params)
	if err != nil {
		getLogger(c).Error("Provider search failed", zap.String("category", params.Category), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Provider search failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"providers": providers, "count": len(providers)})
}

// GetProviderHandler returns one provider with its synthesized availability.
func (h *ProviderHandler) GetProviderHandler(c *gin.Context) {
	p, ok := h.Catalog.FindByID(c.Param("id"))
	if !ok {
		utils.JSONError(c, http.StatusNotFound, "Provider not found", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"provider": p, "slots": h.Catalog.AvailableSlots(*p)})
}

func (h *ProviderHandler) CategoriesHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.Catalog.Categories()})
}
