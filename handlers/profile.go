package handlers

import (
	"errors"
	"net/http"

	"voicetask/models"
	"voicetask/services/profile"
	"voicetask/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProfileHandler struct {
	Service profile.ProfileService
}

func NewProfileHandler(svc profile.ProfileService) *ProfileHandler {
	return &ProfileHandler{Service: svc}
}

// GetProfileHandler returns the stored profile, creating defaults on first use.
func (h *ProfileHandler) GetProfileHandler(c *gin.Context) {
	p, err := h.Service.GetProfile(c.Request.Context())
	if err != nil {
		getLogger(c).Error("Failed to load profile", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to load profile", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p, "complete": p.IsComplete()})
}

// UpdateProfileHandler replaces the profile wholesale.
func (h *ProfileHandler) UpdateProfileHandler(c *gin.Context) {
	var input models.Profile
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid profile", err.Error())
		return
	}

	p, err := h.Service.UpdateProfile(c.Request.Context(), input)
	var verr *profile.ValidationError
	if errors.As(err, &verr) {
		utils.JSONError(c, http.StatusBadRequest, "Invalid profile", verr.Error())
		return
	}
	if err != nil {
		getLogger(c).Error("Failed to save profile", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to save profile", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p, "complete": p.IsComplete()})
}
