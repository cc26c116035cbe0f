package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"voicetask/models"
	"voicetask/services/booking"
	"voicetask/services/pipeline"
	"voicetask/services/speech"
	"voicetask/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var errAudioTooLarge = errors.New("audio exceeds the 5MB limit")

// CommandHandler exposes the command pipeline and the dialog state behind it.
type CommandHandler struct {
	Service      pipeline.CommandService
	Orchestrator booking.Orchestrator
}

func NewCommandHandler(svc pipeline.CommandService, orch booking.Orchestrator) *CommandHandler {
	return &CommandHandler{Service: svc, Orchestrator: orch}
}

// HandleCommand accepts a JSON command or a multipart upload carrying an "audio" file.
func (h *CommandHandler) HandleCommand(c *gin.Context) {
	logger := getLogger(c)

	var req models.CommandRequest
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		err := bindMultipartCommand(c, &req)
		if errors.Is(err, errAudioTooLarge) {
			utils.JSONError(c, http.StatusRequestEntityTooLarge, "Audio too large", err.Error())
			return
		}
		if err != nil {
			logger.Warn("Invalid audio upload", zap.Error(err))
			utils.JSONError(c, http.StatusBadRequest, "Invalid audio upload", err.Error())
			return
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid command request", err.Error())
		return
	}

	if len(req.Audio) > speech.MaxAudioBytes {
		utils.JSONError(c, http.StatusRequestEntityTooLarge, "Audio too large", errAudioTooLarge.Error())
		return
	}
	req.SessionKey = sessionKey(c, req.SessionKey)

	resp := h.Service.Process(c.Request.Context(), req)
	c.JSON(http.StatusOK, resp)
}

// GetSessionHandler returns the dialog context for the caller's session.
func (h *CommandHandler) GetSessionHandler(c *gin.Context) {
	key := sessionKey(c, c.Query("sessionId"))
	dc, err := h.Orchestrator.Snapshot(c.Request.Context(), key)
	if err != nil {
		getLogger(c).Error("Failed to load session", zap.String("session", key), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to load session", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessionId": key, "context": dc})
}

// sessionKey prefers the explicit value, then the session header, then the shared default.
func sessionKey(c *gin.Context, explicit string) string {
	if k := strings.TrimSpace(explicit); k != "" {
		return k
	}
	if k := strings.TrimSpace(c.GetHeader(utils.SessionHeader)); k != "" {
		return k
	}
	return booking.DefaultSessionKey
}

func bindMultipartCommand(c *gin.Context, req *models.CommandRequest) error {
	req.SessionKey = c.PostForm("sessionId")
	req.Text = c.PostForm("text")
	req.Language = c.PostForm("language")
	if raw := c.PostForm("speak"); raw != "" {
		speak, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		req.Speak = speak
	}

	fileHeader, err := c.FormFile("audio")
	if err == http.ErrMissingFile {
		return nil
	}
	if err != nil {
		return err
	}
	if fileHeader.Size > speech.MaxAudioBytes {
		return errAudioTooLarge
	}
	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	req.Audio, err = io.ReadAll(io.LimitReader(file, speech.MaxAudioBytes+1))
	if err != nil {
		return err
	}
	if len(req.Audio) > speech.MaxAudioBytes {
		return errAudioTooLarge
	}
	return nil
}
