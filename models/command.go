package models

// CommandRequest is one spoken or typed user command.
type CommandRequest struct {
	SessionKey string `json:"sessionId,omitempty"`
	Text       string `json:"text,omitempty"`
	Audio      []byte `json:"audio,omitempty"` // encoding/json maps this to base64
	Language   string `json:"language,omitempty"`
	Speak      bool   `json:"speak"`
}

// ActionLogEntry records one pipeline step, in execution order.
type ActionLogEntry struct {
	Step   string `json:"step"` // transcription, intent, handling, synthesis
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// CommandResponse is the externally visible outcome of a command.
type CommandResponse struct {
	SessionKey string           `json:"sessionId"`
	Transcript string           `json:"transcript,omitempty"`
	Intent     *Intent          `json:"intent,omitempty"`
	Message    string           `json:"message"`
	Reply      *Reply           `json:"reply,omitempty"`
	Audio      []byte           `json:"audio"`
	ActionLog  []ActionLogEntry `json:"actionLog"`
	Error      string           `json:"error,omitempty"`
}
