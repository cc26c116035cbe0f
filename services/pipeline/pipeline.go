package pipeline

import (
	"context"
	"errors"
	"strings"

	"voicetask/models"
	"voicetask/services/booking"
	ai "voicetask/services/intelligence"
	"voicetask/services/speech"
	"voicetask/utils"

	"go.uber.org/zap"
)

// Step names in the action log.
const (
	StepTranscription = "transcription"
	StepIntent        = "intent"
	StepHandling      = "handling"
	StepSynthesis     = "synthesis"
)

const msgNotHeard = "I did not catch that, please try again."

// CommandService runs one user command end to end.
type CommandService interface {
	Process(ctx context.Context, req models.CommandRequest) *models.CommandResponse
}

// DefaultCommandService sequences transcription, classification, dialog handling and synthesis.
// Transcriber, Synthesizer and History are optional.
type DefaultCommandService struct {
	Transcriber  speech.Transcriber
	Synthesizer  speech.Synthesizer
	Classifier   ai.IntentClassifier
	Orchestrator booking.Orchestrator
	History      ai.HistoryStore
	Logger       *zap.Logger
}

type run struct {
	svc  *DefaultCommandService
	req  models.CommandRequest
	resp *models.CommandResponse
	log  *zap.Logger
}

// Process never fails outright: every error becomes a spoken or written message and an entry
// in the action log.
func (s *DefaultCommandService) Process(ctx context.Context, req models.CommandRequest) *models.CommandResponse {
	if req.SessionKey == "" {
		req.SessionKey = booking.DefaultSessionKey
	}
	log := s.Logger
	if log == nil {
		log = zap.NewNop()
	}
	r := &run{
		svc:  s,
		req:  req,
		resp: &models.CommandResponse{SessionKey: req.SessionKey, ActionLog: []models.ActionLogEntry{}},
		log:  log.With(zap.String("session", req.SessionKey)),
	}
	r.execute(ctx)
	r.synthesize(ctx)
	return r.resp
}

func (r *run) execute(ctx context.Context) {
	text := strings.TrimSpace(r.req.Text)

	if len(r.req.Audio) > 0 {
		transcript, err := r.transcribe(ctx)
		if err != nil {
			r.fail(StepTranscription, msgNotHeard, err)
			return
		}
		r.resp.Transcript = transcript
		r.record(StepTranscription, true, transcript)
		text = transcript
	}

	classifyReq := ai.ClassifyRequest{Text: text}
	if dc, err := r.svc.Orchestrator.Snapshot(ctx, r.req.SessionKey); err != nil {
		r.log.Warn("dialog snapshot unavailable", zap.Error(err))
	} else {
		classifyReq.Dialog = dc
	}
	if r.svc.History != nil {
		if turns, err := r.svc.History.Recent(ctx, r.req.SessionKey); err != nil {
			r.log.Warn("conversation history unavailable", zap.Error(err))
		} else {
			classifyReq.History = turns
		}
	}

	intent, err := r.svc.Classifier.Classify(ctx, classifyReq)
	if err != nil {
		r.fail(StepIntent, utils.GenericFailureMessage, err)
		return
	}
	r.resp.Intent = intent
	r.record(StepIntent, true, string(intent.Type))

	reply, err := r.svc.Orchestrator.Handle(ctx, r.req.SessionKey, *intent)
	if err != nil {
		r.fail(StepHandling, utils.GenericFailureMessage, err)
		return
	}
	r.resp.Reply = reply
	r.resp.Message = reply.Message
	r.record(StepHandling, true, string(reply.State))

	if r.svc.History != nil {
		if err := r.svc.History.Append(ctx, r.req.SessionKey,
			ai.Turn{Role: "user", Text: text},
			ai.Turn{Role: "assistant", Text: reply.Message},
		); err != nil {
			r.log.Warn("failed to store conversation history", zap.Error(err))
		}
	}
}

func (r *run) transcribe(ctx context.Context) (string, error) {
	if r.svc.Transcriber == nil {
		return "", errors.New("speech input is not configured")
	}
	return r.svc.Transcriber.Transcribe(ctx, r.req.Audio, r.req.Language)
}

// synthesize speaks whatever message the run ended with. Its own failure leaves Audio empty.
func (r *run) synthesize(ctx context.Context) {
	if !r.req.Speak || r.svc.Synthesizer == nil || r.resp.Message == "" {
		return
	}
	audio, err := r.svc.Synthesizer.Synthesize(ctx, r.resp.Message, r.req.Language)
	if err != nil {
		r.log.Warn("speech synthesis failed", zap.Error(err))
		r.resp.Audio = nil
		r.record(StepSynthesis, false, err.Error())
		return
	}
	r.resp.Audio = audio
	r.record(StepSynthesis, true, "")
}

func (r *run) fail(step, message string, err error) {
	switch {
	case errors.Is(err, ai.ErrEmptyInput), errors.Is(err, speech.ErrNoSpeech):
		r.log.Info("command had no content", zap.String("step", step))
	default:
		r.log.Error("command step failed", zap.String("step", step), zap.Error(err))
	}
	r.resp.Message = message
	r.resp.Error = err.Error()
	r.record(step, false, err.Error())
}

func (r *run) record(step string, ok bool, detail string) {
	r.resp.ActionLog = append(r.resp.ActionLog, models.ActionLogEntry{Step: step, OK: ok, Detail: detail})
}
