package models

// TaskKind selects the automation routine.
type TaskKind string

const (
	TaskKindBooking  TaskKind = "booking"
	TaskKindFormFill TaskKind = "form_fill"
)

// Task is a fully resolved unit of work for the executor.
type Task struct {
	Kind               TaskKind `bson:"kind" json:"kind"`
	ProviderType       string   `bson:"providerType,omitempty" json:"provider_type,omitempty"`
	TargetURL          string   `bson:"targetUrl,omitempty" json:"target_url,omitempty"` // legacy form-fill target
	ProviderID         string   `bson:"providerId,omitempty" json:"provider_id,omitempty"`
	ProviderName       string   `bson:"providerName,omitempty" json:"provider_name,omitempty"`
	Date               string   `bson:"date,omitempty" json:"date,omitempty"`
	Time               string   `bson:"time,omitempty" json:"time,omitempty"`
	DatetimePreference string   `bson:"datetimePreference,omitempty" json:"datetime_preference,omitempty"`
	UseProfile         bool     `bson:"useProfile" json:"use_profile"`
	Label              string   `bson:"label,omitempty" json:"label,omitempty"`
}

// TaskResult is the executor's normalized outcome.
type TaskResult struct {
	Success          bool   `bson:"success" json:"success"`
	Message          string `bson:"message" json:"message"`
	ConfirmationText string `bson:"confirmationText,omitempty" json:"confirmationText,omitempty"`
	Error            string `bson:"error,omitempty" json:"error,omitempty"`
}

// FailedResult builds a failure result carrying err verbatim.
func FailedResult(message string, err error) TaskResult {
	res := TaskResult{Success: false, Message: message}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}
