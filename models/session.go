package models

import "time"

// SessionContext tags what a stored session is waiting for.
type SessionContext string

const (
	ContextAwaitingPredictionType SessionContext = "awaiting_prediction_type"
	ContextHeartDialog            SessionContext = "heart_disease_prediction"
	ContextAsthmaDialog           SessionContext = "asthma_prediction"
)

// Value is a parsed dialog answer. Binary and numeric answers live in
// Number; categorical answers live in Text with IsText set. Raw user input
// is never stored here.
type Value struct {
	Number float64
	Text   string
	IsText bool
}

// Session is one user's in-progress dialog state. CurrentField only moves
// forward, and only when the answer for the current field parsed.
type Session struct {
	UserID         string
	Context        SessionContext
	CollectingData bool
	CurrentField   int
	Answers        map[string]Value
	LastActive     time.Time
}

// NewDialogSession returns a session positioned at the first field.
func NewDialogSession(userID string, context SessionContext) *Session {
	return &Session{
		UserID:         userID,
		Context:        context,
		CollectingData: true,
		CurrentField:   0,
		Answers:        make(map[string]Value),
	}
}
