package dialog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Str1k3rFl0/Afira-ChatBotAI/models"
)

// ErrModelUnavailable is returned by Start when the engine's risk model
// failed to load. The dialog refuses to begin; everything else keeps working.
var ErrModelUnavailable = errors.New("risk model not loaded")

// Scorer is the pretrained model behind an engine. Answers arrive in schema
// order; the result is a probability in [0,1].
type Scorer interface {
	PredictProbability(answers []models.Value) (float64, error)
}

// RiskBand maps a probability range to a coarse level. UpperPercent is an
// exclusive bound on probability*100; the last band must be the catch-all
// with UpperPercent 100 or more.
type RiskBand struct {
	UpperPercent float64
	Level        string
	Emoji        string
	Advice       string
}

// Engine runs one slot-filling risk dialog: prompt fields in schema order,
// parse each answer, and score the assembled feature vector at the end.
// Engines are stateless; all per-user state lives in the Session.
type Engine struct {
	context        models.SessionContext
	title          string
	intro          string
	ack            string
	retryMsg       string
	unavailableMsg string
	probLabel      string
	note           string
	keywords       []string
	fields         []FieldSpec
	bands          []RiskBand
	scorer         Scorer
}

// Context returns the session context tag this engine owns. It doubles as
// the intent name on its responses.
func (e *Engine) Context() models.SessionContext {
	return e.context
}

// Ready reports whether the underlying risk model loaded.
func (e *Engine) Ready() bool {
	return e.scorer != nil
}

// MatchesKeywords reports whether the message names this dialog's domain,
// by case-insensitive substring against the trigger keyword set.
func (e *Engine) MatchesKeywords(message string) bool {
	lower := strings.ToLower(message)
	for _, keyword := range e.keywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// Start opens the dialog for a user. When the model is unavailable the
// returned response explains that and the error is ErrModelUnavailable; no
// session is created.
func (e *Engine) Start(userID string) (*models.ChatResponse, *models.Session, error) {
	if !e.Ready() {
		return &models.ChatResponse{
			Intent:   "error",
			Response: e.unavailableMsg,
			UserID:   userID,
		}, nil, ErrModelUnavailable
	}

	total := len(e.fields)
	response := fmt.Sprintf("**%s**\n\n%s\n\n**Question 1 of %d**\n\n%s",
		e.title, e.intro, total, e.fields[0].Prompt)

	return &models.ChatResponse{
		Intent:         string(e.context),
		Response:       response,
		UserID:         userID,
		CollectingData: models.BoolPtr(true),
		Progress:       fmt.Sprintf("1/%d", total),
	}, models.NewDialogSession(userID, e.context), nil
}

// Step consumes one answer. The returned session is the state to persist;
// nil means the dialog is over and the caller must drop the session. A
// parse failure re-emits the current prompt and leaves the session where
// it was.
func (e *Engine) Step(message string, sess *models.Session) (*models.ChatResponse, *models.Session) {
	total := len(e.fields)
	index := sess.CurrentField
	if index < 0 || index >= total {
		// Session state no schema position can explain; abort the dialog.
		return e.abort(sess.UserID), nil
	}

	field := e.fields[index]
	value, ok := field.Parse(message)
	if !ok {
		return &models.ChatResponse{
			Intent:         string(e.context),
			Response:       fmt.Sprintf("%s\n\n%s", e.retryMsg, field.Prompt),
			UserID:         sess.UserID,
			CollectingData: models.BoolPtr(true),
			Progress:       fmt.Sprintf("%d/%d", index+1, total),
		}, sess
	}

	sess.Answers[field.Name] = value
	sess.CurrentField++

	if sess.CurrentField < total {
		next := e.fields[sess.CurrentField]
		questionNo := sess.CurrentField + 1

		return &models.ChatResponse{
			Intent:         string(e.context),
			Response:       fmt.Sprintf("%s\n\n**Question %d of %d**\n\n%s", e.ack, questionNo, total, next.Prompt),
			UserID:         sess.UserID,
			CollectingData: models.BoolPtr(true),
			Progress:       fmt.Sprintf("%d/%d", questionNo, total),
		}, sess
	}

	return e.complete(sess), nil
}

// complete assembles the feature vector in schema order, scores it and
// formats the advisory.
func (e *Engine) complete(sess *models.Session) *models.ChatResponse {
	if e.scorer == nil {
		return e.abort(sess.UserID)
	}

	answers := make([]models.Value, len(e.fields))
	for i, field := range e.fields {
		answers[i] = sess.Answers[field.Name]
	}

	probability, err := e.scorer.PredictProbability(answers)
	if err != nil {
		return e.abort(sess.UserID)
	}

	return &models.ChatResponse{
		Intent:         string(e.context),
		Response:       e.formatResult(probability),
		UserID:         sess.UserID,
		CollectingData: models.BoolPtr(false),
		Prediction: &models.Prediction{
			Probability:    probability,
			RiskPercentage: probability * 100,
		},
	}
}

func (e *Engine) abort(userID string) *models.ChatResponse {
	return &models.ChatResponse{
		Intent:         string(e.context),
		Response:       "Sorry, there was an error making the prediction.",
		UserID:         userID,
		CollectingData: models.BoolPtr(false),
	}
}

func (e *Engine) formatResult(probability float64) string {
	percentage := probability * 100

	band := e.bands[len(e.bands)-1]
	for _, b := range e.bands {
		if percentage < b.UpperPercent {
			band = b
			break
		}
	}

	return fmt.Sprintf(
		"**%s**\n\n%s **Risk Level: %s**\n**%s: %.1f%%**\n\n%s\n\n%s",
		e.title, band.Emoji, band.Level, e.probLabel, percentage, band.Advice, e.note,
	)
}

// Fields exposes the schema, mainly for tests and the artifact loader.
func (e *Engine) Fields() []FieldSpec {
	return e.fields
}
