package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatRequest is the inbound payload for /api/v1/chat and the websocket loop.
type ChatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

// ChatResponse is the single reply shape for every kind of exchange.
// Confidence is only set for classified (non-dialog) messages, and
// CollectingData/Progress/Prediction only while a risk dialog is active
// or has just completed.
type ChatResponse struct {
	Intent         string      `json:"intent"`
	Confidence     *float64    `json:"confidence,omitempty"`
	Response       string      `json:"response"`
	UserID         string      `json:"user_id"`
	CollectingData *bool       `json:"collecting_data,omitempty"`
	Progress       string      `json:"progress,omitempty"`
	Prediction     *Prediction `json:"prediction,omitempty"`
}

// Prediction carries the final risk-model output of a completed dialog.
type Prediction struct {
	Probability    float64 `json:"probability"`
	RiskPercentage float64 `json:"risk_percentage"`
}

// ResetRequest clears a user's session.
type ResetRequest struct {
	UserID string `json:"user_id"`
}

// HealthStatus is the operator-facing /health payload.
type HealthStatus struct {
	Status            string `json:"status"`
	ModelLoaded       bool   `json:"model_loaded"`
	VocabSize         int    `json:"vocab_size"`
	HeartModelLoaded  bool   `json:"heart_model_loaded"`
	AsthmaModelLoaded bool   `json:"asthma_model_loaded"`
	Database          string `json:"database"`
}

// MessageRecord is the archived form of one exchange.
type MessageRecord struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      string             `bson:"user_id" json:"user_id"`
	UserMessage string             `bson:"user_message" json:"user_message"`
	BotResponse string             `bson:"bot_response" json:"bot_response"`
	Intent      string             `bson:"intent" json:"intent"`
	Confidence  *float64           `bson:"confidence,omitempty" json:"confidence,omitempty"`
	InDialog    bool               `bson:"in_dialog" json:"in_dialog"`
	Timestamp   time.Time          `bson:"timestamp" json:"timestamp"`
}

// Helper for the optional response fields.
func BoolPtr(b bool) *bool { return &b }

func Float64Ptr(f float64) *float64 { return &f }
