package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Str1k3rFl0/Afira-ChatBotAI/dialog"
	"github.com/Str1k3rFl0/Afira-ChatBotAI/models"
	"github.com/Str1k3rFl0/Afira-ChatBotAI/nlp"
	"github.com/Str1k3rFl0/Afira-ChatBotAI/sessions"
)

// ErrEmptyMessage rejects blank input before any model is touched.
var ErrEmptyMessage = errors.New("empty message")

const clarificationPrompt = "I currently support heart disease and asthma risk prediction. " +
	"Which one would you like to try?"

const weatherUsageHint = "Tell me a city! For example:\n" +
	"→ *weather in London*\n" +
	"→ *forecast for Paris*\n" +
	"→ *is it raining in Rome?*"

// MessageArchiver persists completed exchanges. Implementations must be safe
// for concurrent use; a nil archiver disables archiving.
type MessageArchiver interface {
	SaveExchange(ctx context.Context, record *models.MessageRecord) error
}

// ChatbotService is the dispatcher: for each inbound message it either
// continues an active dialog, starts a risk dialog off a keyword trigger,
// or falls back to TF-IDF intent classification and the response catalog.
type ChatbotService struct {
	vectorizer *nlp.Vectorizer
	classifier nlp.IntentModel
	catalog    *nlp.Catalog
	engines    []*dialog.Engine
	sessions   *sessions.Store
	weather    *WeatherService
	archive    MessageArchiver
	logger     *zap.Logger

	now func() time.Time
}

func NewChatbotService(
	vectorizer *nlp.Vectorizer,
	classifier nlp.IntentModel,
	catalog *nlp.Catalog,
	engines []*dialog.Engine,
	store *sessions.Store,
	weather *WeatherService,
	archive MessageArchiver,
	logger *zap.Logger,
) *ChatbotService {
	return &ChatbotService{
		vectorizer: vectorizer,
		classifier: classifier,
		catalog:    catalog,
		engines:    engines,
		sessions:   store,
		weather:    weather,
		archive:    archive,
		logger:     logger,
		now:        time.Now,
	}
}

// ProcessMessage handles one inbound message end to end. The whole
// read-step-write cycle runs under the user's session lock so rapid
// double-submits can't race a dialog's field index.
func (s *ChatbotService) ProcessMessage(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	userID := req.UserID
	if userID == "" {
		userID = uuid.NewString()
	}

	unlock := s.sessions.Lock(userID)
	defer unlock()

	if sess, ok := s.sessions.Get(userID); ok {
		if resp := s.continueConversation(message, sess); resp != nil {
			s.archiveExchange(ctx, message, resp)
			return resp, nil
		}
	}

	resp, err := s.classifyAndRespond(ctx, message, userID)
	if err != nil {
		return nil, err
	}

	s.archiveExchange(ctx, message, resp)
	return resp, nil
}

// ResetSession drops the user's session unconditionally. Resetting a user
// with no session is a no-op success.
func (s *ChatbotService) ResetSession(userID string) bool {
	unlock := s.sessions.Lock(userID)
	defer unlock()

	_, existed := s.sessions.Get(userID)
	s.sessions.Delete(userID)
	return existed
}

// Status reports model availability for the health endpoint.
func (s *ChatbotService) Status() models.HealthStatus {
	status := models.HealthStatus{
		Status:      "ok",
		ModelLoaded: s.classifier != nil,
		VocabSize:   s.vectorizer.VocabSize(),
	}
	for _, e := range s.engines {
		switch e.Context() {
		case models.ContextHeartDialog:
			status.HeartModelLoaded = e.Ready()
		case models.ContextAsthmaDialog:
			status.AsthmaModelLoaded = e.Ready()
		}
	}
	return status
}

// continueConversation routes a message against an existing session. A nil
// return means the session didn't claim the message and it falls through to
// classification.
func (s *ChatbotService) continueConversation(message string, sess *models.Session) *models.ChatResponse {
	if sess.Context == models.ContextAwaitingPredictionType {
		s.sessions.Delete(sess.UserID)

		for _, e := range s.engines {
			if e.MatchesKeywords(message) {
				return s.startDialog(e, sess.UserID)
			}
		}

		return &models.ChatResponse{
			Intent:   "predictions",
			Response: clarificationPrompt,
			UserID:   sess.UserID,
		}
	}

	for _, e := range s.engines {
		if sess.Context == e.Context() && sess.CollectingData {
			resp, next := e.Step(message, sess)
			if next != nil {
				s.sessions.Set(next)
			} else {
				s.sessions.Delete(sess.UserID)
			}
			return resp
		}
	}

	return nil
}

func (s *ChatbotService) startDialog(e *dialog.Engine, userID string) *models.ChatResponse {
	resp, sess, err := e.Start(userID)
	if err != nil {
		s.logger.Warn("risk dialog refused to start",
			zap.String("dialog", string(e.Context())),
			zap.Error(err))
	}
	if sess != nil {
		s.sessions.Set(sess)
	}
	return resp
}

func (s *ChatbotService) classifyAndRespond(ctx context.Context, message, userID string) (*models.ChatResponse, error) {
	vector := s.vectorizer.Vectorize(message)
	intent, confidence, err := s.classifier.Score(vector)
	if err != nil {
		return nil, fmt.Errorf("intent classification failed: %w", err)
	}

	s.logger.Info("classified message",
		zap.String("intent", intent),
		zap.Float64("confidence", confidence),
		zap.String("user_id", userID))

	switch intent {
	case "predictions":
		return s.handlePredictionIntent(message, userID), nil

	case "ask_time":
		template := s.catalog.Respond(intent)
		return &models.ChatResponse{
			Intent:     intent,
			Confidence: models.Float64Ptr(confidence),
			Response:   strings.ReplaceAll(template, "{time}", s.now().Format("15:04:05")),
			UserID:     userID,
		}, nil

	case "ask_weather":
		return &models.ChatResponse{
			Intent:     intent,
			Confidence: models.Float64Ptr(confidence),
			Response:   s.weatherReply(ctx, message),
			UserID:     userID,
		}, nil
	}

	return &models.ChatResponse{
		Intent:     intent,
		Confidence: models.Float64Ptr(confidence),
		Response:   s.catalog.Respond(intent),
		UserID:     userID,
	}, nil
}

// handlePredictionIntent starts whichever dialog the message names, or
// parks the user in an awaiting_prediction_type session until they pick one.
func (s *ChatbotService) handlePredictionIntent(message, userID string) *models.ChatResponse {
	for _, e := range s.engines {
		if e.MatchesKeywords(message) {
			return s.startDialog(e, userID)
		}
	}

	s.sessions.Set(&models.Session{
		UserID:  userID,
		Context: models.ContextAwaitingPredictionType,
	})

	return &models.ChatResponse{
		Intent:   "predictions",
		Response: s.catalog.Respond("predictions"),
		UserID:   userID,
	}
}

func (s *ChatbotService) weatherReply(ctx context.Context, message string) string {
	intro := s.catalog.Respond("ask_weather")

	city := ExtractCity(message)
	if city == "" {
		return fmt.Sprintf("%s\n\n%s", intro, weatherUsageHint)
	}

	weather, err := s.weather.Lookup(ctx, city)
	if err != nil {
		if !errors.Is(err, ErrCityNotFound) {
			s.logger.Warn("weather lookup failed", zap.String("city", city), zap.Error(err))
		}
		return fmt.Sprintf("%s\n\nSorry, I couldn't find weather info for '%s'.", intro, city)
	}

	return fmt.Sprintf(
		"%s\n\n"+
			"📍 Weather in **%s**:\n"+
			"🌡️ Temperature: %s°C (feels like %s°C)\n"+
			"🌤️ Condition: %s\n"+
			"💧 Humidity: %d%%\n"+
			"💨 Wind: %.1f m/s",
		intro, weather.City, formatDegrees(weather.Temp), formatDegrees(weather.FeelsLike),
		weather.Description, weather.Humidity, weather.Wind,
	)
}

// formatDegrees renders a temperature the way the provider reports it:
// shortest decimal form, but whole numbers keep a trailing ".0".
func formatDegrees(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func (s *ChatbotService) archiveExchange(ctx context.Context, message string, resp *models.ChatResponse) {
	if s.archive == nil {
		return
	}

	record := &models.MessageRecord{
		UserID:      resp.UserID,
		UserMessage: message,
		BotResponse: resp.Response,
		Intent:      resp.Intent,
		Confidence:  resp.Confidence,
		InDialog:    resp.CollectingData != nil && *resp.CollectingData,
		Timestamp:   s.now(),
	}

	if err := s.archive.SaveExchange(ctx, record); err != nil {
		s.logger.Warn("failed to archive exchange", zap.Error(err))
	}
}
