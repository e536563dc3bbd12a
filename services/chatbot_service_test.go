package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Str1k3rFl0/Afira-ChatBotAI/dialog"
	"github.com/Str1k3rFl0/Afira-ChatBotAI/models"
	"github.com/Str1k3rFl0/Afira-ChatBotAI/nlp"
	"github.com/Str1k3rFl0/Afira-ChatBotAI/sessions"
)

// stubClassifier stands in for the trained model. The dispatcher only passes
// vectors along, so tests set the intent to return before each call.
type stubClassifier struct {
	mu     sync.Mutex
	intent string
	conf   float64
	err    error
}

func (s *stubClassifier) Score([]float64) (string, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.intent, s.conf, s.err
}

func (s *stubClassifier) set(intent string, conf float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intent = intent
	s.conf = conf
}

type memoryArchive struct {
	mu      sync.Mutex
	records []*models.MessageRecord
}

func (a *memoryArchive) SaveExchange(_ context.Context, record *models.MessageRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, record)
	return nil
}

type fixedScorer struct{ probability float64 }

func (s fixedScorer) PredictProbability([]models.Value) (float64, error) {
	return s.probability, nil
}

type serviceFixture struct {
	svc        *ChatbotService
	classifier *stubClassifier
	store      *sessions.Store
	archive    *memoryArchive
}

func newFixture(t *testing.T) *serviceFixture {
	t.Helper()

	vectorizer, err := nlp.NewVectorizer([]string{"hello", "predict"}, []float64{1, 1})
	require.NoError(t, err)

	catalog := nlp.NewCatalog(map[string][]string{
		"greeting":    {"Hello! How can I help?"},
		"predictions": {"I can assess heart disease or asthma risk. Which would you like?"},
		"ask_time":    {"It's {time} right now."},
		"ask_weather": {"Let me check the sky for you."},
	})

	mean := make([]float64, 8)
	scale := []float64{1, 1, 1, 1, 1, 1, 1, 1}
	heartModel, err := dialog.NewHeartModel(make([]float64, 16), mean, scale)
	require.NoError(t, err)

	classifier := &stubClassifier{intent: "greeting", conf: 0.9}
	store := sessions.New(0)
	archive := &memoryArchive{}

	svc := NewChatbotService(
		vectorizer,
		classifier,
		catalog,
		[]*dialog.Engine{
			dialog.NewHeartEngine(heartModel),
			dialog.NewAsthmaEngine(fixedScorer{probability: 0.55}),
		},
		store,
		NewWeatherService("", "http://127.0.0.1:0", time.Second),
		archive,
		zap.NewNop(),
	)

	return &serviceFixture{svc: svc, classifier: classifier, store: store, archive: archive}
}

func (f *serviceFixture) send(t *testing.T, intent, message, userID string) *models.ChatResponse {
	t.Helper()
	if intent != "" {
		f.classifier.set(intent, 0.9)
	}
	resp, err := f.svc.ProcessMessage(context.Background(), models.ChatRequest{
		Message: message,
		UserID:  userID,
	})
	require.NoError(t, err)
	return resp
}

func TestEmptyMessageRejectedBeforeModels(t *testing.T) {
	f := newFixture(t)
	f.classifier.err = errors.New("must not be called")

	for _, message := range []string{"", "   ", "\n"} {
		_, err := f.svc.ProcessMessage(context.Background(), models.ChatRequest{Message: message})
		assert.ErrorIs(t, err, ErrEmptyMessage)
	}
}

func TestGeneratesUserIDWhenAbsent(t *testing.T) {
	f := newFixture(t)

	resp := f.send(t, "greeting", "hello", "")
	assert.NotEmpty(t, resp.UserID)
}

func TestPlainIntentGetsCatalogResponseWithConfidence(t *testing.T) {
	f := newFixture(t)

	resp := f.send(t, "greeting", "hello there", "user-1")
	assert.Equal(t, "greeting", resp.Intent)
	assert.Equal(t, "Hello! How can I help?", resp.Response)
	require.NotNil(t, resp.Confidence)
	assert.InDelta(t, 0.9, *resp.Confidence, 1e-9)
	assert.Nil(t, resp.CollectingData)
	assert.Equal(t, 0, f.store.Len())
}

func TestPredictionsWithKeywordStartsDialogDirectly(t *testing.T) {
	f := newFixture(t)

	resp := f.send(t, "predictions", "check my heart please", "user-1")
	assert.Equal(t, "heart_disease_prediction", resp.Intent)
	assert.Equal(t, "1/15", resp.Progress)

	sess, ok := f.store.Get("user-1")
	require.True(t, ok)
	assert.Equal(t, models.ContextHeartDialog, sess.Context)
}

func TestPredictionsWithoutKeywordAwaitsChoice(t *testing.T) {
	f := newFixture(t)

	resp := f.send(t, "predictions", "I'd like a prediction", "user-1")
	assert.Equal(t, "predictions", resp.Intent)
	assert.Contains(t, resp.Response, "heart disease or asthma")

	sess, ok := f.store.Get("user-1")
	require.True(t, ok)
	assert.Equal(t, models.ContextAwaitingPredictionType, sess.Context)

	// The follow-up picks a dialog without going through the classifier.
	f.classifier.err = errors.New("must not be called")
	resp = f.send(t, "", "asthma sounds right", "user-1")
	assert.Equal(t, "asthma_prediction", resp.Intent)
	assert.Equal(t, "1/14", resp.Progress)

	sess, ok = f.store.Get("user-1")
	require.True(t, ok)
	assert.Equal(t, models.ContextAsthmaDialog, sess.Context)
}

func TestAwaitingChoiceWithNoKeywordDiscardsSession(t *testing.T) {
	f := newFixture(t)

	f.send(t, "predictions", "I'd like a prediction", "user-1")
	resp := f.send(t, "", "pizza", "user-1")

	assert.Equal(t, "predictions", resp.Intent)
	assert.Contains(t, resp.Response, "Which one would you like to try?")
	assert.Equal(t, 0, f.store.Len())
}

func TestFullHeartDialogRunsToCompletion(t *testing.T) {
	f := newFixture(t)

	f.send(t, "predictions", "heart risk please", "user-1")

	answers := []string{"yes", "52", "3", "no", "0", "no", "no", "yes", "no",
		"210", "135", "88", "27.4", "72", "95"}

	var resp *models.ChatResponse
	for i, answer := range answers {
		resp = f.send(t, "", answer, "user-1")
		if i < len(answers)-1 {
			require.NotNil(t, resp.CollectingData, "answer %d", i)
			assert.True(t, *resp.CollectingData)
			assert.Nil(t, resp.Confidence, "dialog steps carry no confidence")
		}
	}

	require.NotNil(t, resp.Prediction)
	assert.InDelta(t, 0.5, resp.Prediction.Probability, 1e-12)
	assert.Contains(t, resp.Response, "Heart Disease Risk Assessment")

	_, ok := f.store.Get("user-1")
	assert.False(t, ok, "completed dialog must clear the session")
}

func TestInvalidAnswerRepromptsWithoutAdvancing(t *testing.T) {
	f := newFixture(t)

	f.send(t, "predictions", "heart check", "user-1")
	f.send(t, "", "yes", "user-1") // male -> now at age

	resp := f.send(t, "", "abc", "user-1")
	assert.Equal(t, "2/15", resp.Progress)
	assert.Contains(t, resp.Response, "Sorry, I didn't understand that.")
	assert.Contains(t, resp.Response, "What is your age?")

	sess, ok := f.store.Get("user-1")
	require.True(t, ok)
	assert.Equal(t, 1, sess.CurrentField)
}

func TestInterleavedUsersDoNotCrossContaminate(t *testing.T) {
	f := newFixture(t)

	f.send(t, "predictions", "heart for me", "alice")
	f.send(t, "predictions", "asthma for me", "bob")

	f.send(t, "", "yes", "alice") // alice: male answered
	f.send(t, "", "29", "bob")    // bob: age answered

	alice, ok := f.store.Get("alice")
	require.True(t, ok)
	bob, ok := f.store.Get("bob")
	require.True(t, ok)

	assert.Equal(t, models.ContextHeartDialog, alice.Context)
	assert.Equal(t, models.ContextAsthmaDialog, bob.Context)
	assert.Equal(t, models.Value{Number: 1}, alice.Answers["male"])
	assert.Equal(t, models.Value{Number: 29}, bob.Answers["Age"])
	assert.NotContains(t, alice.Answers, "Age")
	assert.NotContains(t, bob.Answers, "male")
}

func TestResetSessionIsIdempotent(t *testing.T) {
	f := newFixture(t)

	f.send(t, "predictions", "heart please", "user-1")
	assert.True(t, f.svc.ResetSession("user-1"))
	assert.False(t, f.svc.ResetSession("user-1"))
	assert.Equal(t, 0, f.store.Len())
}

func TestAskTimeSubstitutesCurrentTime(t *testing.T) {
	f := newFixture(t)
	f.svc.now = func() time.Time {
		return time.Date(2024, 3, 14, 14, 30, 5, 0, time.UTC)
	}

	resp := f.send(t, "ask_time", "what time is it", "user-1")
	assert.Equal(t, "It's 14:30:05 right now.", resp.Response)
}

func TestAskWeatherWithCity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"name": "London",
			"main": {"temp": 15.0, "feels_like": 12.8, "humidity": 70},
			"weather": [{"description": "clear sky"}],
			"wind": {"speed": 3.2}
		}`))
	}))
	defer server.Close()

	f := newFixture(t)
	f.svc.weather = NewWeatherService("key", server.URL, 5*time.Second)

	resp := f.send(t, "ask_weather", "weather in London", "user-1")
	assert.Contains(t, resp.Response, "Let me check the sky for you.")
	assert.Contains(t, resp.Response, "Weather in **London**")
	assert.Contains(t, resp.Response, "clear sky")
	assert.Contains(t, resp.Response, "Humidity: 70%")

	// Temperatures are echoed the way the provider reports them: whole
	// numbers keep the trailing ".0", fractional values stay exact.
	assert.Contains(t, resp.Response, "Temperature: 15.0°C (feels like 12.8°C)")
	assert.Contains(t, resp.Response, "Wind: 3.2 m/s")
}

func TestAskWeatherUnknownCity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer server.Close()

	f := newFixture(t)
	f.svc.weather = NewWeatherService("key", server.URL, 5*time.Second)

	resp := f.send(t, "ask_weather", "weather in Atlantis", "user-1")
	assert.Contains(t, resp.Response, "Sorry, I couldn't find weather info for 'atlantis'.")
}

func TestAskWeatherWithoutCityGivesHint(t *testing.T) {
	f := newFixture(t)

	resp := f.send(t, "ask_weather", "how's the sky looking", "user-1")
	assert.Contains(t, resp.Response, "Tell me a city!")
	assert.Contains(t, resp.Response, "weather in London")
}

func TestClassifierFailureSurfacesAsError(t *testing.T) {
	f := newFixture(t)
	f.classifier.err = errors.New("scoring failed")

	_, err := f.svc.ProcessMessage(context.Background(), models.ChatRequest{
		Message: "hello",
		UserID:  "user-1",
	})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrEmptyMessage)
}

func TestExchangesAreArchived(t *testing.T) {
	f := newFixture(t)

	f.send(t, "greeting", "hello", "user-1")
	f.send(t, "predictions", "heart please", "user-1")
	f.send(t, "", "yes", "user-1")

	f.archive.mu.Lock()
	defer f.archive.mu.Unlock()
	require.Len(t, f.archive.records, 3)
	assert.Equal(t, "hello", f.archive.records[0].UserMessage)
	assert.Equal(t, "greeting", f.archive.records[0].Intent)
	assert.True(t, f.archive.records[2].InDialog)
}

func TestStatusReportsModelAvailability(t *testing.T) {
	f := newFixture(t)

	status := f.svc.Status()
	assert.Equal(t, "ok", status.Status)
	assert.True(t, status.ModelLoaded)
	assert.Equal(t, 2, status.VocabSize)
	assert.True(t, status.HeartModelLoaded)
	assert.True(t, status.AsthmaModelLoaded)
}

func TestUnavailableDialogRefusesButServiceKeepsWorking(t *testing.T) {
	f := newFixture(t)

	// Replace the asthma engine with one whose model never loaded.
	f.svc.engines[1] = dialog.NewAsthmaEngine(nil)

	resp := f.send(t, "predictions", "asthma check", "user-1")
	assert.Equal(t, "error", resp.Intent)
	assert.Contains(t, resp.Response, "currently unavailable")
	assert.Equal(t, 0, f.store.Len())

	// Other features are untouched.
	resp = f.send(t, "greeting", "hello", "user-1")
	assert.Equal(t, "greeting", resp.Intent)

	status := f.svc.Status()
	assert.False(t, status.AsthmaModelLoaded)
	assert.True(t, status.HeartModelLoaded)
}
