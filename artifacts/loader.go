// Package artifacts loads the pretrained model exports from disk and hands
// them to the core as ready capabilities. The files are JSON exports of the
// upstream training pipeline's pickles: vocab.json, intent_model.json,
// intents.json, heart_model.json and asthma_model.json.
package artifacts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Str1k3rFl0/Afira-ChatBotAI/dialog"
	"github.com/Str1k3rFl0/Afira-ChatBotAI/nlp"
)

// Bundle is everything the dispatcher needs, fully constructed.
type Bundle struct {
	Vectorizer *nlp.Vectorizer
	Classifier *nlp.LinearClassifier
	Catalog    *nlp.Catalog
	Heart      *dialog.Engine
	Asthma     *dialog.Engine
}

type vocabFile struct {
	Tokens []string  `json:"tokens"`
	IDF    []float64 `json:"idf"`
}

type intentModelFile struct {
	Labels     []string    `json:"labels"`
	Weights    [][]float64 `json:"weights"`
	Intercepts []float64   `json:"intercepts"`
}

type intentsFile struct {
	Intents []struct {
		Name      string   `json:"name"`
		Responses []string `json:"responses"`
	} `json:"intents"`
}

type heartModelFile struct {
	Theta  []float64 `json:"theta"`
	Scaler struct {
		Mean  []float64 `json:"mean"`
		Scale []float64 `json:"scale"`
	} `json:"scaler"`
}

type asthmaModelFile struct {
	Weights   []float64                     `json:"weights"`
	Intercept float64                       `json:"intercept"`
	Encodings map[string]map[string]float64 `json:"encodings"`
}

// Load reads every artifact under dir. The NLP artifacts are mandatory; a
// risk model that fails to load only disables its own dialog, which is
// reported through /health.
func Load(dir string, logger *zap.Logger) (*Bundle, error) {
	var vocab vocabFile
	if err := readJSON(filepath.Join(dir, "vocab.json"), &vocab); err != nil {
		return nil, fmt.Errorf("loading vocabulary: %w", err)
	}

	vectorizer, err := nlp.NewVectorizer(vocab.Tokens, vocab.IDF)
	if err != nil {
		return nil, fmt.Errorf("loading vocabulary: %w", err)
	}
	logger.Info("vocabulary loaded", zap.Int("size", vectorizer.VocabSize()))

	var intentModel intentModelFile
	if err := readJSON(filepath.Join(dir, "intent_model.json"), &intentModel); err != nil {
		return nil, fmt.Errorf("loading intent model: %w", err)
	}

	classifier, err := nlp.NewLinearClassifier(
		intentModel.Labels, intentModel.Weights, intentModel.Intercepts, vectorizer.VocabSize())
	if err != nil {
		return nil, fmt.Errorf("loading intent model: %w", err)
	}
	logger.Info("intent model loaded", zap.Int("labels", len(intentModel.Labels)))

	var intents intentsFile
	if err := readJSON(filepath.Join(dir, "intents.json"), &intents); err != nil {
		return nil, fmt.Errorf("loading intent catalog: %w", err)
	}

	templates := make(map[string][]string, len(intents.Intents))
	for _, intent := range intents.Intents {
		templates[intent.Name] = intent.Responses
	}
	catalog := nlp.NewCatalog(templates)
	logger.Info("intent catalog loaded", zap.Int("intents", catalog.Size()))

	return &Bundle{
		Vectorizer: vectorizer,
		Classifier: classifier,
		Catalog:    catalog,
		Heart:      loadHeartEngine(dir, logger),
		Asthma:     loadAsthmaEngine(dir, logger),
	}, nil
}

func loadHeartEngine(dir string, logger *zap.Logger) *dialog.Engine {
	var file heartModelFile
	if err := readJSON(filepath.Join(dir, "heart_model.json"), &file); err != nil {
		logger.Warn("heart disease model unavailable", zap.Error(err))
		return dialog.NewHeartEngine(nil)
	}

	model, err := dialog.NewHeartModel(file.Theta, file.Scaler.Mean, file.Scaler.Scale)
	if err != nil {
		logger.Warn("heart disease model unavailable", zap.Error(err))
		return dialog.NewHeartEngine(nil)
	}

	logger.Info("heart disease model loaded", zap.Int("theta", len(file.Theta)))
	return dialog.NewHeartEngine(model)
}

func loadAsthmaEngine(dir string, logger *zap.Logger) *dialog.Engine {
	var file asthmaModelFile
	if err := readJSON(filepath.Join(dir, "asthma_model.json"), &file); err != nil {
		logger.Warn("asthma model unavailable", zap.Error(err))
		return dialog.NewAsthmaEngine(nil)
	}

	model, err := dialog.NewAsthmaModel(file.Weights, file.Intercept, file.Encodings)
	if err != nil {
		logger.Warn("asthma model unavailable", zap.Error(err))
		return dialog.NewAsthmaEngine(nil)
	}

	logger.Info("asthma model loaded", zap.Int("features", len(file.Weights)))
	return dialog.NewAsthmaEngine(model)
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return nil
}
