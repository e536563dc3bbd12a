package dialog

import (
	"fmt"
	"math"

	"github.com/Str1k3rFl0/Afira-ChatBotAI/models"
)

// heartScaledIndices are the schema positions standardized before scoring.
// The remaining positions are binary flags and pass through unscaled.
var heartScaledIndices = []int{1, 4, 9, 10, 11, 12, 13, 14}

var heartFields = []FieldSpec{
	{Name: "male", Prompt: "Are you male? (yes/no)", Type: Binary},
	{Name: "age", Prompt: "What is your age?", Type: Numeric},
	{Name: "education", Prompt: "Education level (1-4, where 1=some high school, 4=college)", Type: Numeric},
	{Name: "currentSmoker", Prompt: "Are you currently a smoker? (yes/no)", Type: Binary},
	{Name: "cigsPerDay", Prompt: "How many cigarettes per day?", Type: Numeric},
	{Name: "BPMeds", Prompt: "Are you on blood pressure medication? (yes/no)", Type: Binary},
	{Name: "prevalentStroke", Prompt: "Have you had a stroke? (yes/no)", Type: Binary},
	{Name: "prevalentHyp", Prompt: "Do you have hypertension? (yes/no)", Type: Binary},
	{Name: "diabetes", Prompt: "Do you have diabetes? (yes/no)", Type: Binary},
	{Name: "totChol", Prompt: "What is your total cholesterol level (mg/dL)?", Type: Numeric},
	{Name: "sysBP", Prompt: "What is your systolic blood pressure?", Type: Numeric},
	{Name: "diaBP", Prompt: "What is your diastolic blood pressure?", Type: Numeric},
	{Name: "BMI", Prompt: "What is your BMI (Body Mass Index)?", Type: Numeric},
	{Name: "heartRate", Prompt: "What is your heart rate (bpm)?", Type: Numeric},
	{Name: "glucose", Prompt: "What is your glucose level (mg/dL)?", Type: Numeric},
}

// HeartModel is the cardiovascular logistic regression: standardize the
// numeric feature subset, prepend a bias term of 1, dot with theta, apply
// the logistic function.
type HeartModel struct {
	theta []float64
	mean  []float64
	scale []float64
}

// NewHeartModel checks artifact shapes: theta needs one weight per field
// plus the bias, and the scaler must cover exactly the standardized subset.
func NewHeartModel(theta, mean, scale []float64) (*HeartModel, error) {
	if len(theta) != len(heartFields)+1 {
		return nil, fmt.Errorf("heart theta has %d weights, want %d", len(theta), len(heartFields)+1)
	}
	if len(mean) != len(heartScaledIndices) || len(scale) != len(heartScaledIndices) {
		return nil, fmt.Errorf("heart scaler has %d/%d parameters, want %d",
			len(mean), len(scale), len(heartScaledIndices))
	}
	for i, s := range scale {
		if s == 0 {
			return nil, fmt.Errorf("heart scaler parameter %d is zero", i)
		}
	}

	return &HeartModel{
		theta: append([]float64(nil), theta...),
		mean:  append([]float64(nil), mean...),
		scale: append([]float64(nil), scale...),
	}, nil
}

// PredictProbability scores answers given in schema order.
func (m *HeartModel) PredictProbability(answers []models.Value) (float64, error) {
	if len(answers) != len(heartFields) {
		return 0, fmt.Errorf("heart model got %d answers, want %d", len(answers), len(heartFields))
	}

	features := make([]float64, len(answers))
	for i, v := range answers {
		if v.IsText {
			return 0, fmt.Errorf("heart model got a text answer for field %q", heartFields[i].Name)
		}
		features[i] = v.Number
	}

	for j, idx := range heartScaledIndices {
		features[idx] = (features[idx] - m.mean[j]) / m.scale[j]
	}

	z := m.theta[0]
	for i, f := range features {
		z += m.theta[i+1] * f
	}

	return sigmoid(z), nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// NewHeartEngine builds the cardiovascular dialog. A nil model yields an
// engine that refuses to start but still answers keyword checks.
func NewHeartEngine(model *HeartModel) *Engine {
	e := &Engine{
		context: models.ContextHeartDialog,
		title:   "Heart Disease Risk Assessment",
		intro: "I'll help you assess your 10-year risk of coronary heart disease (CHD). " +
			"I need to collect some health information.",
		ack:            "Got it!",
		retryMsg:       "Sorry, I didn't understand that.",
		unavailableMsg: "Heart disease prediction is currently unavailable. Please contact support.",
		probLabel:      "10-Year CHD Probability",
		note: "*Note: This is a statistical prediction based on the Framingham Heart Study. " +
			"It is not a medical diagnosis. Always consult healthcare professionals for medical advice.*",
		keywords: []string{"heart", "cardiac", "cardiovascular", "chd", "coronary"},
		fields:   heartFields,
		bands: []RiskBand{
			{UpperPercent: 10, Level: "Low", Emoji: "✅",
				Advice: "Great! Maintain a healthy lifestyle with regular exercise and balanced diet."},
			{UpperPercent: 30, Level: "Moderate", Emoji: "⚠️",
				Advice: "Consider lifestyle improvements and regular health check-ups."},
			{UpperPercent: math.MaxFloat64, Level: "High", Emoji: "🚨",
				Advice: "Please consult with a healthcare professional for a proper medical evaluation as soon as possible."},
		},
	}
	if model != nil {
		e.scorer = model
	}
	return e
}
