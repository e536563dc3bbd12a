package dialog

import (
	"fmt"
	"math"

	"github.com/Str1k3rFl0/Afira-ChatBotAI/models"
)

var asthmaFields = []FieldSpec{
	{Name: "Age", Prompt: "What is your age?", Type: Numeric},
	{Name: "Gender", Prompt: "What is your gender? (Male/Female)", Type: Categorical,
		Options: []CategoryOption{
			{Label: "Male", Aliases: []string{"m"}},
			{Label: "Female", Aliases: []string{"f"}},
		}},
	{Name: "BMI", Prompt: "What is your Body Mass Index (BMI)?", Type: Numeric},
	{Name: "Smoking_Status", Prompt: "Smoking status? (Never/Former/Current)", Type: Categorical},
	{Name: "Family_History", Prompt: "Do you have a family history of asthma? (0=No, 1=Yes)", Type: Binary},
	{Name: "Allergies", Prompt: "Do you have allergies? (None/Dust/Pollen/Pet/Multiple)", Type: Categorical,
		Options: []CategoryOption{
			{Label: "None"},
			{Label: "Dust"},
			{Label: "Pollen"},
			{Label: "Pet"},
			{Label: "Multiple"},
		}},
	{Name: "Air_Pollution_Level", Prompt: "What is the air pollution level in your area? (Low/Moderate/High)", Type: Categorical},
	{Name: "Physical_Activity_Level", Prompt: "What is your level of physical activity? (Sedentary/Moderate/Active)", Type: Categorical},
	{Name: "Occupation_Type", Prompt: "What type of occupation do you have? (Indoor/Outdoor)", Type: Categorical},
	{Name: "Comorbidities", Prompt: "Do you have any comorbidities? (None/Diabetes/Hypertension/Both)", Type: Categorical,
		Options: []CategoryOption{
			{Label: "None"},
			{Label: "Diabetes"},
			{Label: "Hypertension"},
			{Label: "Both"},
		}},
	{Name: "Medication_Adherence", Prompt: "What is your medication adherence level? (value between 0 and 1)", Type: Numeric},
	{Name: "Number_of_ER_Visits", Prompt: "How many emergency room visits have you had in the past year?", Type: Numeric},
	{Name: "Peak_Expiratory_Flow", Prompt: "Peak Expiratory Flow (PEF) - value in L/min?", Type: Numeric},
	{Name: "FeNO_Level", Prompt: "What is your FeNO level (Fractional Exhaled Nitric Oxide)?", Type: Numeric},
}

// AsthmaModel is the shipped respiratory scorer: a logistic model over the
// encoded schema features. The engine only sees it through Scorer, so a
// different export of the upstream classifier can replace it wholesale.
type AsthmaModel struct {
	weights   []float64
	intercept float64
	// encodings[i] maps canonical labels of categorical field i to their
	// numeric codes. Nil for non-categorical fields. Labels the export
	// never saw encode to 0.
	encodings []map[string]float64
}

// NewAsthmaModel aligns the per-field-name encoding tables with the schema.
func NewAsthmaModel(weights []float64, intercept float64, encodingsByField map[string]map[string]float64) (*AsthmaModel, error) {
	if len(weights) != len(asthmaFields) {
		return nil, fmt.Errorf("asthma model has %d weights, want %d", len(weights), len(asthmaFields))
	}

	encodings := make([]map[string]float64, len(asthmaFields))
	for i, field := range asthmaFields {
		if field.Type != Categorical {
			continue
		}
		table, ok := encodingsByField[field.Name]
		if !ok {
			return nil, fmt.Errorf("asthma model is missing encodings for field %q", field.Name)
		}
		encodings[i] = table
	}

	return &AsthmaModel{
		weights:   append([]float64(nil), weights...),
		intercept: intercept,
		encodings: encodings,
	}, nil
}

// PredictProbability scores answers given in schema order.
func (m *AsthmaModel) PredictProbability(answers []models.Value) (float64, error) {
	if len(answers) != len(asthmaFields) {
		return 0, fmt.Errorf("asthma model got %d answers, want %d", len(answers), len(asthmaFields))
	}

	z := m.intercept
	for i, v := range answers {
		feature := v.Number
		if v.IsText {
			feature = m.encodings[i][v.Text]
		}
		z += m.weights[i] * feature
	}

	return sigmoid(z), nil
}

// NewAsthmaEngine builds the respiratory dialog around an opaque scorer.
// A nil scorer yields an engine that refuses to start.
func NewAsthmaEngine(scorer Scorer) *Engine {
	return &Engine{
		context: models.ContextAsthmaDialog,
		title:   "Asthma Risk Assessment",
		intro: "I will help you assess your asthma risk. " +
			"I need to collect some information about your health and environment.",
		ack:            "Perfect!",
		retryMsg:       "Sorry, I didn't understand. Please try again.",
		unavailableMsg: "Asthma prediction is currently unavailable. Please contact support.",
		probLabel:      "Probability of Asthma",
		note: "*Note: This is a statistical prediction based on machine learning analysis. " +
			"It is not a medical diagnosis. Always consult a medical professional for medical advice.*",
		keywords: []string{"asthma", "astm", "breathing", "wheezing", "respiratory", "lung"},
		fields:   asthmaFields,
		bands: []RiskBand{
			{UpperPercent: 30, Level: "Low", Emoji: "✅",
				Advice: "Low risk of asthma. Continue to maintain a healthy lifestyle and avoid known allergens."},
			{UpperPercent: 60, Level: "Moderate", Emoji: "⚠️",
				Advice: "Moderate risk detected. Consider consulting a medical professional for evaluation and preventive measures."},
			{UpperPercent: math.MaxFloat64, Level: "High", Emoji: "🚨",
				Advice: "High risk of asthma. Please consult a pulmonologist or medical professional for appropriate evaluation and management as soon as possible."},
		},
		scorer: scorer,
	}
}
