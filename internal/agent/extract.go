// ABOUTME: Structured case data extraction from legal document text
// ABOUTME: Constrains the model with a JSON schema response format; salvages truncated output

package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/litigantportal/agentkit/internal/log"
	"github.com/litigantportal/agentkit/pkg/llm"
	"github.com/litigantportal/agentkit/pkg/llm/partjson"
)

// CourtInfo holds court identification details found in a document.
type CourtInfo struct {
	County     string `json:"county,omitempty"`
	CourtName  string `json:"court_name,omitempty"`
	CaseNumber string `json:"case_number,omitempty"`
	Address    string `json:"address,omitempty"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
}

// Parties holds the people and representatives named in a case.
type Parties struct {
	UserName       string `json:"user_name,omitempty"`
	UserAddress    string `json:"user_address,omitempty"`
	OpposingParty  string `json:"opposing_party,omitempty"`
	OpposingPhone  string `json:"opposing_phone,omitempty"`
	OpposingEmail  string `json:"opposing_email,omitempty"`
	AttorneyName   string `json:"attorney_name,omitempty"`
	AttorneyPhone  string `json:"attorney_phone,omitempty"`
	AttorneyEmail  string `json:"attorney_email,omitempty"`
}

// KeyDate is one date pulled from a document, flagged when it demands
// action from the recipient.
type KeyDate struct {
	Label      string `json:"label"`
	Date       string `json:"date"`
	IsDeadline bool   `json:"is_deadline"`
}

// CaseData is the structured extraction result for one legal document.
type CaseData struct {
	CaseType   string    `json:"case_type"`
	CourtInfo  CourtInfo `json:"court_info"`
	Parties    Parties   `json:"parties"`
	KeyDates   []KeyDate `json:"key_dates"`
	Summary    string    `json:"summary"`
	Confidence float64   `json:"confidence"`
}

// caseDataResponseFormat constrains model output to the CaseData shape.
const caseDataResponseFormat = `{
	"type": "json_schema",
	"json_schema": {
		"name": "case_data",
		"schema": {
			"type": "object",
			"properties": {
				"case_type": {"type": "string", "description": "The type of legal matter (e.g., 'Eviction', 'Small Claims', 'Divorce', 'Debt Collection')"},
				"court_info": {
					"type": "object",
					"properties": {
						"county": {"type": "string"},
						"court_name": {"type": "string"},
						"case_number": {"type": "string"},
						"address": {"type": "string"},
						"phone": {"type": "string"},
						"email": {"type": "string"}
					}
				},
				"parties": {
					"type": "object",
					"properties": {
						"user_name": {"type": "string", "description": "The person who likely received this document"},
						"user_address": {"type": "string"},
						"opposing_party": {"type": "string"},
						"opposing_phone": {"type": "string"},
						"opposing_email": {"type": "string"},
						"attorney_name": {"type": "string"},
						"attorney_phone": {"type": "string"},
						"attorney_email": {"type": "string"}
					}
				},
				"key_dates": {
					"type": "array",
					"items": {
						"type": "object",
						"properties": {
							"label": {"type": "string"},
							"date": {"type": "string", "description": "YYYY-MM-DD when possible, otherwise as written"},
							"is_deadline": {"type": "boolean"}
						},
						"required": ["label", "date", "is_deadline"]
					}
				},
				"summary": {"type": "string", "description": "Concise, actionable summary with specific dates, addresses, and amounts"},
				"confidence": {"type": "number", "minimum": 0, "maximum": 1}
			},
			"required": ["case_type", "summary", "confidence"]
		}
	}
}`

// ExtractCaseData runs the extractor agent over document text and
// decodes the structured result. Output cut off by the token budget is
// salvaged best-effort before giving up.
func ExtractCaseData(ctx context.Context, provider llm.Provider, model, documentText string) (*CaseData, error) {
	def, _ := NewDefRegistry(BuiltinDefinitions()...).Get("extractor")

	a, err := New(Config{
		Provider:       provider,
		Model:          model,
		Messages:       []llm.Message{llm.SystemMessage(def.SystemPrompt)},
		MaxSteps:       1,
		MaxTokens:      def.MaxTokens,
		ResponseFormat: json.RawMessage(caseDataResponseFormat),
	})
	if err != nil {
		return nil, err
	}

	for ev := range a.Run(ctx, documentText) {
		if ev.Type == EventError {
			return nil, fmt.Errorf("extracting case data: %w", ev.Err)
		}
	}

	var raw string
	msgs := a.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == llm.RoleAssistant && msgs[i].Content != "" {
			raw = msgs[i].Content
			break
		}
	}
	if raw == "" {
		return nil, fmt.Errorf("extractor produced no output")
	}

	var data CaseData
	if err := json.Unmarshal([]byte(raw), &data); err == nil {
		return &data, nil
	}

	// The model may have hit the token budget mid-object. Repair the
	// fragment and re-decode whatever survived.
	log.Warn("extractor output is not valid JSON, attempting salvage")
	salvaged, err := json.Marshal(partjson.Parse(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding extraction result: %w", err)
	}
	if err := json.Unmarshal(salvaged, &data); err != nil {
		return nil, fmt.Errorf("decoding extraction result: %w", err)
	}
	if data.CaseType == "" && data.Summary == "" {
		return nil, fmt.Errorf("extraction result unsalvageable")
	}
	return &data, nil
}
