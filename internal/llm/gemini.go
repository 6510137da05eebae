package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"google.golang.org/genai"
)

var geminiModels = map[string]string{
	"gemini-flash": "gemini-2.0-flash",
	"gemini-pro":   "gemini-2.0-pro",
}

// GeminiProvider implements Provider on the Gemini API.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return &GeminiProvider{client: client, model: resolveModel(cfg.Model, geminiModels)}, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	result, err := p.client.Models.GenerateContent(ctx, p.model, geminiContents(req.Messages), geminiRequestConfig(req))
	if err != nil {
		return nil, mapGeminiError(err)
	}
	return geminiResponse(req, p.model, result)
}

func (p *GeminiProvider) ModelID() string {
	return p.model
}

func geminiRequestConfig(req Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{MaxOutputTokens: int32(req.MaxTokens)}
	if req.Temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(req.Temperature))
	}
	if req.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}}
	}
	if req.Schema != nil {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = geminiSchema(req.Schema.Definition)
	}
	return cfg
}

// geminiContents maps the conversation; Gemini calls the assistant "model".
func geminiContents(msgs []Message) []*genai.Content {
	out := make([]*genai.Content, len(msgs))
	for i, m := range msgs {
		role := genai.RoleUser
		if m.Role == RoleAssistant {
			role = genai.RoleModel
		}
		out[i] = &genai.Content{Role: role, Parts: []*genai.Part{{Text: m.Content}}}
	}
	return out
}

// geminiResponse turns a GenerateContent result into a Response. Safety
// blocks on either the prompt or the candidate are reported as
// ErrContentBlocked.
func geminiResponse(req Request, model string, result *genai.GenerateContentResponse) (*Response, error) {
	if fb := result.PromptFeedback; fb != nil && fb.BlockReason != "" {
		return nil, &ErrContentBlocked{Reason: string(fb.BlockReason)}
	}

	stop := "end"
	if len(result.Candidates) > 0 {
		switch reason := result.Candidates[0].FinishReason; reason {
		case genai.FinishReasonSafety, genai.FinishReasonProhibitedContent,
			genai.FinishReasonBlocklist, genai.FinishReasonSPII:
			return nil, &ErrContentBlocked{Reason: string(reason)}
		default:
			stop = normalizeStopReason(string(reason))
		}
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return nil, &ErrInvalidResponse{Err: errors.New("no text in Gemini response")}
	}
	content := json.RawMessage(text)
	if err := checkTruncated(req, stop, content); err != nil {
		return nil, err
	}
	if err := validateResponse(req.Schema, content); err != nil {
		return nil, err
	}

	resp := &Response{Content: content, Model: model, StopReason: stop}
	if u := result.UsageMetadata; u != nil {
		resp.Usage = Usage{
			InputTokens:  int(u.PromptTokenCount),
			OutputTokens: int(u.CandidatesTokenCount),
			TotalTokens:  int(u.TotalTokenCount),
		}
	}
	return resp, nil
}

// geminiSchema converts a JSON Schema definition into the OpenAPI subset
// Gemini accepts. A type union with "null" becomes a nullable type and a
// union of several types becomes anyOf. Bounds may be any Go number, as
// written in the grading and authoring schemas.
func geminiSchema(def map[string]any) *genai.Schema {
	s := &genai.Schema{}
	s.Description, _ = def["description"].(string)

	types, nullable := schemaTypes(def["type"])
	items, _ := def["items"].(map[string]any)
	switch len(types) {
	case 0:
	case 1:
		s.Type = geminiType(types[0])
		if s.Type == genai.TypeArray && items != nil {
			s.Items = geminiSchema(items)
		}
	default:
		for _, t := range types {
			member := &genai.Schema{Type: geminiType(t)}
			if member.Type == genai.TypeArray && items != nil {
				member.Items = geminiSchema(items)
			}
			s.AnyOf = append(s.AnyOf, member)
		}
	}
	if nullable {
		s.Nullable = genai.Ptr(true)
	}

	s.Required = stringList(def["required"])
	s.Enum = stringList(def["enum"])
	if props, ok := def["properties"].(map[string]any); ok {
		s.Properties = make(map[string]*genai.Schema, len(props))
		for name, v := range props {
			if pd, ok := v.(map[string]any); ok {
				s.Properties[name] = geminiSchema(pd)
			}
		}
		s.PropertyOrdering = propertyOrder(s.Properties, s.Required)
	}

	s.Minimum = schemaNumber(def["minimum"])
	s.Maximum = schemaNumber(def["maximum"])
	s.MinLength = schemaCount(def["minLength"])
	s.MinItems = schemaCount(def["minItems"])
	s.MaxItems = schemaCount(def["maxItems"])
	return s
}

// schemaTypes splits a "type" value, a string or a list, into its non-null
// members and whether null was allowed.
func schemaTypes(v any) (types []string, nullable bool) {
	for _, t := range stringList(v) {
		if t == "null" {
			nullable = true
			continue
		}
		types = append(types, t)
	}
	return types, nullable
}

func stringList(v any) []string {
	switch v := v.(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func schemaNumber(v any) *float64 {
	switch n := v.(type) {
	case int:
		return genai.Ptr(float64(n))
	case int64:
		return genai.Ptr(float64(n))
	case float32:
		return genai.Ptr(float64(n))
	case float64:
		return genai.Ptr(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return genai.Ptr(f)
		}
	}
	return nil
}

func schemaCount(v any) *int64 {
	if f := schemaNumber(v); f != nil {
		return genai.Ptr(int64(*f))
	}
	return nil
}

// propertyOrder lists required properties first, as declared, then the
// rest alphabetically, so "score" precedes "feedback" in a grade.
func propertyOrder(props map[string]*genai.Schema, required []string) []string {
	order := make([]string, 0, len(props))
	for _, name := range required {
		if _, ok := props[name]; ok {
			order = append(order, name)
		}
	}
	for _, name := range slices.Sorted(maps.Keys(props)) {
		if !slices.Contains(order, name) {
			order = append(order, name)
		}
	}
	return order
}

func geminiType(t string) genai.Type {
	switch t {
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

// mapGeminiError classifies a GenerateContent failure. The SDK returns
// APIError by value.
func mapGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return mapHTTPStatus(apiErr.Code, nil, err)
	}
	return &ErrProviderUnavailable{Err: err}
}
