package llm

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

// Strategy names the extraction step that located a JSON payload.
type Strategy string

const (
	StrategyWholeBody Strategy = "whole-body"
	StrategyJSONFence Strategy = "json-fence"
	StrategyFence     Strategy = "fence"
	StrategyBraces    Strategy = "balanced-braces"
)

var (
	jsonFencePattern    = regexp.MustCompile("(?is)```json[ \\t]*\\r?\\n?(.*?)```")
	genericFencePattern = regexp.MustCompile("(?s)```[A-Za-z0-9_+-]*[ \\t]*\\r?\\n?(.*?)```")
)

// extractor proposes candidate payloads from free text.
type extractor struct {
	strategy Strategy
	find     func(text string) []string
}

// extractors run in order; the first candidate that is a JSON object wins.
var extractors = []extractor{
	{StrategyWholeBody, func(text string) []string { return []string{text} }},
	{StrategyJSONFence, fenced(jsonFencePattern)},
	{StrategyFence, fenced(genericFencePattern)},
	{StrategyBraces, balancedObjects},
}

type candidate struct {
	raw      json.RawMessage
	strategy Strategy
}

// candidates returns every JSON object the extractors find, in strategy
// order.
func candidates(text string) []candidate {
	var out []candidate
	for _, ex := range extractors {
		for _, s := range ex.find(text) {
			s = strings.TrimSpace(s)
			if isJSONObject(s) {
				out = append(out, candidate{raw: json.RawMessage(s), strategy: ex.strategy})
			}
		}
	}
	return out
}

// ExtractJSON finds the first JSON object in an LLM completion: the whole
// body, a ```json fence, any fence, then the first balanced {...} span
// that parses.
func ExtractJSON(text string) (json.RawMessage, Strategy, bool) {
	c := candidates(text)
	if len(c) == 0 {
		return nil, "", false
	}
	return c[0].raw, c[0].strategy, true
}

func fenced(re *regexp.Regexp) func(string) []string {
	return func(text string) []string {
		var out []string
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			out = append(out, m[1])
		}
		return out
	}
}

// balancedObjects returns each top-level {...} span, skipping braces
// inside JSON strings.
func balancedObjects(text string) []string {
	var out []string
	start, depth := -1, 0
	inString, escaped := false, false

	for i := 0; i < len(text); i++ {
		ch := text[i]
		if depth > 0 {
			if escaped {
				escaped = false
				continue
			}
			if inString {
				switch ch {
				case '\\':
					escaped = true
				case '"':
					inString = false
				}
				continue
			}
			if ch == '"' {
				inString = true
				continue
			}
		}

		switch ch {
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				out = append(out, text[start:i+1])
				start = -1
			}
		}
	}
	return out
}

func isJSONObject(s string) bool {
	b := []byte(s)
	return len(b) > 0 && b[0] == '{' && json.Valid(b) && bytes.HasSuffix(bytes.TrimSpace(b), []byte("}"))
}
