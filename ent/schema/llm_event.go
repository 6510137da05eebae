package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// LLMEvent records every LLM API call for cost tracking and debugging.
type LLMEvent struct {
	ent.Schema
}

func (LLMEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{TimeMixin{}}
}

func (LLMEvent) Fields() []ent.Field {
	return []ent.Field{
		field.Int("id"),
		field.String("provider"),
		field.String("model"),
		field.String("purpose").
			Comment("answer-grading, question-gen or chat"),
		field.Int("input_tokens").
			Default(0),
		field.Int("output_tokens").
			Default(0),
		field.Int64("latency_ms").
			Default(0),
		field.Bool("success"),
		field.Text("error_message").
			Default(""),
		field.Text("request_body").
			Default(""),
		field.Text("response_body").
			Default(""),
	}
}

func (LLMEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("purpose"),
		index.Fields("success"),
	}
}
