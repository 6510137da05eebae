package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Answer records one graded submission. Rows are append-only.
type Answer struct {
	ent.Schema
}

func (Answer) Mixin() []ent.Mixin {
	return []ent.Mixin{TimeMixin{}}
}

func (Answer) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			NotEmpty().
			Immutable(),
		field.String("submission_id").
			NotEmpty().
			Comment("Client idempotency key, unique per user"),
		field.String("user_id").
			NotEmpty(),
		field.String("question_id").
			NotEmpty(),
		field.String("session_id").
			Default(""),
		field.Text("user_answer"),
		field.Bool("is_correct"),
		field.Int("score").
			Optional().
			Nillable().
			Comment("0..100; null for legacy closed-form rows"),
		field.Text("feedback").
			Default(""),
		field.String("grading_mode").
			Default(""),
		field.Int64("time_taken_ms").
			Default(0),
	}
}

func (Answer) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "created_at"),
		index.Fields("question_id"),
		index.Fields("user_id", "submission_id").
			Unique(),
	}
}
