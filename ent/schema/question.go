package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// Question is a practice question in the corpus.
type Question struct {
	ent.Schema
}

func (Question) Mixin() []ent.Mixin {
	return []ent.Mixin{TimeMixin{}}
}

func (Question) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			NotEmpty().
			Immutable(),
		field.String("concept").
			NotEmpty().
			Comment("Canonical concept name"),
		field.Int("difficulty").
			Comment("1 basic, 2 medium, 3 advanced"),
		field.String("question_type").
			NotEmpty(),
		field.Text("question_text").
			NotEmpty(),
		field.Text("options").
			Default("[]").
			Comment("JSON array of choice texts"),
		field.Text("correct_answer"),
		field.Text("explanation").
			Default(""),
		field.String("source").
			Default("question_bank").
			Comment("question_bank, teacher or ai_generated"),
		field.Bool("active").
			Default(true),
	}
}

func (Question) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("concept", "difficulty", "active"),
		index.Fields("question_type"),
	}
}
