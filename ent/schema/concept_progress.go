package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ConceptProgress is a user's mastery of one concept.
type ConceptProgress struct {
	ent.Schema
}

func (ConceptProgress) Fields() []ent.Field {
	return []ent.Field{
		field.Int("id"),
		field.String("user_id").
			NotEmpty(),
		field.String("concept").
			NotEmpty(),
		field.Float("mastery").
			Default(0).
			Comment("0..1"),
		field.Int("practice_count").
			Default(0),
		field.Int("correct_count").
			Default(0),
		field.Int("chat_mentions").
			Default(0),
		field.Int64("last_practiced").
			Default(0).
			Comment("Unix milliseconds; 0 when never practiced"),
	}
}

func (ConceptProgress) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "concept").
			Unique(),
	}
}
