package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// ChatSession groups a user's tutoring conversation.
type ChatSession struct {
	ent.Schema
}

func (ChatSession) Mixin() []ent.Mixin {
	return []ent.Mixin{TimeMixin{}}
}

func (ChatSession) Fields() []ent.Field {
	return []ent.Field{
		field.String("id").
			NotEmpty().
			Immutable(),
		field.String("user_id").
			NotEmpty(),
		field.String("title").
			Default(""),
	}
}

func (ChatSession) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id"),
	}
}

// ChatMessage is one turn of a chat session.
type ChatMessage struct {
	ent.Schema
}

func (ChatMessage) Mixin() []ent.Mixin {
	return []ent.Mixin{TimeMixin{}}
}

func (ChatMessage) Fields() []ent.Field {
	return []ent.Field{
		field.Int("id"),
		field.String("session_id").
			NotEmpty(),
		field.String("role").
			Comment("user or assistant"),
		field.Text("content"),
		field.Text("concepts").
			Default("[]").
			Comment("JSON array of concepts detected in the message"),
	}
}

func (ChatMessage) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("session_id", "id"),
	}
}

// CommonIssue counts a recurring misconception spotted in a user's chat.
type CommonIssue struct {
	ent.Schema
}

func (CommonIssue) Fields() []ent.Field {
	return []ent.Field{
		field.Int("id"),
		field.String("user_id").
			NotEmpty(),
		field.String("issue").
			NotEmpty(),
		field.String("concept").
			Default(""),
		field.Int("occurrences").
			Default(1),
		field.Int64("last_seen"),
	}
}

func (CommonIssue) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("user_id", "issue").
			Unique(),
	}
}
