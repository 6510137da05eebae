package store

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"entgo.io/ent"
	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	entschema "github.com/abhisek/statlab/ent/schema"
)

// Table names.
const (
	tableQuestions    = "questions"
	tableAnswers      = "answers"
	tableProgress     = "concept_progress"
	tableChatSessions = "chat_sessions"
	tableChatMessages = "chat_messages"
	tableCommonIssues = "common_issues"
	tableLLMEvents    = "llm_events"
)

// entity is the part of an ent schema the migrator reads.
type entity interface {
	Fields() []ent.Field
	Indexes() []ent.Index
	Mixin() []ent.Mixin
}

var entities = []struct {
	table  string
	schema entity
}{
	{tableQuestions, entschema.Question{}},
	{tableAnswers, entschema.Answer{}},
	{tableProgress, entschema.ConceptProgress{}},
	{tableChatSessions, entschema.ChatSession{}},
	{tableChatMessages, entschema.ChatMessage{}},
	{tableCommonIssues, entschema.CommonIssue{}},
	{tableLLMEvents, entschema.LLMEvent{}},
}

// migrate creates or alters every table declared in ent/schema.
func migrate(ctx context.Context, drv dialect.Driver) error {
	tables := make([]*schema.Table, 0, len(entities))
	for _, e := range entities {
		t, err := buildTable(e.table, e.schema)
		if err != nil {
			return fmt.Errorf("table %s: %w", e.table, err)
		}
		tables = append(tables, t)
	}

	m, err := schema.NewMigrate(drv, schema.WithForeignKeys(false))
	if err != nil {
		return fmt.Errorf("new migrate: %w", err)
	}
	return m.Create(ctx, tables...)
}

// buildTable turns an ent schema's field and index descriptors into a
// migration table. A field named "id" becomes the primary key; integer
// ids auto-increment.
func buildTable(name string, e entity) (*schema.Table, error) {
	var fields []ent.Field
	var indexes []ent.Index
	for _, m := range e.Mixin() {
		fields = append(fields, m.Fields()...)
		indexes = append(indexes, m.Indexes()...)
	}
	fields = append(fields, e.Fields()...)
	indexes = append(indexes, e.Indexes()...)

	t := schema.NewTable(name)
	for _, f := range fields {
		d := f.Descriptor()
		if d.Err != nil {
			return nil, fmt.Errorf("field %s: %w", d.Name, d.Err)
		}
		col := columnFor(d)
		if col.Name == "id" {
			col.Increment = d.Info.Type.Integer()
			t.AddPrimary(col)
			continue
		}
		t.AddColumn(col)
	}

	for _, ix := range indexes {
		d := ix.Descriptor()
		t.AddIndex(name+"_"+strings.Join(d.Fields, "_"), d.Unique, d.Fields)
	}
	return t, nil
}

func columnFor(d *field.Descriptor) *schema.Column {
	col := &schema.Column{
		Name:     d.Name,
		Type:     d.Info.Type,
		Unique:   d.Unique,
		Nullable: d.Optional,
		Size:     int64(d.Size),
		Comment:  d.Comment,
	}
	if d.StorageKey != "" {
		col.Name = d.StorageKey
	}
	// Function defaults (time.Now and friends) are applied by the repos.
	if d.Default != nil && reflect.TypeOf(d.Default).Kind() != reflect.Func {
		col.Default = d.Default
	}
	return col
}
