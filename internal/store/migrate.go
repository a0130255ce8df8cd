package store

import (
	"context"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

var (
	// ItemsColumns holds the columns for the "items" table.
	ItemsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString},
		{Name: "kind", Type: field.TypeString, Default: "topic"},
		{Name: "subject", Type: field.TypeString},
		{Name: "title", Type: field.TypeString},
		{Name: "mastery_level", Type: field.TypeInt, Default: 0},
		{Name: "phase", Type: field.TypeString, Default: "initial"},
		{Name: "review_interval", Type: field.TypeInt, Default: 1},
		{Name: "next_review", Type: field.TypeTime, Nullable: true},
		{Name: "exam_date", Type: field.TypeTime, Nullable: true},
		{Name: "fsrs_state", Type: field.TypeString, Nullable: true, Size: 2048},
		{Name: "version", Type: field.TypeInt64, Default: 1},
		{Name: "created_at", Type: field.TypeTime},
	}
	// ItemsTable holds the schema information for the "items" table.
	ItemsTable = &schema.Table{
		Name:       "items",
		Columns:    ItemsColumns,
		PrimaryKey: []*schema.Column{ItemsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "item_subject", Columns: []*schema.Column{ItemsColumns[2]}},
			{Name: "item_next_review", Columns: []*schema.Column{ItemsColumns[7]}},
		},
	}

	// ReviewLogsColumns holds the columns for the "review_logs" table.
	ReviewLogsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "sequence", Type: field.TypeInt64},
		{Name: "date", Type: field.TypeTime},
		{Name: "rating", Type: field.TypeInt},
		{Name: "interval_days", Type: field.TypeInt},
		{Name: "added_to_calendar", Type: field.TypeBool, Default: false},
		{Name: "calendar_event_id", Type: field.TypeString, Nullable: true},
		{Name: "item_id", Type: field.TypeString},
	}
	// ReviewLogsTable holds the schema information for the "review_logs" table.
	ReviewLogsTable = &schema.Table{
		Name:       "review_logs",
		Columns:    ReviewLogsColumns,
		PrimaryKey: []*schema.Column{ReviewLogsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "review_logs_items_logs",
				Columns:    []*schema.Column{ReviewLogsColumns[7]},
				RefColumns: []*schema.Column{ItemsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "reviewlog_item_id_sequence", Columns: []*schema.Column{ReviewLogsColumns[7], ReviewLogsColumns[1]}},
		},
	}

	// StudySessionsColumns holds the columns for the "study_sessions" table.
	StudySessionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "date", Type: field.TypeTime},
		{Name: "mastery_gained", Type: field.TypeFloat64},
		{Name: "duration_minutes", Type: field.TypeInt, Default: 0},
		{Name: "item_id", Type: field.TypeString},
	}
	// StudySessionsTable holds the schema information for the "study_sessions" table.
	StudySessionsTable = &schema.Table{
		Name:       "study_sessions",
		Columns:    StudySessionsColumns,
		PrimaryKey: []*schema.Column{StudySessionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "study_sessions_items_sessions",
				Columns:    []*schema.Column{StudySessionsColumns[4]},
				RefColumns: []*schema.Column{ItemsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "studysession_item_id_date", Columns: []*schema.Column{StudySessionsColumns[4], StudySessionsColumns[1]}},
		},
	}

	// GlobalSequenceColumns holds the columns for the "global_sequence" table.
	GlobalSequenceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt},
		{Name: "next_val", Type: field.TypeInt64, Default: 1},
	}
	// GlobalSequenceTable holds the schema information for the "global_sequence" table.
	GlobalSequenceTable = &schema.Table{
		Name:       "global_sequence",
		Columns:    GlobalSequenceColumns,
		PrimaryKey: []*schema.Column{GlobalSequenceColumns[0]},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		ItemsTable,
		ReviewLogsTable,
		StudySessionsTable,
		GlobalSequenceTable,
	}
)

func init() {
	ReviewLogsTable.ForeignKeys[0].RefTable = ItemsTable
	StudySessionsTable.ForeignKeys[0].RefTable = ItemsTable
}

// migrate creates or updates all tables.
func migrate(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return err
	}
	return m.Create(ctx, Tables...)
}
