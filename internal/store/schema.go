package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

const (
	estimateEventsTable = "estimate_events"

	colID            = "id"
	colEventID       = "event_id"
	colSequence      = "sequence"
	colTimestamp     = "timestamp"
	colExamineeID    = "examinee_id"
	colOutcome       = "outcome"
	colTheta         = "theta"
	colStandardError = "standard_error"
	colLogLikelihood = "log_likelihood"
	colEvaluations   = "evaluations"
	colRounds        = "rounds"
	colConverged     = "converged"
	colPrecision     = "precision"
	colResponses     = "responses"
	colItems         = "items"
)

var (
	estimateEventsColumns = []*schema.Column{
		{Name: colID, Type: field.TypeInt, Increment: true},
		{Name: colEventID, Type: field.TypeString, Unique: true},
		{Name: colSequence, Type: field.TypeInt64, Unique: true},
		{Name: colTimestamp, Type: field.TypeTime},
		{Name: colExamineeID, Type: field.TypeString, Default: ""},
		{Name: colOutcome, Type: field.TypeString},
		// Null for all-correct and all-incorrect vectors.
		{Name: colTheta, Type: field.TypeFloat64, Nullable: true},
		{Name: colStandardError, Type: field.TypeFloat64, Nullable: true},
		{Name: colLogLikelihood, Type: field.TypeFloat64, Nullable: true},
		{Name: colEvaluations, Type: field.TypeInt},
		{Name: colRounds, Type: field.TypeInt},
		{Name: colConverged, Type: field.TypeBool},
		{Name: colPrecision, Type: field.TypeInt},
		{Name: colResponses, Type: field.TypeJSON},
		{Name: colItems, Type: field.TypeJSON},
	}

	estimateEvents = &schema.Table{
		Name:       estimateEventsTable,
		Columns:    estimateEventsColumns,
		PrimaryKey: []*schema.Column{estimateEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "estimateevent_sequence", Columns: []*schema.Column{estimateEventsColumns[2]}},
			{Name: "estimateevent_timestamp", Columns: []*schema.Column{estimateEventsColumns[3]}},
			{Name: "estimateevent_examinee_id", Columns: []*schema.Column{estimateEventsColumns[4]}},
		},
	}

	tables = []*schema.Table{estimateEvents}
)
