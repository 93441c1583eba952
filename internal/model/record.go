package model

import (
	"context"
	"time"
)

// RecordStore defines persistence operations for arrest and fine records.
type RecordStore interface {
	Create(ctx context.Context, record Record) (int64, error)
	ListByUser(ctx context.Context, kind RecordKind, userID string, limit int) ([]Record, error)
	CountByUser(ctx context.Context, kind RecordKind, userID string) (int, error)
	// DeleteByUser removes every record of the user and returns the evidence keys
	// of the removed rows (empty strings included), one per row.
	DeleteByUser(ctx context.Context, kind RecordKind, userID string) ([]string, error)
	DeleteByID(ctx context.Context, kind RecordKind, id int64) (bool, error)
}

// AuditStore persists the deletion log.
type AuditStore interface {
	Insert(ctx context.Context, entry DeletionLog) error
}

// RecordKind enumerates record kinds. Each kind has its own table.
type RecordKind string

const (
	// RecordKindArrest is an arrest record.
	RecordKindArrest RecordKind = "arresto"
	// RecordKindFine is a fine record.
	RecordKindFine RecordKind = "multa"
)

// Valid reports whether k is a known record kind.
func (k RecordKind) Valid() bool {
	return k == RecordKindArrest || k == RecordKindFine
}

// Record represents a stored arrest or fine.
type Record struct {
	ID          int64
	Kind        RecordKind
	UserID      string
	UserTag     string
	RobloxName  string
	RobloxURL   string
	Charges     string
	OfficerID   string
	OfficerTag  string
	PhotoURL    string
	EvidenceKey string
	Date        string
	CreatedAt   time.Time
}

// DeletionLog is an audit entry written when records are purged.
type DeletionLog struct {
	Kind       RecordKind
	UserID     string
	UserTag    string
	Count      int64
	Reason     string
	ExecutedBy string
	Date       string
}

// CreateRecordParams contains parameters to record an arrest or fine.
type CreateRecordParams struct {
	Kind     RecordKind
	Officer  Member
	Target   Member
	Charges  string
	Evidence Attachment
}

// PurgeRecordsParams contains parameters to delete every record of a user.
type PurgeRecordsParams struct {
	Kind     RecordKind
	Executor Member
	Target   Member
	Reason   string
}

// RecordHistory is the record history of a user.
type RecordHistory struct {
	Target   Member
	Identity *Identity
	Total    int
	Records  []Record
}

// PurgeResult reports the outcome of a purge.
type PurgeResult struct {
	Deleted int64
	Entry   DeletionLog
}

// Attachment is an uploaded file referenced by URL.
type Attachment struct {
	URL         string
	Filename    string
	ContentType string
	Size        int64
}
