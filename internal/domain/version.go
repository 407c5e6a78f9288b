package domain

import "time"

// ChangeType classifies a single field delta between two snapshots.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeDeleted  ChangeType = "deleted"
	ChangeModified ChangeType = "modified"
)

// Snapshot is the flat field/value state of a case at one version.
type Snapshot map[string]any

// VersionDiff describes one field delta between two snapshots.
type VersionDiff struct {
	Field    string     `json:"field"`
	OldValue any        `json:"oldValue"`
	NewValue any        `json:"newValue"`
	Type     ChangeType `json:"type"`
}

// CaseVersion is one immutable entry in a case's append-only history. The
// JSON tags define the export/import interchange format.
type CaseVersion struct {
	ID        string        `json:"id"`
	CaseID    int64         `json:"caseId"`
	Version   int           `json:"version"`
	Snapshot  Snapshot      `json:"snapshot"`
	Changes   []VersionDiff `json:"changes"`
	UserID    int64         `json:"userId"`
	UserName  string        `json:"userName"`
	Timestamp time.Time     `json:"timestamp"`
	Comment   *string       `json:"comment"`
	Tags      []string      `json:"tags"`
}
