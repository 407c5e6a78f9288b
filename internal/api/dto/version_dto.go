package dto

// RollbackRequest restores a claim to a prior version.
type RollbackRequest struct {
	TargetVersion int     `json:"targetVersion"`
	Comment       *string `json:"comment"`
}

// ImportHistoryRequest carries a serialized version history export.
type ImportHistoryRequest struct {
	History string `json:"history"`
}
