package versionstore

import (
	"encoding/json"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/claims-service/internal/domain"
)

// Store maintains an append-only version history per case. Versions are
// numbered 1..N with no gaps; rollback appends, it never truncates. History
// grows without bound — compaction belongs to a future persistence-backed
// implementation, not this in-memory one.
type Store struct {
	mu        sync.RWMutex
	histories map[int64][]*domain.CaseVersion
	current   map[int64]int
	logger    *zap.Logger
}

// Stats summarizes the version history of one case.
type Stats struct {
	TotalVersions  int        `json:"totalVersions"`
	CurrentVersion int        `json:"currentVersion"`
	UniqueUsers    int        `json:"uniqueUsers"`
	UniqueTags     int        `json:"uniqueTags"`
	TotalChanges   int        `json:"totalChanges"`
	FirstVersion   *time.Time `json:"firstVersion"`
	LastVersion    *time.Time `json:"lastVersion"`
}

// New creates an empty store.
func New(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		histories: make(map[int64][]*domain.CaseVersion),
		current:   make(map[int64]int),
		logger:    logger,
	}
}

// CreateInitialVersion records version 1 for a case. The caller is
// responsible for only invoking this once per case.
func (s *Store) CreateInitialVersion(caseID int64, snapshot domain.Snapshot, userID int64, userName string) *domain.CaseVersion {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := &domain.CaseVersion{
		ID:        uuid.NewString(),
		CaseID:    caseID,
		Version:   1,
		Snapshot:  maps.Clone(snapshot),
		Changes:   []domain.VersionDiff{},
		UserID:    userID,
		UserName:  userName,
		Timestamp: time.Now().UTC(),
		Tags:      []string{"created"},
	}
	s.histories[caseID] = append(s.histories[caseID], v)
	s.current[caseID] = 1
	s.logger.Debug("initial version created", zap.Int64("case_id", caseID))
	return v
}

// CreateVersion appends a new version whose changes are the diff from the
// previous snapshot to the new one.
func (s *Store) CreateVersion(caseID int64, snapshot, previous domain.Snapshot, userID int64, userName string, comment *string, tags []string) *domain.CaseVersion {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.current[caseID] + 1
	v := &domain.CaseVersion{
		ID:        uuid.NewString(),
		CaseID:    caseID,
		Version:   next,
		Snapshot:  maps.Clone(snapshot),
		Changes:   Diff(previous, snapshot),
		UserID:    userID,
		UserName:  userName,
		Timestamp: time.Now().UTC(),
		Comment:   comment,
		Tags:      append([]string{}, tags...),
	}
	s.histories[caseID] = append(s.histories[caseID], v)
	s.current[caseID] = next
	s.logger.Debug("version created",
		zap.Int64("case_id", caseID),
		zap.Int("version", next),
		zap.Int("changes", len(v.Changes)))
	return v
}

// History returns all versions for a case in order, or an empty slice for an
// unknown case.
func (s *Store) History(caseID int64) []*domain.CaseVersion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*domain.CaseVersion{}, s.histories[caseID]...)
}

// Version returns the given version of a case, or nil when missing.
func (s *Store) Version(caseID int64, version int) *domain.CaseVersion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.versionLocked(caseID, version)
}

func (s *Store) versionLocked(caseID int64, version int) *domain.CaseVersion {
	for _, v := range s.histories[caseID] {
		if v.Version == version {
			return v
		}
	}
	return nil
}

// CurrentVersion returns the current version number, 0 for an unknown case.
func (s *Store) CurrentVersion(caseID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current[caseID]
}

// Rollback restores a prior snapshot by appending a new version whose
// snapshot equals the target's and whose changes are the diff from the
// current snapshot. History is never rewritten.
func (s *Store) Rollback(caseID int64, targetVersion int, userID int64, userName string, comment *string) (*domain.CaseVersion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.versionLocked(caseID, targetVersion)
	if target == nil {
		return nil, fmt.Errorf("version %d not found", targetVersion)
	}

	cur := s.current[caseID]
	var currentSnap domain.Snapshot
	if v := s.versionLocked(caseID, cur); v != nil {
		currentSnap = v.Snapshot
	}

	next := cur + 1
	v := &domain.CaseVersion{
		ID:        uuid.NewString(),
		CaseID:    caseID,
		Version:   next,
		Snapshot:  maps.Clone(target.Snapshot),
		Changes:   Diff(currentSnap, target.Snapshot),
		UserID:    userID,
		UserName:  userName,
		Timestamp: time.Now().UTC(),
		Comment:   comment,
		Tags: []string{
			"rollback",
			fmt.Sprintf("from-v%d", cur),
			fmt.Sprintf("to-v%d", targetVersion),
		},
	}
	s.histories[caseID] = append(s.histories[caseID], v)
	s.current[caseID] = next
	s.logger.Info("rolled back case",
		zap.Int64("case_id", caseID),
		zap.Int("from", cur),
		zap.Int("to", targetVersion))
	return v, nil
}

// Compare diffs two stored versions. Missing versions yield an empty result.
func (s *Store) Compare(caseID int64, versionA, versionB int) []domain.VersionDiff {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a := s.versionLocked(caseID, versionA)
	b := s.versionLocked(caseID, versionB)
	if a == nil || b == nil {
		return []domain.VersionDiff{}
	}
	return Diff(a.Snapshot, b.Snapshot)
}

// ChangesSince diffs the snapshot at sinceVersion against the current
// snapshot. Empty when sinceVersion is at or past the current version.
func (s *Store) ChangesSince(caseID int64, sinceVersion int) []domain.VersionDiff {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cur := s.current[caseID]
	if sinceVersion >= cur {
		return []domain.VersionDiff{}
	}
	since := s.versionLocked(caseID, sinceVersion)
	current := s.versionLocked(caseID, cur)
	if since == nil || current == nil {
		return []domain.VersionDiff{}
	}
	return Diff(since.Snapshot, current.Snapshot)
}

// SearchByTag returns the versions of a case carrying the given tag.
func (s *Store) SearchByTag(caseID int64, tag string) []*domain.CaseVersion {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]*domain.CaseVersion, 0)
	for _, v := range s.histories[caseID] {
		for _, t := range v.Tags {
			if t == tag {
				matches = append(matches, v)
				break
			}
		}
	}
	return matches
}

// GetStats summarizes a case's history. Zero-valued for an unknown case.
func (s *Store) GetStats(caseID int64) Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.histories[caseID]
	stats := Stats{
		TotalVersions:  len(history),
		CurrentVersion: s.current[caseID],
	}
	if len(history) == 0 {
		return stats
	}

	users := make(map[int64]struct{})
	tags := make(map[string]struct{})
	for _, v := range history {
		users[v.UserID] = struct{}{}
		for _, t := range v.Tags {
			tags[t] = struct{}{}
		}
		stats.TotalChanges += len(v.Changes)
	}
	stats.UniqueUsers = len(users)
	stats.UniqueTags = len(tags)
	first := history[0].Timestamp
	last := history[len(history)-1].Timestamp
	stats.FirstVersion = &first
	stats.LastVersion = &last
	return stats
}

// ExportHistory serializes the full version list as a JSON array.
func (s *Store) ExportHistory(caseID int64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.histories[caseID]
	if history == nil {
		history = []*domain.CaseVersion{}
	}
	data, err := json.Marshal(history)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// ImportHistory replaces a case's history from a serialized export and resets
// the current-version pointer to the highest version found. Parse failures
// are logged and reported as false; no partial state is committed.
func (s *Store) ImportHistory(caseID int64, serialized string) bool {
	var imported []*domain.CaseVersion
	if err := json.Unmarshal([]byte(serialized), &imported); err != nil {
		s.logger.Warn("failed to import version history",
			zap.Int64("case_id", caseID),
			zap.Error(err))
		return false
	}

	maxVersion := 0
	for _, v := range imported {
		if v.Version > maxVersion {
			maxVersion = v.Version
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.histories[caseID] = imported
	s.current[caseID] = maxVersion
	s.logger.Info("imported version history",
		zap.Int64("case_id", caseID),
		zap.Int("versions", len(imported)))
	return true
}
