package versionstore

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spec-kit/claims-service/internal/domain"
)

// Diff computes the field-level delta between two flat snapshots. Fields are
// compared by canonical JSON serialization so nested values are matched
// structurally, not by reference. Entries come back sorted by field name.
func Diff(oldSnap, newSnap domain.Snapshot) []domain.VersionDiff {
	fields := make(map[string]struct{}, len(oldSnap)+len(newSnap))
	for f := range oldSnap {
		fields[f] = struct{}{}
	}
	for f := range newSnap {
		fields[f] = struct{}{}
	}

	names := make([]string, 0, len(fields))
	for f := range fields {
		names = append(names, f)
	}
	sort.Strings(names)

	diffs := make([]domain.VersionDiff, 0)
	for _, field := range names {
		oldVal, inOld := oldSnap[field]
		newVal, inNew := newSnap[field]
		switch {
		case !inOld && inNew:
			diffs = append(diffs, domain.VersionDiff{
				Field:    field,
				OldValue: nil,
				NewValue: newVal,
				Type:     domain.ChangeAdded,
			})
		case inOld && !inNew:
			diffs = append(diffs, domain.VersionDiff{
				Field:    field,
				OldValue: oldVal,
				NewValue: nil,
				Type:     domain.ChangeDeleted,
			})
		case canonical(oldVal) != canonical(newVal):
			diffs = append(diffs, domain.VersionDiff{
				Field:    field,
				OldValue: oldVal,
				NewValue: newVal,
				Type:     domain.ChangeModified,
			})
		}
	}
	return diffs
}

// canonical serializes a value deterministically; encoding/json sorts map
// keys, which makes equal structures serialize identically.
func canonical(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
