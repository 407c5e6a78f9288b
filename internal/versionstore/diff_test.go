package versionstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/claims-service/internal/domain"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name string
		old  domain.Snapshot
		new  domain.Snapshot
		want []domain.VersionDiff
	}{
		{
			name: "no changes",
			old:  domain.Snapshot{"carrier": "FedEx", "claimedAmount": 125.0},
			new:  domain.Snapshot{"carrier": "FedEx", "claimedAmount": 125.0},
			want: []domain.VersionDiff{},
		},
		{
			name: "field added",
			old:  domain.Snapshot{"carrier": "FedEx"},
			new:  domain.Snapshot{"carrier": "FedEx", "trackingNumber": "1Z999"},
			want: []domain.VersionDiff{
				{Field: "trackingNumber", OldValue: nil, NewValue: "1Z999", Type: domain.ChangeAdded},
			},
		},
		{
			name: "field deleted",
			old:  domain.Snapshot{"carrier": "FedEx", "notes": "damaged box"},
			new:  domain.Snapshot{"carrier": "FedEx"},
			want: []domain.VersionDiff{
				{Field: "notes", OldValue: "damaged box", NewValue: nil, Type: domain.ChangeDeleted},
			},
		},
		{
			name: "field modified",
			old:  domain.Snapshot{"status": "SUBMITTED"},
			new:  domain.Snapshot{"status": "APPROVED"},
			want: []domain.VersionDiff{
				{Field: "status", OldValue: "SUBMITTED", NewValue: "APPROVED", Type: domain.ChangeModified},
			},
		},
		{
			name: "mixed changes sorted by field name",
			old:  domain.Snapshot{"carrier": "FedEx", "status": "SUBMITTED", "zone": "east"},
			new:  domain.Snapshot{"carrier": "UPS", "status": "SUBMITTED", "amount": 50.0},
			want: []domain.VersionDiff{
				{Field: "amount", OldValue: nil, NewValue: 50.0, Type: domain.ChangeAdded},
				{Field: "carrier", OldValue: "FedEx", NewValue: "UPS", Type: domain.ChangeModified},
				{Field: "zone", OldValue: "east", NewValue: nil, Type: domain.ChangeDeleted},
			},
		},
		{
			name: "nested values compared structurally",
			old:  domain.Snapshot{"meta": map[string]any{"a": 1, "b": 2}},
			new:  domain.Snapshot{"meta": map[string]any{"b": 2, "a": 1}},
			want: []domain.VersionDiff{},
		},
		{
			name: "nested value change detected",
			old:  domain.Snapshot{"tags": []string{"fragile"}},
			new:  domain.Snapshot{"tags": []string{"fragile", "priority"}},
			want: []domain.VersionDiff{
				{
					Field:    "tags",
					OldValue: []string{"fragile"},
					NewValue: []string{"fragile", "priority"},
					Type:     domain.ChangeModified,
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.old, tt.new)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestDiffBothEmpty(t *testing.T) {
	assert.Empty(t, Diff(domain.Snapshot{}, domain.Snapshot{}))
	assert.Empty(t, Diff(nil, nil))
}
