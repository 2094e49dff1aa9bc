package project

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func team(name string, ids ...string) Team {
	t := Team{Name: name, Members: []Member{}}
	for _, id := range ids {
		t.Members = append(t.Members, Member{StudentID: id, Name: "Name of " + id})
	}
	return t
}

func names(teams []Team) []string {
	out := make([]string, 0, len(teams))
	for _, t := range teams {
		out = append(out, t.Name)
	}
	return out
}

func TestPlanSave(t *testing.T) {
	tests := []struct {
		name       string
		stored     []Team
		incoming   []Team
		wantWrite  []Team
		wantDelete []string
	}{
		{
			name:      "first save",
			incoming:  []Team{team("A", "s1", "s2"), team("B", "s3")},
			wantWrite: []Team{team("A", "s1", "s2"), team("B", "s3")},
		},
		{
			name:      "other stored teams are kept",
			stored:    []Team{team("A", "s1"), team("B", "s2")},
			incoming:  []Team{team("A", "s1", "s3")},
			wantWrite: []Team{team("A", "s1", "s3")},
		},
		{
			name:      "moved student leaves its stored team",
			stored:    []Team{team("A", "s1"), team("B", "s2", "s3")},
			incoming:  []Team{team("A", "s1", "s2")},
			wantWrite: []Team{team("A", "s1", "s2"), team("B", "s3")},
		},
		{
			name:       "stored team left empty is deleted",
			stored:     []Team{team("A", "s1"), team("B", "s2")},
			incoming:   []Team{team("A", "s1", "s2")},
			wantWrite:  []Team{team("A", "s1", "s2")},
			wantDelete: []string{"B"},
		},
		{
			name:       "case variant replaces the stored team",
			stored:     []Team{team("team a", "s1")},
			incoming:   []Team{team("Team A", "s1", "s2")},
			wantWrite:  []Team{team("Team A", "s1", "s2")},
			wantDelete: []string{"team a"},
		},
		{
			name:      "empty incoming team is written",
			stored:    []Team{team("A", "s1")},
			incoming:  []Team{team("A")},
			wantWrite: []Team{team("A")},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := PlanSave(tt.stored, tt.incoming)
			assert.Equal(t, tt.wantWrite, plan.Write)
			assert.Equal(t, tt.wantDelete, plan.Delete)
		})
	}

	assert.True(t, PlanSave(nil, nil).Empty())
}

func TestPlanSave_KeepsAccessTimes(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	prev := team("A", "s1", "s2")
	prev.Members[0].LastAccessed = &at

	plan := PlanSave([]Team{prev}, []Team{team("A", "s1", "s3")})
	assert.Equal(t, []string{"A"}, names(plan.Write))
	members := plan.Write[0].Members
	if assert.Len(t, members, 2) {
		assert.Equal(t, &at, members[0].LastAccessed)
		assert.Nil(t, members[1].LastAccessed)
	}
	// the stored team is not modified
	assert.Nil(t, prev.Members[1].LastAccessed)
}

func TestPlanSave_KeepsAccessTimesAcrossCaseRename(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	prev := team("team a", "s1")
	prev.Members[0].LastAccessed = &at

	plan := PlanSave([]Team{prev}, []Team{team("Team A", "s1", "s2")})
	assert.Equal(t, []string{"Team A"}, names(plan.Write))
	assert.Equal(t, []string{"team a"}, plan.Delete)
	members := plan.Write[0].Members
	if assert.Len(t, members, 2) {
		assert.Equal(t, &at, members[0].LastAccessed)
		assert.Nil(t, members[1].LastAccessed)
	}
}

func TestPlanSave_KeepsTeamsMissingFromIncoming(t *testing.T) {
	plan := PlanSave([]Team{team("A", "s1"), team("B", "s2")}, []Team{team("A", "s1")})
	assert.Equal(t, []string{"A"}, names(plan.Write))
	assert.Empty(t, plan.Delete)
}

func TestValidTeamName(t *testing.T) {
	for name, want := range map[string]bool{
		"Team A":   true,
		" Blue ":   true,
		"":         false,
		"   ":      false,
		".":        false,
		"..":       false,
		"red/blue": false,
	} {
		assert.Equal(t, want, ValidTeamName(name), name)
	}
}

func TestParseDueDate(t *testing.T) {
	want := time.Date(2024, 5, 1, 17, 0, 0, 0, time.UTC)
	for _, s := range []string{"2024-05-01T17:00:00Z", "2024-05-01T12:00:00-05:00", "2024-05-01T17:00", "2024-05-01 17:00"} {
		got, err := ParseDueDate(s)
		if assert.NoError(t, err, s) {
			assert.True(t, want.Equal(got), s)
			assert.Equal(t, time.UTC, got.Location())
		}
	}

	got, err := ParseDueDate("2024-05-01")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDueDate("next friday")
	assert.Error(t, err)
}
