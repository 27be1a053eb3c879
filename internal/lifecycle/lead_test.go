package lifecycle

import (
	"testing"
	"time"

	"github.com/ganeshsabale-99/DMP-Project/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLead(t *testing.T, e *Engine) domain.Lead {
	t.Helper()
	l, err := e.CreateLead(domain.NewLead{Email: " Jane@Example.com ", FirstName: "Jane", Source: domain.SourceReferral}, "rep-1")
	require.NoError(t, err)
	return l
}

func TestCreateLeadNormalizes(t *testing.T) {
	e, _ := newTestEngine()
	l := newLead(t, e)
	assert.Equal(t, "jane@example.com", l.Email)
	assert.Equal(t, domain.LeadNew, l.Status)
	assert.Equal(t, 0, l.Score)
	assert.Nil(t, l.LastContactedAt)
	assert.Empty(t, l.Activities)
}

func TestLeadCallScenario(t *testing.T) {
	e, _ := newTestEngine()
	l := newLead(t, e)

	l, err := e.AddActivity(l, NewActivity{Type: domain.ActivityCall, Description: "intro call"}, "rep-1")
	require.NoError(t, err)
	require.NotNil(t, l.LastContactedAt)

	got, err := e.UpdateScore(l, 150)
	assert.ErrorIs(t, err, domain.ErrOutOfRange)
	assert.Equal(t, 0, got.Score)
}

func TestUpdateScoreBounds(t *testing.T) {
	e, _ := newTestEngine()
	l := newLead(t, e)
	for _, s := range []int{0, 100, 42} {
		got, err := e.UpdateScore(l, s)
		require.NoError(t, err)
		assert.Equal(t, s, got.Score)
	}
	for _, s := range []int{-1, 101} {
		_, err := e.UpdateScore(l, s)
		assert.ErrorIs(t, err, domain.ErrOutOfRange)
	}
}

func TestActivityContactRules(t *testing.T) {
	e, clock := newTestEngine()

	for _, typ := range []domain.ActivityType{domain.ActivityNote, domain.ActivityTask} {
		l := newLead(t, e)
		l, err := e.AddActivity(l, NewActivity{Type: typ, Description: "x"}, "u")
		require.NoError(t, err)
		assert.Nil(t, l.LastContactedAt, typ)
	}

	for _, typ := range []domain.ActivityType{domain.ActivityCall, domain.ActivityEmail, domain.ActivityMeeting} {
		l := newLead(t, e)
		prev := clock.Now().Add(time.Hour) // a future-dated previous contact
		l.LastContactedAt = &prev
		l, err := e.AddActivity(l, NewActivity{Type: typ, Description: "x"}, "u")
		require.NoError(t, err)
		require.NotNil(t, l.LastContactedAt)
		assert.False(t, l.LastContactedAt.Before(prev), typ)
	}
}

func TestActivityTimestampsMonotonic(t *testing.T) {
	e, clock := newTestEngine()
	l := newLead(t, e)

	l, err := e.AddActivity(l, NewActivity{Type: domain.ActivityNote, Description: "first"}, "u")
	require.NoError(t, err)
	clock.Advance(-time.Minute) // clock skew
	l, err = e.AddActivity(l, NewActivity{Type: domain.ActivityNote, Description: "second"}, "u")
	require.NoError(t, err)

	require.Len(t, l.Activities, 2)
	assert.False(t, l.Activities[1].CreatedAt.Before(l.Activities[0].CreatedAt))
	assert.Equal(t, "first", l.Activities[0].Description)
}

func TestAddActivityDoesNotAlias(t *testing.T) {
	e, _ := newTestEngine()
	base := newLead(t, e)
	base.Activities = make([]domain.Activity, 0, 4)

	a, err := e.AddActivity(base, NewActivity{Type: domain.ActivityNote, Description: "a"}, "u")
	require.NoError(t, err)
	b, err := e.AddActivity(base, NewActivity{Type: domain.ActivityNote, Description: "b"}, "u")
	require.NoError(t, err)
	assert.Equal(t, "a", a.Activities[0].Description)
	assert.Equal(t, "b", b.Activities[0].Description)
}

func TestAddActivityValidation(t *testing.T) {
	e, _ := newTestEngine()
	l := newLead(t, e)
	_, err := e.AddActivity(l, NewActivity{Type: "SMOKE_SIGNAL", Description: "x"}, "u")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = e.AddActivity(l, NewActivity{Type: domain.ActivityNote}, "u")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSetLeadStatus(t *testing.T) {
	e, clock := newTestEngine()
	l := newLead(t, e)

	l, err := e.SetLeadStatus(l, domain.LeadQualified)
	require.NoError(t, err)
	assert.Nil(t, l.LastContactedAt)

	l, err = e.SetLeadStatus(l, domain.LeadContacted)
	require.NoError(t, err)
	require.NotNil(t, l.LastContactedAt)
	first := *l.LastContactedAt

	clock.Advance(time.Hour)
	l, err = e.SetLeadStatus(l, domain.LeadEngaged)
	require.NoError(t, err)
	assert.True(t, l.LastContactedAt.After(first))

	// any order is allowed
	l, err = e.SetLeadStatus(l, domain.LeadNew)
	require.NoError(t, err)
	assert.Equal(t, domain.LeadNew, l.Status)

	_, err = e.SetLeadStatus(l, "WON")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAssignOverwrites(t *testing.T) {
	e, _ := newTestEngine()
	l := newLead(t, e)
	l = e.Assign(l, "rep-1")
	l = e.Assign(l, "rep-2")
	assert.Equal(t, "rep-2", l.AssignedTo)
}

func TestUpdateLeadFields(t *testing.T) {
	e, _ := newTestEngine()
	l := newLead(t, e)

	email := " NEW@example.com"
	company := "Acme"
	got, err := e.UpdateLeadFields(l, domain.LeadPatch{Email: &email, Company: &company})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", got.Email)
	assert.Equal(t, "Acme", got.Company)

	bad := "nope"
	_, err = e.UpdateLeadFields(l, domain.LeadPatch{Email: &bad})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
