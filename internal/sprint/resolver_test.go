package sprint

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuannvm/taskpilot/internal/models"
)

func day(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestResolve_ExactMatchWins(t *testing.T) {
	iterations := []models.Iteration{
		{Name: "Sprint 1 Hotfix", Path: `P\Sprint 1 Hotfix`, StartDate: day("2025-06-01")},
		{Name: "sprint 1", Path: `P\Sprint 1`, StartDate: day("2025-01-01")},
		{Name: "Sprint 10", Path: `P\Sprint 10`, StartDate: day("2025-09-01")},
	}

	got, err := Resolve(iterations, Locator{Sprint: "Sprint 1"})
	require.NoError(t, err)
	assert.Equal(t, `P\Sprint 1`, got.Path)
}

func TestResolve_ExactMatchIgnoresSurroundingSpace(t *testing.T) {
	iterations := []models.Iteration{{Name: " Sprint 3 ", Path: `P\Sprint 3`}}

	got, err := Resolve(iterations, Locator{Sprint: "sprint 3"})
	require.NoError(t, err)
	assert.Equal(t, `P\Sprint 3`, got.Path)
}

func TestResolve_SingleSubstringMatch(t *testing.T) {
	iterations := []models.Iteration{
		{Name: "Sprint 2 M.Q2.25", Path: `P\Sprint 2 M.Q2.25`},
		{Name: "Sprint 3 M.Q3.25", Path: `P\Sprint 3 M.Q3.25`},
	}

	got, err := Resolve(iterations, Locator{Sprint: "M.Q2"})
	require.NoError(t, err)
	assert.Equal(t, `P\Sprint 2 M.Q2.25`, got.Path)
}

func TestResolve_SubstringTieBreakByLatestStart(t *testing.T) {
	iterations := []models.Iteration{
		{Name: "Team A Sprint 1", Path: `P\A\Sprint 1`, StartDate: day("2024-01-08")},
		{Name: "Team B Sprint 1", Path: `P\B\Sprint 1`, StartDate: day("2025-03-03")},
		{Name: "Team C Sprint 1", Path: `P\C\Sprint 1`, StartDate: day("2024-11-11")},
		{Name: "Team D Sprint 1", Path: `P\D\Sprint 1`},
	}

	got, err := Resolve(iterations, Locator{Sprint: "Sprint 1"})
	require.NoError(t, err)
	assert.Equal(t, `P\B\Sprint 1`, got.Path)
}

func TestResolve_UndatedCandidatesKeepListOrder(t *testing.T) {
	iterations := []models.Iteration{
		{Name: "Alpha Sprint", Path: `P\Alpha`},
		{Name: "Beta Sprint", Path: `P\Beta`},
	}

	got, err := Resolve(iterations, Locator{Sprint: "sprint"})
	require.NoError(t, err)
	assert.Equal(t, `P\Alpha`, got.Path)
}

func TestResolve_NotFound(t *testing.T) {
	iterations := []models.Iteration{
		{Name: "Sprint 1", Path: `P\Sprint 1`},
		{Name: "Sprint 2", Path: `P\Sprint 2`},
	}

	_, err := Resolve(iterations, Locator{Team: "Phoenix", Sprint: "Iteration 9"})
	require.Error(t, err)

	var notFound *SprintNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "Iteration 9", notFound.SprintName)
	assert.Equal(t, "Phoenix", notFound.Team)
	assert.Equal(t, 2, notFound.Candidates)
}

func TestResolve_EmptyList(t *testing.T) {
	_, err := Resolve(nil, Locator{Sprint: "Sprint 1"})

	var notFound *SprintNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "Sprint 1", notFound.SprintName)
}
