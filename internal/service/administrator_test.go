package service

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scid-pd-engine/internal/domain"
)

func newTestAdministrator(opts ...AdministratorOption) *Administrator {
	opts = append([]AdministratorOption{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { return "profile-1" }),
	}, opts...)
	return NewAdministrator(quietLogger(), opts...)
}

func TestAdministrator_StateMachine(t *testing.T) {
	module := yesNoModule(t, 2, 0.5, 1)

	t.Run("administer before start", func(t *testing.T) {
		a := newTestAdministrator()
		_, err := a.AdministerModule(module, yes("q1"))
		var stateErr *domain.StateError
		require.True(t, errors.As(err, &stateErr))
		assert.Equal(t, StateIdle, a.State())
	})

	t.Run("complete before start", func(t *testing.T) {
		a := newTestAdministrator()
		_, err := a.Complete()
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("complete with zero results", func(t *testing.T) {
		a := newTestAdministrator()
		_, err := a.Start()
		require.NoError(t, err)

		_, err = a.Complete()
		assert.ErrorIs(t, err, domain.ErrInvalidState)
		assert.Equal(t, StateAssessmentActive, a.State())
	})

	t.Run("start while active", func(t *testing.T) {
		a := newTestAdministrator()
		_, err := a.Start()
		require.NoError(t, err)
		_, err = a.Start()
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("full lifecycle", func(t *testing.T) {
		a := newTestAdministrator()

		profile, err := a.Start()
		require.NoError(t, err)
		assert.Equal(t, "profile-1", profile.ID)
		assert.Equal(t, StateAssessmentActive, a.State())

		res, err := a.AdministerModule(module, yes("q1", "q2"))
		require.NoError(t, err)
		assert.True(t, res.CriteriaMet)
		assert.Equal(t, StateAssessmentActive, a.State())

		require.NoError(t, a.SetClinicianNotes("Client engaged throughout."))

		final, err := a.Complete()
		require.NoError(t, err)
		assert.True(t, final.Completed)
		assert.Equal(t, []string{module.Name}, final.PrimaryDiagnoses)
		assert.Equal(t, "Client engaged throughout.", final.ClinicianNotes)
		assert.Equal(t, StateAssessmentComplete, a.State())

		_, err = a.AdministerModule(module, yes("q1"))
		assert.ErrorIs(t, err, domain.ErrInvalidState, "a new start is required after completion")
		assert.ErrorIs(t, a.SetClinicianNotes("late"), domain.ErrInvalidState)

		next, err := a.Start()
		require.NoError(t, err)
		assert.Empty(t, next.ModuleResults)
	})
}

func TestAdministrator_ValidationFailureLeavesProfileUntouched(t *testing.T) {
	module := borderlineFixture(t)
	a := newTestAdministrator()
	_, err := a.Start()
	require.NoError(t, err)

	_, err = a.AdministerModule(module, yes("bpd_1", "bpd_2"))
	require.NoError(t, err)
	before := a.Profile()

	_, err = a.AdministerModule(module, domain.Responses{"bpd_2": {Value: "perhaps"}, "unknown": {Value: "yes"}})

	var validationErr *domain.ValidationFailedError
	require.True(t, errors.As(err, &validationErr))
	assert.Equal(t, []string{
		"missing required question bpd_1",
		"unknown question id unknown",
		"question bpd_2: perhaps is not a yes/no answer",
	}, validationErr.Errors)
	assert.Equal(t, before, a.Profile())
}

func TestAdministrator_SnapshotsAreIndependent(t *testing.T) {
	module := yesNoModule(t, 2, 0.5, 1)
	a := newTestAdministrator()
	_, err := a.Start()
	require.NoError(t, err)

	_, err = a.AdministerModule(module, yes("q1"))
	require.NoError(t, err)
	snapshot := a.Profile()

	_, err = a.AdministerModule(module, yes("q1", "q2"))
	require.NoError(t, err)

	assert.Len(t, snapshot.ModuleResults, 1)
	assert.Len(t, a.Profile().ModuleResults, 2)
}

func TestEvaluateModule_Borderline(t *testing.T) {
	module := borderlineFixture(t)
	responses := yes("bpd_1", "bpd_2", "bpd_3", "bpd_4", "bpd_5", "bpd_6", "bpd_7")
	responses["bpd_1"] = domain.Response{Value: "yes", Examples: []string{"panics when partner is late", "everywhere"}, OnsetAge: intPtr(15)}
	responses["bpd_8"] = domain.Response{Value: "no"}

	res := EvaluateModule(module, responses, fixedNow)

	assert.Equal(t, "borderline_pd", res.ModuleID)
	assert.Equal(t, domain.ClusterB, res.Cluster)
	assert.Equal(t, 9.0, res.MaxPossibleScore)
	assert.Equal(t, 7.0, res.TotalScore)
	assert.InDelta(t, 7.0/9.0, res.PercentageScore, 1e-12)
	assert.Equal(t, 7, res.CoreCriteriaCount)
	assert.True(t, res.CriteriaMet)
	assert.Equal(t, domain.SeverityModerate, res.Severity)
	assert.Len(t, res.Patterns, 7)
	assert.Equal(t, domain.OnsetAdolescence, res.Onset)
	// one of four flagged questions mentions an indicator phrase
	assert.Equal(t, domain.PervasivenessModerate, res.Pervasiveness)
	assert.Equal(t, []string{"Bipolar Disorder", "Complex PTSD", "Major Depressive Disorder"}, res.DifferentialConsiderations)
	// 77.78 + 1/9*10 for the two-example answer
	assert.Equal(t, 78.9, res.DimensionalScore)
	assert.Equal(t, 6, res.AdministrationMinutes)
	assert.Equal(t, "bpd_8", res.Responses["bpd_8"].QuestionID)
	assert.Equal(t, fixedNow, res.CompletedAt)
}

func TestAdministrator_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	module := yesNoModule(t, 2, 0.5, 1)

	a := newTestAdministrator(WithMetrics(metrics))
	_, err := a.Start()
	require.NoError(t, err)

	_, err = a.AdministerModule(module, domain.Responses{"q1": {Value: "sure"}})
	require.Error(t, err)
	_, err = a.AdministerModule(module, yes("q1", "q2"))
	require.NoError(t, err)
	_, err = a.Complete()
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ValidationFailures.WithLabelValues("test")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Administrations.WithLabelValues("test", "scored")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Administrations.WithLabelValues("test", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.CriteriaMet.WithLabelValues("test")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ProfilesCompleted.WithLabelValues("severe")))
}
