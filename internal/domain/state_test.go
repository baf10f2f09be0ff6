package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStates = []State{StateIdle, StateImageSelected, StateGenerating, StateResult, StateError}

func TestResetFromEveryState(t *testing.T) {
	for _, s := range allStates {
		next, err := s.Next(EventReset)
		require.NoError(t, err)
		assert.Equal(t, StateIdle, next, "reset from %s", s)
	}
}

func TestHappyPathTransitions(t *testing.T) {
	s := StateIdle
	for _, step := range []struct {
		event Event
		want  State
	}{
		{EventImageLoaded, StateImageSelected},
		{EventGenerateStarted, StateGenerating},
		{EventGenerateSucceeded, StateResult},
		{EventReset, StateIdle},
	} {
		next, err := s.Next(step.event)
		require.NoError(t, err, "%s on %s", s, step.event)
		require.Equal(t, step.want, next)
		s = next
	}
}

func TestFailureTransitions(t *testing.T) {
	next, err := StateGenerating.Next(EventGenerateFailed)
	require.NoError(t, err)
	assert.Equal(t, StateError, next)

	next, err = StateResult.Next(EventGenerateFailed)
	require.NoError(t, err)
	assert.Equal(t, StateResult, next)

	next, err = StateError.Next(EventGenerateStarted)
	require.NoError(t, err)
	assert.Equal(t, StateGenerating, next)
}

func TestIllegalTransitions(t *testing.T) {
	cases := []struct {
		from  State
		event Event
	}{
		{StateIdle, EventGenerateStarted},
		{StateGenerating, EventGenerateStarted},
		{StateGenerating, EventImageLoaded},
		{StateResult, EventImageLoaded},
		{StateIdle, EventGenerateSucceeded},
	}
	for _, tc := range cases {
		next, err := tc.from.Next(tc.event)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrIllegalTransition))
		assert.Equal(t, tc.from, next)
	}
}

func TestProjectKeepsOneActiveRegion(t *testing.T) {
	for _, s := range allStates {
		for _, hasImage := range []bool{true, false} {
			v := Project(s, hasImage)
			assert.Equal(t, 1, v.ActiveRegions(), "state %s", s)
			if v.ErrorVisible {
				assert.True(t, v.UploadVisible, "error banner only coexists with the upload form")
			}
		}
	}
}

func TestProjectGenerateEnabledNeedsImage(t *testing.T) {
	assert.False(t, Project(StateIdle, false).GenerateEnabled)
	assert.True(t, Project(StateImageSelected, true).GenerateEnabled)
	assert.False(t, Project(StateError, false).GenerateEnabled)
	assert.True(t, Project(StateError, true).GenerateEnabled)
	assert.False(t, Project(StateGenerating, true).GenerateEnabled)
}
