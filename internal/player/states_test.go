package player

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNext(t *testing.T) {
	tests := []struct {
		name    string
		from    State
		trigger Trigger
		want    State
		wantErr bool
	}{
		{name: "load from idle", from: Idle, trigger: LoadRequested, want: Loading},
		{name: "load while playing", from: Playing, trigger: LoadRequested, want: Loading},
		{name: "load after failure", from: Failed, trigger: LoadRequested, want: Loading},
		{name: "metadata readies", from: Loading, trigger: MetadataReceived, want: Ready},
		{name: "metadata outside load", from: Playing, trigger: MetadataReceived, want: Playing, wantErr: true},
		{name: "play when ready", from: Ready, trigger: Play, want: Playing},
		{name: "resume", from: Paused, trigger: Play, want: Playing},
		{name: "play while loading", from: Loading, trigger: Play, want: Loading, wantErr: true},
		{name: "play when idle", from: Idle, trigger: Play, want: Idle, wantErr: true},
		{name: "pause", from: Playing, trigger: Pause, want: Paused},
		{name: "pause when ready", from: Ready, trigger: Pause, want: Ready, wantErr: true},
		{name: "ended pauses", from: Playing, trigger: Ended, want: Paused},
		{name: "seek keeps state", from: Paused, trigger: Seek, want: Paused},
		{name: "seek while loading", from: Loading, trigger: Seek, want: Loading, wantErr: true},
		{name: "error while loading", from: Loading, trigger: Error, want: Failed},
		{name: "error while playing", from: Playing, trigger: Error, want: Failed},
		{name: "error when idle", from: Idle, trigger: Error, want: Idle, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := next(tt.from, tt.trigger)
			assert.Equal(t, tt.want, got)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				var te *TransitionError
				assert.True(t, errors.As(err, &te))
				assert.Equal(t, tt.from, te.From)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTransitionError_Message(t *testing.T) {
	err := &TransitionError{From: Loading, Trigger: Play}
	assert.Equal(t, "player: cannot play while loading", err.Error())
}
