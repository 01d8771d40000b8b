package player

import (
	"errors"
	"fmt"
)

// State is the player's lifecycle stage.
type State int

const (
	Idle State = iota
	Loading
	Ready
	Playing
	Paused
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Trigger is an event that may move the player between states.
type Trigger int

const (
	LoadRequested Trigger = iota
	MetadataReceived
	Play
	Pause
	Seek
	Ended
	Error
)

func (t Trigger) String() string {
	switch t {
	case LoadRequested:
		return "load-requested"
	case MetadataReceived:
		return "metadata-received"
	case Play:
		return "play"
	case Pause:
		return "pause"
	case Seek:
		return "seek"
	case Ended:
		return "ended"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("trigger(%d)", int(t))
	}
}

// ErrInvalidTransition is matched by every TransitionError.
var ErrInvalidTransition = errors.New("player: invalid transition")

// TransitionError reports a trigger the current state does not accept.
type TransitionError struct {
	From    State
	Trigger Trigger
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("player: cannot %s while %s", e.Trigger, e.From)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// next returns the state reached from s on trig.
func next(s State, trig Trigger) (State, error) {
	switch trig {
	case LoadRequested:
		return Loading, nil
	case MetadataReceived:
		if s == Loading {
			return Ready, nil
		}
	case Play:
		if s == Ready || s == Paused {
			return Playing, nil
		}
	case Pause, Ended:
		if s == Playing {
			return Paused, nil
		}
	case Seek:
		if s == Ready || s == Playing || s == Paused {
			return s, nil
		}
	case Error:
		if s == Loading || s == Ready || s == Playing || s == Paused {
			return Failed, nil
		}
	}
	return s, &TransitionError{From: s, Trigger: trig}
}
