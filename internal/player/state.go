package player

// State is the state of one playback slot.
//
//	          play                    fade done
//	Stopped* ──────▶ Starting ──────────────────▶ Playing
//	   ▲   └───────────────────────────────────────▲ │
//	   │                play (nothing displaced)     │ pauseresume
//	   │ fade done                                   ▼
//	Finishing ◀── faded stop ── Playing     Pausing ──fade done──▶ Paused
//	                                           │                      │
//	                            device ran dry ▼          pauseresume ▼
//	                                      PausedAtEnd              Resuming
//
// Stopped* is any of the four stopped states. Every stopped state is a valid
// entry point for the next play. Reversing Pausing and Resuming picks the
// fade up where it was.
type State int

const (
	Stopped State = iota
	StoppedAtEnd
	StoppedAtError
	StoppedAtStart
	Starting
	Playing
	Finishing
	Pausing
	Paused
	PausedAtEnd
	Resuming
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case StoppedAtEnd:
		return "StoppedAtEnd"
	case StoppedAtError:
		return "StoppedAtError"
	case StoppedAtStart:
		return "StoppedAtStart"
	case Starting:
		return "Starting"
	case Playing:
		return "Playing"
	case Finishing:
		return "Finishing"
	case Pausing:
		return "Pausing"
	case Paused:
		return "Paused"
	case PausedAtEnd:
		return "PausedAtEnd"
	case Resuming:
		return "Resuming"
	default:
		return "Unknown"
	}
}

// IsStopped reports whether s is one of the stopped states.
func (s State) IsStopped() bool {
	return s == Stopped || s == StoppedAtEnd || s == StoppedAtError || s == StoppedAtStart
}

// IsPaused reports whether the slot holds its position silently.
func (s State) IsPaused() bool {
	return s == Paused || s == PausedAtEnd
}

// IsFading reports whether a gain ramp is running.
func (s State) IsFading() bool {
	return s == Starting || s == Resuming || s == Pausing || s == Finishing
}

// IsActive reports whether the slot is audible or ramping.
func (s State) IsActive() bool {
	return s == Playing || s.IsFading()
}

// CanPause reports whether pauseresume pauses rather than resumes.
func (s State) CanPause() bool {
	return s == Playing || s == Starting || s == Resuming
}

// CanResume reports whether pauseresume resumes.
func (s State) CanResume() bool {
	return s == Pausing || s.IsPaused()
}

// fadesOut reports whether the ramp of a fading state goes down.
func (s State) fadesOut() bool {
	return s == Pausing || s == Finishing
}

// TrackState is the observable state of a slot. Position, Duration and
// Frequency are in output samples; Duration is 0 until known.
type TrackState struct {
	ID        AudioID
	State     State
	Position  int64
	Duration  int64
	Frequency int
}
