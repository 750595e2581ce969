package player

// Interface is the player contract used by the playback service, so tests
// can substitute Mock.
type Interface interface {
	Play(id AudioID, position int64)
	PauseResume(cat Category, fast bool)
	Seek(cat Category, position int64)
	Stop(cat Category)
	StopAndClear()
	CurrentState(cat Category) TrackState
	ClearStoppedAtStart(id AudioID)
	SetSongVolume(v float64)
	SongVolume() float64
	PlayNotify() error
	Subscribe() *Subscription
	Unsubscribe(s *Subscription)
	Reinit() error
	Close()
}

// Verify Player implements Interface at compile time.
var _ Interface = (*Player)(nil)
