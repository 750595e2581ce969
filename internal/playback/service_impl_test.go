package playback

import (
	"errors"
	"testing"
	"testing/synctest"
	"time"

	"github.com/llehouerou/chirp/internal/errmsg"
	"github.com/llehouerou/chirp/internal/player"
	"github.com/llehouerou/chirp/internal/state"
)

// newTestService returns a service over mocks with one song and one voice
// message registered.
func newTestService(t *testing.T) (Service, *player.Mock, *state.Mock, []state.Document) {
	t.Helper()
	p := player.NewMock()
	st := state.NewMock()
	docs, err := st.RegisterDocuments([]state.Document{
		{Category: player.Song, Path: testPathA, Title: "Song A", Duration: 3 * time.Minute},
		{Category: player.Song, Path: testPathB, Title: "Song B"},
		{Category: player.Voice, Data: []byte("OggS"), Title: "Voice"},
	})
	if err != nil {
		t.Fatalf("RegisterDocuments failed: %v", err)
	}
	svc := New(p, st)
	t.Cleanup(func() { svc.Close() })
	return svc, p, st, docs
}

func TestNew_AppliesSavedVolume(t *testing.T) {
	p := player.NewMock()
	st := state.NewMock()
	st.SaveSongVolume(0.4)

	svc := New(p, st)
	defer svc.Close()

	if p.SongVolume() != 0.4 {
		t.Errorf("player volume = %v, want 0.4", p.SongVolume())
	}
}

func TestService_Play_StartsDocument(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		svc, p, _, docs := newTestService(t)
		sub := svc.Subscribe()

		if err := svc.Play(player.Song, docs[0].ID); err != nil {
			t.Fatalf("Play failed: %v", err)
		}
		synctest.Wait()

		calls := p.PlayCalls()
		if len(calls) != 1 || calls[0].Document != docs[0].ID || calls[0].Category != player.Song {
			t.Fatalf("PlayCalls = %v, want one call for document %d", calls, docs[0].ID)
		}

		tc := <-sub.TrackChanged
		if tc.Previous != nil || tc.Current.Title != "Song A" {
			t.Errorf("TrackChanged = %+v, want Song A from nothing", tc)
		}
		sc := <-sub.StateChanged
		if sc.Previous != StateStopped || sc.Current != StatePlaying || sc.Category != player.Song {
			t.Errorf("StateChanged = %+v, want song Stopped -> Playing", sc)
		}
		if !svc.IsPlaying(player.Song) {
			t.Error("IsPlaying(Song) should be true")
		}
		if svc.Current(player.Song).Path != testPathA {
			t.Errorf("Current.Path = %q, want %s", svc.Current(player.Song).Path, testPathA)
		}
	})
}

func TestService_Play_SameDocumentKeepsIdentity(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		svc, p, _, docs := newTestService(t)
		sub := svc.Subscribe()

		_ = svc.Play(player.Song, docs[0].ID)
		_ = svc.Play(player.Song, docs[0].ID)
		_ = svc.Play(player.Song, docs[1].ID)
		synctest.Wait()

		calls := p.PlayCalls()
		if len(calls) != 3 {
			t.Fatalf("got %d play calls, want 3", len(calls))
		}
		if calls[0] != calls[1] {
			t.Errorf("replaying a document changed its id: %v then %v", calls[0], calls[1])
		}
		if calls[2] == calls[1] {
			t.Error("a different document must get a new id")
		}

		if got := len(sub.TrackChanged); got != 2 {
			t.Errorf("got %d track changes, want 2", got)
		}
	})
}

func TestService_Play_Errors(t *testing.T) {
	svc, p, _, docs := newTestService(t)

	if err := svc.Play(player.Song, 999); !errors.Is(err, state.ErrDocumentNotFound) {
		t.Errorf("Play(unknown) = %v, want ErrDocumentNotFound", err)
	}
	if err := svc.Play(player.Song, docs[2].ID); err == nil {
		t.Error("playing a voice message as a song should fail")
	}
	if len(p.PlayCalls()) != 0 {
		t.Errorf("player should not be called, got %v", p.PlayCalls())
	}
}

func TestService_ControlsWithoutTrack(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	controls := map[string]func() error{
		"Pause":  func() error { return svc.Pause(player.Song) },
		"Resume": func() error { return svc.Resume(player.Song) },
		"Toggle": func() error { return svc.Toggle(player.Song) },
		"Stop":   func() error { return svc.Stop(player.Song) },
		"Seek":   func() error { return svc.Seek(player.Song, time.Second) },
		"SeekTo": func() error { return svc.SeekTo(player.Song, time.Second) },
	}
	for name, fn := range controls {
		if err := fn(); !errors.Is(err, ErrNothingPlaying) {
			t.Errorf("%s() = %v, want ErrNothingPlaying", name, err)
		}
	}
}

func TestService_Toggle(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		svc, p, _, docs := newTestService(t)

		_ = svc.Play(player.Voice, docs[2].ID)
		if err := svc.Toggle(player.Voice); err != nil {
			t.Fatalf("Toggle failed: %v", err)
		}
		if svc.State(player.Voice) != StatePaused {
			t.Errorf("State = %v, want Paused", svc.State(player.Voice))
		}

		if err := svc.Toggle(player.Voice); err != nil {
			t.Fatalf("Toggle failed: %v", err)
		}
		if svc.State(player.Voice) != StatePlaying {
			t.Errorf("State = %v, want Playing", svc.State(player.Voice))
		}

		// A finished track starts over.
		st := p.CurrentState(player.Voice)
		st.State = player.StoppedAtEnd
		p.SetState(player.Voice, st)
		if err := svc.Toggle(player.Voice); err != nil {
			t.Fatalf("Toggle failed: %v", err)
		}
		calls := p.PlayCalls()
		if len(calls) != 2 || calls[1] != st.ID {
			t.Errorf("PlayCalls = %v, want a replay of %v", calls, st.ID)
		}
	})
}

func TestService_Pause_OnlyWhenPlaying(t *testing.T) {
	svc, p, _, docs := newTestService(t)

	_ = svc.Play(player.Song, docs[0].ID)
	_ = svc.Pause(player.Song)
	_ = svc.Pause(player.Song)
	if svc.State(player.Song) != StatePaused {
		t.Errorf("State = %v, want Paused after pausing twice", svc.State(player.Song))
	}

	_ = svc.Resume(player.Song)
	_ = svc.Resume(player.Song)
	if p.CurrentState(player.Song).State != player.Playing {
		t.Errorf("player state = %v, want Playing after resuming twice", p.CurrentState(player.Song).State)
	}
}

func TestService_Seek(t *testing.T) {
	svc, p, _, docs := newTestService(t)
	_ = svc.Play(player.Song, docs[0].ID)

	if err := svc.Seek(player.Song, time.Second); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("Seek before load = %v, want ErrNotLoaded", err)
	}

	st := p.CurrentState(player.Song)
	st.Frequency = 44100
	st.Duration = 10 * 44100
	st.Position = 2 * 44100
	p.SetState(player.Song, st)

	if err := svc.Seek(player.Song, 3*time.Second); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}
	if err := svc.Seek(player.Song, -time.Hour); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}
	if err := svc.SeekTo(player.Song, time.Hour); err != nil {
		t.Fatalf("SeekTo failed: %v", err)
	}

	want := []int64{5 * 44100, 0, 10 * 44100}
	got := p.SeekCalls()
	if len(got) != len(want) {
		t.Fatalf("SeekCalls = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SeekCalls[%d] = %d, want %d", i, got[i], want[i])
		}
	}
	if svc.Position(player.Song) != 10*time.Second {
		t.Errorf("Position = %v, want 10s", svc.Position(player.Song))
	}
}

func TestService_Duration_FallsBackToCatalogue(t *testing.T) {
	svc, p, _, docs := newTestService(t)
	_ = svc.Play(player.Song, docs[0].ID)

	if svc.Duration(player.Song) != 3*time.Minute {
		t.Errorf("Duration = %v, want catalogue value 3m", svc.Duration(player.Song))
	}

	st := p.CurrentState(player.Song)
	st.Frequency = 48000
	st.Duration = 48000 * 170
	p.SetState(player.Song, st)
	if svc.Duration(player.Song) != 170*time.Second {
		t.Errorf("Duration = %v, want decoded value 2m50s", svc.Duration(player.Song))
	}
}

func TestService_PositionEvents(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		svc, p, _, docs := newTestService(t)
		sub := svc.Subscribe()
		_ = svc.Play(player.Song, docs[0].ID)
		synctest.Wait()
		<-sub.PositionChanged

		st := p.CurrentState(player.Song)
		st.Frequency = 1000
		st.Position = 1500
		st.Duration = 4000
		p.Emit(player.Event{Kind: player.EventUpdated, State: st})
		synctest.Wait()

		pc := <-sub.PositionChanged
		if pc.Position != 1500*time.Millisecond || pc.Duration != 4*time.Second {
			t.Errorf("PositionChanged = %+v, want 1.5s of 4s", pc)
		}
	})
}

func TestService_IgnoresDisplacedTrack(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		svc, p, _, docs := newTestService(t)
		sub := svc.Subscribe()
		_ = svc.Play(player.Song, docs[0].ID)
		old := p.CurrentState(player.Song)
		_ = svc.Play(player.Song, docs[1].ID)
		synctest.Wait()
		for len(sub.StateChanged) > 0 {
			<-sub.StateChanged
		}

		old.State = player.Stopped
		p.Emit(player.Event{Kind: player.EventStopped, State: old})
		synctest.Wait()

		if len(sub.StateChanged) != 0 {
			t.Errorf("stop of a displaced track changed the state: %+v", <-sub.StateChanged)
		}
	})
}

func TestService_ReportsFailedStart(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		svc, p, _, docs := newTestService(t)
		sub := svc.Subscribe()
		_ = svc.Play(player.Voice, docs[2].ID)
		synctest.Wait()

		st := p.CurrentState(player.Voice)
		st.State = player.StoppedAtStart
		p.SetState(player.Voice, st)
		p.Emit(player.Event{Kind: player.EventStoppedOnError, State: st, Err: errors.New("unknown format")})
		synctest.Wait()

		e := <-sub.Error
		if e.Operation != errmsg.OpPlaybackStart {
			t.Errorf("Operation = %q, want %q", e.Operation, errmsg.OpPlaybackStart)
		}
		if e.Document == nil || e.Document.Title != "Voice" {
			t.Errorf("Document = %+v, want the voice message", e.Document)
		}
		if p.CurrentState(player.Voice).State != player.Stopped {
			t.Errorf("state = %v, want Stopped once reported", p.CurrentState(player.Voice).State)
		}
	})
}

func TestService_ReportsDecodeFailure(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		svc, p, _, docs := newTestService(t)
		sub := svc.Subscribe()
		_ = svc.Play(player.Song, docs[0].ID)
		synctest.Wait()

		st := p.CurrentState(player.Song)
		st.State = player.StoppedAtError
		p.Emit(player.Event{Kind: player.EventStoppedOnError, State: st})
		synctest.Wait()

		e := <-sub.Error
		if e.Err == nil {
			t.Error("ErrorEvent.Err should never be nil")
		}
		if e.Operation != errmsg.OpPlaybackDecode {
			t.Errorf("Operation = %q, want %q", e.Operation, errmsg.OpPlaybackDecode)
		}
	})
}

func TestService_SetVolume_Persists(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		svc, p, st, _ := newTestService(t)
		sub := svc.Subscribe()

		svc.SetVolume(1.7)

		if p.SongVolume() != 1 {
			t.Errorf("player volume = %v, want clamped 1", p.SongVolume())
		}
		if v, ok, _ := st.SongVolume(); !ok || v != 1 {
			t.Errorf("saved volume = %v (%v), want 1", v, ok)
		}
		if e := <-sub.VolumeChanged; e.Volume != 1 {
			t.Errorf("VolumeChanged = %v, want 1", e.Volume)
		}
		if svc.Volume() != 1 {
			t.Errorf("Volume() = %v, want 1", svc.Volume())
		}
	})
}

func TestService_Notify(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		svc, p, _, _ := newTestService(t)
		sub := svc.Subscribe()

		if err := svc.Notify(); err != nil {
			t.Fatalf("Notify failed: %v", err)
		}
		if p.Notifies() != 1 {
			t.Errorf("Notifies = %d, want 1", p.Notifies())
		}

		p.SetNotifyError(errors.New("no sound"))
		if err := svc.Notify(); err == nil {
			t.Error("Notify should return the player error")
		}
		e := <-sub.Error
		if e.Operation != errmsg.OpNotify || e.Document != nil {
			t.Errorf("ErrorEvent = %+v, want notify error without document", e)
		}
	})
}

func TestService_StopAll(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		svc, _, _, docs := newTestService(t)
		sub := svc.Subscribe()
		_ = svc.Play(player.Song, docs[0].ID)
		_ = svc.Play(player.Voice, docs[2].ID)
		synctest.Wait()
		for len(sub.StateChanged) > 0 {
			<-sub.StateChanged
		}

		svc.StopAll()

		if got := len(sub.StateChanged); got != 2 {
			t.Errorf("got %d state changes, want 2", got)
		}
		if svc.State(player.Song) != StateStopped || svc.State(player.Voice) != StateStopped {
			t.Error("every category should be stopped")
		}
	})
}

func TestService_Close(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		p := player.NewMock()
		svc := New(p, state.NewMock())
		sub := svc.Subscribe()

		if err := svc.Close(); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
		<-sub.Done
		if err := svc.Close(); err != nil {
			t.Errorf("second Close failed: %v", err)
		}
	})
}
