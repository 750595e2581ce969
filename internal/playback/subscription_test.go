package playback

import (
	"testing"
	"testing/synctest"
	"time"

	"github.com/llehouerou/chirp/internal/player"
)

func TestNewSubscription_ChannelsReadable(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		sub := newSubscription()

		sub.sendState(StateChange{Category: player.Song, Previous: StateStopped, Current: StatePlaying})
		sub.sendTrack(TrackChange{Category: player.Voice, Current: &Track{Path: testPathA}})
		sub.sendPosition(PositionChange{Category: player.Song, Position: 30 * time.Second})
		sub.sendVolume(VolumeChange{Volume: 0.5})
		sub.sendError(ErrorEvent{})

		e := <-sub.StateChanged
		if e.Current != StatePlaying {
			t.Errorf("StateChanged.Current = %v, want Playing", e.Current)
		}

		tr := <-sub.TrackChanged
		if tr.Category != player.Voice || tr.Current.Path != testPathA {
			t.Errorf("TrackChanged = %+v, want voice %s", tr, testPathA)
		}

		pos := <-sub.PositionChanged
		if pos.Position != 30*time.Second {
			t.Errorf("PositionChanged.Position = %v, want 30s", pos.Position)
		}

		v := <-sub.VolumeChanged
		if v.Volume != 0.5 {
			t.Errorf("VolumeChanged.Volume = %v, want 0.5", v.Volume)
		}

		<-sub.Error
	})
}

func TestSubscription_Close_SignalsDone(t *testing.T) {
	synctest.Test(t, func(_ *testing.T) {
		sub := newSubscription()
		sub.close()
		<-sub.Done
	})
}

func TestSubscription_NonBlocking_DropsWhenFull(t *testing.T) {
	sub := newSubscription()

	// Fill buffer
	for range eventBufferSize + 5 {
		sub.sendState(StateChange{})
	}

	// Should not block or panic - count what we got
	count := 0
	for {
		select {
		case <-sub.StateChanged:
			count++
		default:
			goto done
		}
	}
done:
	if count != eventBufferSize {
		t.Errorf("received %d events, want %d (buffer size)", count, eventBufferSize)
	}
}
