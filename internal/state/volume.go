package state

import (
	"database/sql"
	"errors"
	"time"
)

// SongVolume returns the saved song volume. ok is false when none was saved.
func (m *Manager) SongVolume() (volume float64, ok bool, err error) {
	return getSongVolume(m.db)
}

// SaveSongVolume persists the song volume. Saves are debounced so dragging
// a volume slider writes once.
func (m *Manager) SaveSongVolume(volume float64) {
	m.saveMu.Lock()
	defer m.saveMu.Unlock()

	m.pending = &volume

	if m.saveTimer != nil {
		m.saveTimer.Stop()
	}

	m.saveTimer = time.AfterFunc(saveDebounce, func() {
		m.saveMu.Lock()
		pending := m.pending
		m.pending = nil
		m.saveMu.Unlock()

		if pending != nil {
			_ = saveSongVolume(m.db, *pending)
		}
	})
}

func getSongVolume(db *sql.DB) (float64, bool, error) {
	var volume float64
	row := db.QueryRow(`SELECT song_volume FROM player_state WHERE id = 1`)
	err := row.Scan(&volume)
	if errors.Is(err, sql.ErrNoRows) {
		return 1, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return volume, true, nil
}

func saveSongVolume(db *sql.DB, volume float64) error {
	_, err := db.Exec(`
		INSERT INTO player_state (id, song_volume)
		VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET
			song_volume = excluded.song_volume
	`, volume)
	return err
}
