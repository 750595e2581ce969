package player

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/llehouerou/chirp/internal/decoder"
)

type loadKind int

const (
	loadStart loadKind = iota
	loadMore
	loadCancel
)

func (k loadKind) String() string {
	switch k {
	case loadStart:
		return "start"
	case loadMore:
		return "load"
	case loadCancel:
		return "cancel"
	default:
		return "unknown"
	}
}

// loadRequest is a message to the loader. seq is the track's request
// counter when the message was posted; a cancel only clears the loading
// flag if no newer request followed it. generation is the start of the
// slot the request belongs to, and position the first sample it wants.
type loadRequest struct {
	kind       loadKind
	id         AudioID
	position   int64
	seq        uint64
	generation uint64
}

// loadJob is the open decoder of one category.
type loadJob struct {
	id         AudioID
	generation uint64
	dec        *decoder.Loader
	// pending holds decoded audio the ring had no room for.
	pending        []byte
	pendingSamples int64
	started        bool
	eof            bool
}

// owns reports whether tr still plays the start the job was opened for.
func (j *loadJob) owns(tr *track) bool {
	return tr.state.ID == j.id && tr.generation == j.generation
}

// loaders decodes audio for the player, one job per category.
type loaders struct {
	p    *Player
	box  *mailbox[loadRequest]
	jobs [numCategories]*loadJob
	log  *logrus.Entry

	// decoded, when set, runs after a pass decoded its audio and before it
	// is published.
	decoded func(id AudioID)
}

func newLoaders(p *Player) *loaders {
	return &loaders{
		p:   p,
		box: newMailbox[loadRequest](),
		log: logrus.WithField("component", "loader"),
	}
}

func (l *loaders) post(req loadRequest) {
	l.box.post(req)
}

func (l *loaders) run(done <-chan struct{}) {
	defer l.closeAll()
	for {
		select {
		case <-done:
			return
		case <-l.box.ready():
		}
		l.process(l.box.drain())
	}
}

func (l *loaders) process(batch []loadRequest) {
	for i, req := range batch {
		if superseded(req, batch[i+1:]) {
			continue
		}
		l.handle(req)
	}
}

// superseded reports whether a later start of the same category makes req
// pointless. Cancels always run.
func superseded(req loadRequest, later []loadRequest) bool {
	if req.kind == loadCancel {
		return false
	}
	for _, next := range later {
		if next.kind == loadStart && next.id.Category == req.id.Category {
			return true
		}
	}
	return false
}

func (l *loaders) handle(req loadRequest) {
	switch req.kind {
	case loadStart:
		l.closeJob(req.id.Category)
		l.load(req)
	case loadMore:
		l.load(req)
	case loadCancel:
		l.cancel(req)
	}
}

// cancel tears down the job of req.id and clears the loading flag of its
// slot. Safe when nothing is loading.
func (l *loaders) cancel(req loadRequest) {
	cat := req.id.Category
	if job := l.jobs[cat]; job != nil && job.id == req.id && job.generation == req.generation {
		l.closeJob(cat)
	}
	l.p.mu.Lock()
	defer l.p.mu.Unlock()
	for _, tr := range l.p.tracks[cat] {
		if tr.state.ID == req.id && tr.loadSeq == req.seq {
			tr.loading = false
		}
	}
}

// preempted reports whether a queued message makes the running pass for
// id obsolete.
func (l *loaders) preempted(id AudioID) bool {
	return l.box.any(func(r loadRequest) bool {
		switch r.kind {
		case loadStart:
			return r.id.Category == id.Category
		case loadCancel:
			return r.id == id
		default:
			return false
		}
	})
}

// load runs one load pass for the slot req was posted for.
func (l *loaders) load(req loadRequest) {
	id := req.id
	cat := id.Category
	log := l.log.WithFields(logrus.Fields{
		"function": "load",
		"id":       id.String(),
	})

	l.p.mu.Lock()
	tr := l.p.currentLocked(cat)
	if tr.state.ID != id || tr.generation != req.generation || !tr.loading {
		l.p.mu.Unlock()
		log.Debug("Trying to load audio that is not current")
		return
	}
	if from := tr.bufferedEnd(); from != req.position {
		if tr.loadSeq == req.seq {
			// Let the fader ask again from where the ring ends.
			tr.loading = false
		}
		l.p.mu.Unlock()
		log.WithFields(logrus.Fields{
			"requested": req.position,
			"buffered":  from,
		}).Debug("Dropping load request for a moved track")
		return
	}
	source := tr.source
	l.p.mu.Unlock()

	job := l.jobs[cat]
	if job != nil && (job.id != id || job.generation != req.generation || !job.dec.Matches(source)) {
		l.closeJob(cat)
		job = nil
	}
	if job == nil {
		dec := decoder.New(source, decoder.Options{Frequency: l.p.opts.frequency(cat)})
		if err := dec.Open(req.position); err != nil {
			dec.Close()
			l.failStart(req, err)
			return
		}
		job = &loadJob{id: id, generation: req.generation, dec: dec}
		l.jobs[cat] = job
		log.WithFields(logrus.Fields{
			"codec":     dec.Codec(),
			"duration":  dec.Duration(),
			"frequency": dec.Frequency(),
		}).Debug("Decoder opened")
		if !l.describe(job) {
			l.closeJob(cat)
			return
		}
	}

	buf, samples := job.pending, job.pendingSamples
	job.pending, job.pendingSamples = nil, 0
	var decodeErr error
	for !job.eof && len(buf) < l.p.opts.BufferSize {
		if l.preempted(id) {
			job.pending, job.pendingSamples = buf, samples
			return
		}
		var n int64
		var err error
		buf, n, err = job.dec.ReadMore(buf)
		samples += n
		switch {
		case errors.Is(err, io.EOF):
			job.eof = true
		case err != nil:
			decodeErr = err
			job.eof = true
		}
	}

	if l.decoded != nil {
		l.decoded(id)
	}
	l.publish(job, buf, samples, decodeErr)
}

// describe stores the stream layout in the slot of job. It returns false
// when the slot was restarted or moved on to another track.
func (l *loaders) describe(job *loadJob) bool {
	l.p.mu.Lock()
	defer l.p.mu.Unlock()
	tr := l.p.currentLocked(job.id.Category)
	if !job.owns(tr) {
		return false
	}
	tr.state.Frequency = job.dec.Frequency()
	tr.state.Duration = job.dec.Duration()
	if len(tr.ring) == 0 && tr.bufferedPosition > tr.state.Duration {
		// Started past the end: the decoder clamped its position.
		tr.bufferedPosition = tr.state.Duration
		tr.state.Position = tr.state.Duration
		tr.lastUpdatePosition = tr.state.Duration
	}
	tr.skipEnd = max(tr.state.Duration-tr.bufferedEnd(), 0)
	return true
}

// publish hands decoded audio to the slot, provided it still plays the
// same start of the same track.
func (l *loaders) publish(job *loadJob, buf []byte, samples int64, decodeErr error) {
	p := l.p
	id := job.id
	cat := id.Category
	log := l.log.WithFields(logrus.Fields{
		"function": "publish",
		"id":       id.String(),
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	tr := p.currentLocked(cat)
	if !job.owns(tr) || !tr.loading {
		log.Debug("Dropping decoded audio of a track that is no longer current")
		return
	}

	if decodeErr != nil {
		if !job.started && samples == 0 {
			l.closeJob(cat)
			p.failStartLocked(tr, decodeErr)
			return
		}
		log.WithField("error", decodeErr.Error()).Warn("Decoding failed, ending track early")
	}

	if samples > 0 {
		queued, err := p.queueLocked(tr, buf, samples)
		if err != nil {
			tr.loading = false
			p.failLocked(tr, err)
			return
		}
		if !queued {
			// Ring full: keep the audio for the next pass.
			job.pending, job.pendingSamples = buf, samples
			tr.loading = false
			return
		}
		job.started = true
	}

	if job.eof {
		l.closeJob(cat)
		if tr.bufferedEnd() == 0 {
			p.failStartLocked(tr, fmt.Errorf("%w: no samples decoded", decoder.ErrZeroDuration))
			return
		}
		tr.loaded = true
		tr.skipEnd = 0
		tr.state.Duration = tr.bufferedEnd()
		if len(tr.ring) == 0 {
			// Started at the very end.
			tr.loading = false
			tr.state.Position = tr.bufferedPosition
			tr.state.State = StoppedAtEnd
			p.emitLocked(EventStopped, tr, nil)
			return
		}
	}

	tr.loading = false
	if err := p.resumeVoiceLocked(tr); err != nil {
		p.failLocked(tr, err)
		return
	}
	p.wakeFader()
}

// failStart reports a track whose decoder could not be opened.
func (l *loaders) failStart(req loadRequest, err error) {
	l.p.mu.Lock()
	defer l.p.mu.Unlock()
	tr := l.p.currentLocked(req.id.Category)
	if tr.state.ID != req.id || tr.generation != req.generation || !tr.loading {
		return
	}
	l.p.failStartLocked(tr, err)
}

func (l *loaders) closeJob(cat Category) {
	if job := l.jobs[cat]; job != nil {
		job.dec.Close()
		l.jobs[cat] = nil
	}
}

func (l *loaders) closeAll() {
	for cat := range l.jobs {
		l.closeJob(Category(cat))
	}
}
