package device

// BufferQueue is the play-queue bookkeeping shared by Voice implementations.
// Its gain is recorded, not applied. It is not synchronized.
type BufferQueue struct {
	buffers []Buffer
	offset  int64
	state   VoiceState
	gain    float64
}

// NewBufferQueue returns an empty queue at unity gain.
func NewBufferQueue() BufferQueue {
	return BufferQueue{gain: 1}
}

// Push appends a buffer.
func (q *BufferQueue) Push(b Buffer) error {
	if err := b.validate(); err != nil {
		return err
	}
	q.buffers = append(q.buffers, b)
	return nil
}

// Len returns the number of queued buffers.
func (q *BufferQueue) Len() int {
	return len(q.buffers)
}

// Total returns the number of queued frames.
func (q *BufferQueue) Total() int64 {
	var total int64
	for _, b := range q.buffers {
		total += b.Samples()
	}
	return total
}

// Frequency returns the rate of the head buffer, or 0 when empty.
func (q *BufferQueue) Frequency() int {
	if len(q.buffers) == 0 {
		return 0
	}
	return q.buffers[0].Frequency
}

// Processed counts head buffers that lie entirely before the offset.
// Once the voice stopped at the end of its data every buffer is processed.
func (q *BufferQueue) Processed() int {
	var end int64
	n := 0
	for _, b := range q.buffers {
		end += b.Samples()
		if end > q.offset {
			break
		}
		n++
	}
	return n
}

// Pop removes the head buffer if it was processed.
func (q *BufferQueue) Pop() error {
	if len(q.buffers) == 0 || q.Processed() == 0 {
		return ErrNotProcessed
	}
	q.offset -= q.buffers[0].Samples()
	q.buffers[0] = Buffer{}
	q.buffers = q.buffers[1:]
	return nil
}

func (q *BufferQueue) Offset() int64 {
	return q.offset
}

// Seek moves the offset, clamped to the queued data.
func (q *BufferQueue) Seek(samples int64) {
	q.offset = min(max(samples, 0), q.Total())
}

func (q *BufferQueue) State() VoiceState {
	return q.state
}

func (q *BufferQueue) Play() {
	q.state = VoicePlaying
}

func (q *BufferQueue) Pause() {
	if q.state == VoicePlaying {
		q.state = VoicePaused
	}
}

func (q *BufferQueue) Stop() {
	q.state = VoiceStopped
}

// Reset drops all buffers and rewinds.
func (q *BufferQueue) Reset() {
	clear(q.buffers)
	q.buffers = q.buffers[:0]
	q.offset = 0
	q.state = VoiceInitial
}

func (q *BufferQueue) Gain() float64 {
	return q.gain
}

func (q *BufferQueue) SetGain(gain float64) {
	q.gain = min(max(gain, 0), 1)
}

// Advance moves a playing queue forward by up to n frames and returns how
// far it went. Reaching the end of the data stops the queue.
func (q *BufferQueue) Advance(n int64) int64 {
	if q.state != VoicePlaying || n <= 0 {
		return 0
	}
	total := q.Total()
	step := min(n, total-q.offset)
	q.offset += step
	if q.offset >= total {
		q.state = VoiceStopped
	}
	return step
}

// Read fills dst with frames from a playing queue and advances. The gain is
// not applied; outputs apply it on their own stream.
// It returns the number of frames written; a short count means the queue
// ran dry and stopped.
func (q *BufferQueue) Read(dst [][2]float64) int {
	if q.state != VoicePlaying {
		return 0
	}
	n := 0
	start := int64(0)
	for _, b := range q.buffers {
		count := b.Samples()
		if q.offset >= start+count {
			start += count
			continue
		}
		for i := q.offset - start; i < count && n < len(dst); i++ {
			frame := frameAt(b.Format, b.Data, i)
			dst[n] = frame
			n++
			q.offset++
		}
		if n == len(dst) {
			return n
		}
		start += count
	}
	q.state = VoiceStopped
	return n
}
