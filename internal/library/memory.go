package library

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/hammamikhairi/lullaby/internal/domain"
	"github.com/hammamikhairi/lullaby/internal/logger"
)

// Compile-time interface check.
var _ domain.TrackSource = (*Memory)(nil)

// Option configures a Memory queue.
type Option func(*Memory)

// WithShuffle plays tracks in random order, reshuffled on every pass.
func WithShuffle(on bool) Option {
	return func(m *Memory) {
		m.shuffle = on
	}
}

// WithRand sets the random source used for shuffling.
func WithRand(r *rand.Rand) Option {
	return func(m *Memory) {
		m.rng = r
	}
}

// Memory is an in-memory play queue that loops over its tracks forever.
// Safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	tracks  []domain.Track
	order   []int
	pos     int
	shuffle bool
	rng     *rand.Rand
	log     *logger.Logger
}

// NewMemory creates a queue over tracks.
func NewMemory(tracks []domain.Track, log *logger.Logger, opts ...Option) *Memory {
	m := &Memory{
		tracks: append([]domain.Track(nil), tracks...),
		order:  make([]int, len(tracks)),
		log:    log,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	for i := range m.order {
		m.order[i] = i
	}
	if m.shuffle {
		m.reshuffle(-1)
	}
	return m
}

// Next returns the next track, starting a new pass when the queue has been
// played through.
func (m *Memory) Next(ctx context.Context) (domain.Track, error) {
	if err := ctx.Err(); err != nil {
		return domain.Track{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.tracks) == 0 {
		return domain.Track{}, domain.ErrEmptyLibrary
	}
	if m.pos == len(m.order) {
		m.pos = 0
		if m.shuffle {
			m.reshuffle(m.order[len(m.order)-1])
		}
		m.log.Debug("queue wrapped around (%d tracks)", len(m.tracks))
	}

	t := m.tracks[m.order[m.pos]]
	m.pos++
	return t, nil
}

// Len returns the number of tracks in the queue.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tracks)
}

// reshuffle randomises the order, avoiding last as the first track so a
// pass boundary never repeats a song.
func (m *Memory) reshuffle(last int) {
	m.rng.Shuffle(len(m.order), func(i, j int) {
		m.order[i], m.order[j] = m.order[j], m.order[i]
	})
	if len(m.order) > 1 && m.order[0] == last {
		k := 1 + m.rng.IntN(len(m.order)-1)
		m.order[0], m.order[k] = m.order[k], m.order[0]
	}
}
