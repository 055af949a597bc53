package robotstate

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rpggio/robolab/internal/domain/robot"
	"github.com/rpggio/robolab/internal/kv"
	"github.com/rs/zerolog"
)

// DefaultKey is the storage key of the snapshot.
const DefaultKey = "robots-storage"

// Persister mirrors a Store into a kv.Store.
type Persister struct {
	store     *Store
	kv        kv.Store
	key       string
	validator *robot.Validator
	logger    zerolog.Logger

	mu      sync.Mutex
	ctx     context.Context
	lastErr error

	lifeMu      sync.Mutex
	unsubscribe func()

	ready     chan struct{}
	readyOnce sync.Once
}

// NewPersister creates a persister writing under key. An empty key uses
// DefaultKey.
func NewPersister(store *Store, kvs kv.Store, key string, logger zerolog.Logger) *Persister {
	if key == "" {
		key = DefaultKey
	}
	return &Persister{
		store:     store,
		kv:        kvs,
		key:       key,
		validator: store.validator,
		logger:    logger,
		ctx:       context.Background(),
		ready:     make(chan struct{}),
	}
}

// Hydrate loads the snapshot into the store. A missing snapshot leaves the
// store empty. Any other failure is logged and also leaves the store empty;
// the error is returned for callers that want to surface it.
func (p *Persister) Hydrate(ctx context.Context) error {
	defer p.readyOnce.Do(func() { close(p.ready) })

	data, err := p.kv.Get(ctx, p.key)
	if errors.Is(err, kv.ErrNotFound) {
		p.logger.Debug().Str("key", p.key).Msg("no snapshot to restore")
		return nil
	}
	if err != nil {
		return p.hydrateFailed(fmt.Errorf("reading snapshot: %w", err))
	}

	state, from, err := Decode(data)
	if err != nil {
		return p.hydrateFailed(err)
	}

	state = p.sanitize(state)
	p.store.replace(state)
	p.logger.Info().Int("robots", len(state.Records)).Int("from_version", from).Msg("snapshot restored")
	return nil
}

// sanitize drops records that fail validation or reuse an id or name.
func (p *Persister) sanitize(state State) State {
	out := State{Records: make([]robot.Robot, 0, len(state.Records))}
	ids := make(map[string]bool)
	names := make(map[string]bool)
	for _, r := range state.Records {
		in := robot.Normalize(robot.InputOf(r))
		r.Name, r.Label = in.Name, in.Label
		if r.ID == "" {
			p.logger.Warn().Str("name", r.Name).Msg("dropping robot without id from snapshot")
			continue
		}
		if err := p.validator.ValidateInput(in); err != nil {
			p.logger.Warn().Err(err).Str("robot_id", r.ID).Msg("dropping invalid robot from snapshot")
			continue
		}
		key := robot.NameKey(r.Name)
		if ids[r.ID] || names[key] {
			p.logger.Warn().Str("robot_id", r.ID).Str("name", r.Name).Msg("dropping duplicate robot from snapshot")
			continue
		}
		ids[r.ID], names[key] = true, true
		out.Records = append(out.Records, r)
	}
	if ids[state.SelectedID] {
		out.SelectedID = state.SelectedID
	}
	return out
}

func (p *Persister) hydrateFailed(err error) error {
	p.logger.Error().Err(err).Str("key", p.key).Msg("snapshot restore failed, starting empty")
	p.store.replace(State{})
	return err
}

// Ready is closed once Hydrate has finished, successfully or not.
func (p *Persister) Ready() <-chan struct{} {
	return p.ready
}

// Start writes a snapshot after every store change until Close. Changes made
// before hydration finishes are not written.
func (p *Persister) Start(ctx context.Context) {
	p.lifeMu.Lock()
	defer p.lifeMu.Unlock()
	if p.unsubscribe != nil {
		return
	}
	p.mu.Lock()
	p.ctx = ctx
	p.mu.Unlock()
	p.unsubscribe = p.store.Subscribe(func(state State) {
		select {
		case <-p.ready:
		default:
			return
		}
		p.write(state)
	})
}

// Close stops persisting.
func (p *Persister) Close() {
	p.lifeMu.Lock()
	defer p.lifeMu.Unlock()
	if p.unsubscribe != nil {
		p.unsubscribe()
		p.unsubscribe = nil
	}
}

// Flush writes the current state immediately.
func (p *Persister) Flush(ctx context.Context) error {
	return p.writeCtx(ctx, p.store.State())
}

// LastError returns the most recent write failure, or nil after a
// successful write.
func (p *Persister) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

func (p *Persister) write(state State) {
	p.mu.Lock()
	ctx := p.ctx
	p.mu.Unlock()
	_ = p.writeCtx(ctx, state)
}

func (p *Persister) writeCtx(ctx context.Context, state State) error {
	data, err := Encode(state)
	if err == nil {
		err = p.kv.Set(ctx, p.key, data)
	}

	p.mu.Lock()
	p.lastErr = err
	p.mu.Unlock()

	if err != nil {
		p.logger.Error().Err(err).Str("key", p.key).Msg("snapshot write failed")
		return fmt.Errorf("writing snapshot: %w", err)
	}
	p.logger.Debug().Str("key", p.key).Int("robots", len(state.Records)).Msg("snapshot written")
	return nil
}
