// Package robotstate holds robots in process memory with change
// notification and optional snapshot persistence.
package robotstate

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/robolab/internal/domain/robot"
	"github.com/rs/zerolog"
)

const storeLabel = "memory"

// State is an immutable view of the store.
type State struct {
	Records    []robot.Robot `json:"records"`
	SelectedID string        `json:"selectedId,omitempty"`
}

func (s State) clone() State {
	return State{Records: slices.Clone(s.Records), SelectedID: s.SelectedID}
}

// Store is an in-memory robot collection ordered by name. Listeners may read
// the store but must not mutate it.
type Store struct {
	mu        sync.Mutex
	notifyMu  sync.Mutex
	state     State
	listeners map[int]func(State)
	nextSub   int

	validator *robot.Validator
	recorder  robot.Recorder
	newID     func() string
	logger    zerolog.Logger
}

// Option customizes a Store.
type Option func(*Store)

// WithValidator shares a validator with other stores.
func WithValidator(v *robot.Validator) Option {
	return func(s *Store) { s.validator = v }
}

// WithRecorder sets the operation recorder.
func WithRecorder(r robot.Recorder) Option {
	return func(s *Store) { s.recorder = r }
}

// WithIDGenerator replaces uuid generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// NewStore creates an empty store.
func NewStore(logger zerolog.Logger, opts ...Option) *Store {
	s := &Store{
		listeners: make(map[int]func(State)),
		newID:     uuid.NewString,
		logger:    logger,
		state:     State{Records: []robot.Robot{}},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.validator == nil {
		s.validator = robot.NewValidator(nil)
	}
	return s
}

// Create validates in and adds a robot with a fresh id.
func (s *Store) Create(in robot.Input) (rec robot.Robot, err error) {
	defer s.observe("create", time.Now(), &err)

	in = robot.Normalize(in)
	if err := s.validator.ValidateInput(in); err != nil {
		return robot.Robot{}, err
	}

	s.begin()
	if !s.nameFree(in.Name, "") {
		s.abort()
		return robot.Robot{}, &robot.DuplicateNameError{Name: in.Name}
	}
	rec = robot.Robot{ID: s.newID(), Name: in.Name, Label: in.Label, Year: in.Year, Type: in.Type}
	s.state.Records = append(s.state.Records, rec)
	sortByName(s.state.Records)
	s.commit()

	s.logger.Info().Str("robot_id", rec.ID).Str("name", rec.Name).Msg("robot created")
	return rec, nil
}

// Update replaces every mutable field of the robot with the given id.
func (s *Store) Update(id string, in robot.Input) (rec robot.Robot, err error) {
	defer s.observe("update", time.Now(), &err)

	in = robot.Normalize(in)
	if err := s.validator.ValidateInput(in); err != nil {
		return robot.Robot{}, err
	}

	s.begin()
	idx := s.indexOf(id)
	if idx < 0 {
		s.abort()
		return robot.Robot{}, robot.ErrNotFound
	}
	if !s.nameFree(in.Name, id) {
		s.abort()
		return robot.Robot{}, &robot.DuplicateNameError{Name: in.Name}
	}
	rec = s.state.Records[idx]
	rec.Name, rec.Label, rec.Year, rec.Type = in.Name, in.Label, in.Year, in.Type
	s.state.Records = slices.Clone(s.state.Records)
	s.state.Records[idx] = rec
	sortByName(s.state.Records)
	s.commit()

	s.logger.Info().Str("robot_id", id).Msg("robot updated")
	return rec, nil
}

// Remove deletes the robot and clears the selection if it pointed at it.
func (s *Store) Remove(id string) (err error) {
	defer s.observe("remove", time.Now(), &err)

	s.begin()
	idx := s.indexOf(id)
	if idx < 0 {
		s.abort()
		return robot.ErrNotFound
	}
	s.state.Records = slices.Delete(slices.Clone(s.state.Records), idx, idx+1)
	if s.state.SelectedID == id {
		s.state.SelectedID = ""
	}
	s.commit()

	s.logger.Info().Str("robot_id", id).Msg("robot removed")
	return nil
}

// All returns every robot ordered by name.
func (s *Store) All() []robot.Robot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.Records)
}

// Get returns the robot with the given id.
func (s *Store) Get(id string) (robot.Robot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexOf(id); idx >= 0 {
		return s.state.Records[idx], true
	}
	return robot.Robot{}, false
}

// IsNameUnique reports whether no robot other than excludeID uses name,
// ignoring case and surrounding whitespace.
func (s *Store) IsNameUnique(name, excludeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nameFree(name, excludeID)
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Selected returns the selected robot, if any.
func (s *Store) Selected() (robot.Robot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.SelectedID == "" {
		return robot.Robot{}, false
	}
	if idx := s.indexOf(s.state.SelectedID); idx >= 0 {
		return s.state.Records[idx], true
	}
	return robot.Robot{}, false
}

// SetSelectedID marks id as selected. An empty id clears the selection.
func (s *Store) SetSelectedID(id string) {
	s.begin()
	s.state.SelectedID = id
	s.commit()
}

// ClearSelected clears the selection.
func (s *Store) ClearSelected() {
	s.SetSelectedID("")
}

// ClearAll removes every robot and the selection.
func (s *Store) ClearAll() {
	s.begin()
	s.state = State{Records: []robot.Robot{}}
	s.commit()
	s.logger.Info().Msg("all robots cleared")
}

// Subscribe registers fn to receive the state after every change.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// replace swaps in a hydrated state and notifies listeners.
func (s *Store) replace(state State) {
	s.begin()
	s.state = state.clone()
	if s.state.Records == nil {
		s.state.Records = []robot.Robot{}
	}
	sortByName(s.state.Records)
	s.commit()
}

// begin takes notifyMu before mu so that listeners may read the store while
// the next mutation waits its turn.
func (s *Store) begin() {
	s.notifyMu.Lock()
	s.mu.Lock()
}

// abort releases a mutation that changed nothing.
func (s *Store) abort() {
	s.mu.Unlock()
	s.notifyMu.Unlock()
}

// commit must follow begin. It releases mu, notifies listeners in mutation
// order, then releases notifyMu.
func (s *Store) commit() {
	snapshot := s.state.clone()
	listeners := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()
	defer s.notifyMu.Unlock()

	for _, fn := range listeners {
		fn(snapshot.clone())
	}
}

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.state.Records, func(r robot.Robot) bool { return r.ID == id })
}

func (s *Store) nameFree(name, excludeID string) bool {
	key := robot.NameKey(name)
	for _, r := range s.state.Records {
		if r.ID != excludeID && robot.NameKey(r.Name) == key {
			return false
		}
	}
	return true
}

func (s *Store) observe(op string, start time.Time, errp *error) {
	if s.recorder == nil {
		return
	}
	s.recorder.ObserveOperation(storeLabel, op, robot.Outcome(*errp), time.Since(start))
}

func sortByName(records []robot.Robot) {
	slices.SortStableFunc(records, func(a, b robot.Robot) int {
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}
