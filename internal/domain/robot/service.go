package robot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/viant/afs"
	"github.com/viant/afs/url"
)

const storeLabel = "sqlite"

// Service handles robot operations over a Repository.
type Service struct {
	repo      Repository
	validator *Validator
	recorder  Recorder
	fs        afs.Service
	now       func() time.Time
	logger    zerolog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithValidator sets the shared validator.
func WithValidator(v *Validator) Option {
	return func(s *Service) { s.validator = v }
}

// WithRecorder sets the operation recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithFileSystem sets the file system used for exports.
func WithFileSystem(fs afs.Service) Option {
	return func(s *Service) { s.fs = fs }
}

// WithClock sets the clock used for export file names.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new robot service.
func NewService(repo Repository, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{repo: repo, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if s.validator == nil {
		s.validator = NewValidator(s.now)
	}
	if s.fs == nil {
		s.fs = afs.New()
	}
	return s
}

// Create validates in, pre-checks the name and inserts a new robot.
func (s *Service) Create(ctx context.Context, in Input) (rec *Robot, err error) {
	defer s.observe("create", time.Now(), &err)

	in = Normalize(in)
	if err := s.validator.ValidateInput(in); err != nil {
		return nil, err
	}

	unique, err := s.repo.IsNameUnique(ctx, in.Name, "")
	if err != nil {
		return nil, fmt.Errorf("checking name: %w", err)
	}
	if !unique {
		return nil, &DuplicateNameError{Name: in.Name}
	}

	rec, err = s.repo.Create(ctx, in)
	if err != nil {
		return nil, s.wrap("creating robot", err)
	}

	s.logger.Info().Str("robot_id", rec.ID).Str("name", rec.Name).Msg("robot created")
	return rec, nil
}

// Update applies patch to the robot with the given id.
func (s *Service) Update(ctx context.Context, id string, patch Patch) (rec *Robot, err error) {
	defer s.observe("update", time.Now(), &err)

	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	patch = NormalizePatch(patch)
	if err := s.validator.ValidatePatch(patch); err != nil {
		return nil, err
	}

	if patch.Name != nil {
		unique, err := s.repo.IsNameUnique(ctx, *patch.Name, id)
		if err != nil {
			return nil, fmt.Errorf("checking name: %w", err)
		}
		if !unique {
			return nil, &DuplicateNameError{Name: *patch.Name}
		}
	}

	rec, err = s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, s.wrap("updating robot", err)
	}

	s.logger.Info().Str("robot_id", rec.ID).Msg("robot updated")
	return rec, nil
}

// Remove hard-deletes a robot.
func (s *Service) Remove(ctx context.Context, id string) (err error) {
	defer s.observe("remove", time.Now(), &err)

	if err := s.repo.Delete(ctx, id); err != nil {
		return s.wrap("removing robot", err)
	}

	s.logger.Info().Str("robot_id", id).Msg("robot removed")
	return nil
}

// Archive soft-deletes a robot.
func (s *Service) Archive(ctx context.Context, id string) (rec *Robot, err error) {
	defer s.observe("archive", time.Now(), &err)

	rec, err = s.repo.Archive(ctx, id)
	if err != nil {
		return nil, s.wrap("archiving robot", err)
	}

	s.logger.Info().Str("robot_id", id).Msg("robot archived")
	return rec, nil
}

// Unarchive restores an archived robot.
func (s *Service) Unarchive(ctx context.Context, id string) (rec *Robot, err error) {
	defer s.observe("unarchive", time.Now(), &err)

	rec, err = s.repo.Unarchive(ctx, id)
	if err != nil {
		return nil, s.wrap("unarchiving robot", err)
	}

	s.logger.Info().Str("robot_id", id).Msg("robot unarchived")
	return rec, nil
}

// Get returns the robot or nil when absent.
func (s *Service) Get(ctx context.Context, id string, includeArchived bool) (*Robot, error) {
	rec, err := s.repo.Get(ctx, id, includeArchived)
	if err != nil {
		return nil, s.wrap("getting robot", err)
	}
	return rec, nil
}

// List returns robots matching opts.
func (s *Service) List(ctx context.Context, opts ListOptions) (recs []Robot, err error) {
	defer s.observe("list", time.Now(), &err)

	recs, err = s.repo.List(ctx, opts.Normalized())
	if err != nil {
		return nil, s.wrap("listing robots", err)
	}
	return recs, nil
}

// Count returns the number of robots.
func (s *Service) Count(ctx context.Context, includeArchived bool) (int, error) {
	n, err := s.repo.Count(ctx, includeArchived)
	if err != nil {
		return 0, s.wrap("counting robots", err)
	}
	return n, nil
}

// IsNameUnique reports whether name is free among active robots.
func (s *Service) IsNameUnique(ctx context.Context, name, excludeID string) (bool, error) {
	unique, err := s.repo.IsNameUnique(ctx, strings.TrimSpace(name), excludeID)
	if err != nil {
		return false, s.wrap("checking name", err)
	}
	return unique, nil
}

// Export returns every active robot, or every robot when includeArchived.
func (s *Service) Export(ctx context.Context, includeArchived bool) ([]Robot, error) {
	recs, err := s.repo.Export(ctx, includeArchived)
	if err != nil {
		return nil, s.wrap("exporting robots", err)
	}
	if recs == nil {
		recs = []Robot{}
	}
	return recs, nil
}

// ExportJSON encodes the export as an indented JSON array.
func (s *Service) ExportJSON(ctx context.Context, includeArchived bool) ([]byte, error) {
	recs, err := s.Export(ctx, includeArchived)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding export: %w", err)
	}
	return data, nil
}

// ExportResult describes a written export file.
type ExportResult struct {
	URL   string `json:"url"`
	Count int    `json:"count"`
	Bytes int    `json:"bytes"`
}

// ExportToFile writes robots_export_<millis>.json under dir.
func (s *Service) ExportToFile(ctx context.Context, dir string, includeArchived bool) (res *ExportResult, err error) {
	defer s.observe("export", time.Now(), &err)

	recs, err := s.Export(ctx, includeArchived)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrNothingToExport
	}

	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding export: %w", err)
	}

	name := fmt.Sprintf("robots_export_%d.json", s.now().UnixMilli())
	dest := url.Join(dir, name)
	if err := s.fs.Upload(ctx, dest, 0o644, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("writing export %s: %w", dest, err)
	}

	s.logger.Info().Str("url", dest).Int("count", len(recs)).Msg("robots exported")
	return &ExportResult{URL: dest, Count: len(recs), Bytes: len(data)}, nil
}

// wrap keeps categorized errors intact and annotates the rest.
func (s *Service) wrap(action string, err error) error {
	if Kind(err) != KindInternal {
		return err
	}
	s.logger.Error().Err(err).Str("action", action).Msg("robot store failure")
	return fmt.Errorf("%s: %w", action, err)
}

func (s *Service) observe(op string, start time.Time, errp *error) {
	if s.recorder == nil {
		return
	}
	var err error
	if errp != nil {
		err = *errp
	}
	s.recorder.ObserveOperation(storeLabel, op, Outcome(err), time.Since(start))
}

