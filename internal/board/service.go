package board

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/javiermolinar/shcadule/internal/store"
	"github.com/javiermolinar/shcadule/internal/weekid"
)

// Defaults for NewService.
const (
	DefaultWeeksAhead      = 8
	DefaultGenerateTimeout = 30 * time.Second
	DefaultQueueSize       = 16
	DefaultWorkers         = 2
)

// Service loads boards and propagates templates between weeks. It is safe for
// concurrent use. Close must be called to stop its background generator.
type Service struct {
	store      store.Store
	logger     *zap.Logger
	now        func() time.Time
	newID      func() string
	weeksAhead int

	generator *Generator
}

// Option configures a Service.
type Option func(*Service, *generatorConfig)

type generatorConfig struct {
	timeout   time.Duration
	queueSize int
	workers   int
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service, _ *generatorConfig) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service, _ *generatorConfig) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides the UUID generator used for slot and activity IDs.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service, _ *generatorConfig) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// WithWeeksAhead sets how many weeks are generated when a board gets its first slot.
func WithWeeksAhead(n int) Option {
	return func(s *Service, _ *generatorConfig) {
		if n > 0 {
			s.weeksAhead = n
		}
	}
}

// WithGenerateTimeout bounds each background generation job.
func WithGenerateTimeout(d time.Duration) Option {
	return func(_ *Service, g *generatorConfig) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithGeneratorQueue sets the generator queue size and worker count.
func WithGeneratorQueue(size, workers int) Option {
	return func(_ *Service, g *generatorConfig) {
		if size > 0 {
			g.queueSize = size
		}
		if workers > 0 {
			g.workers = workers
		}
	}
}

// NewService returns a Service backed by st and starts its generator.
func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:      st,
		logger:     zap.NewNop(),
		now:        time.Now,
		newID:      uuid.NewString,
		weeksAhead: DefaultWeeksAhead,
	}
	gc := generatorConfig{
		timeout:   DefaultGenerateTimeout,
		queueSize: DefaultQueueSize,
		workers:   DefaultWorkers,
	}
	for _, opt := range opts {
		opt(s, &gc)
	}

	s.generator = newGenerator(s.runJob, s.logger.Named("generator"), gc)
	return s
}

// Generator returns the background generator used by AddTimeSlot.
func (s *Service) Generator() *Generator {
	return s.generator
}

// Close stops the generator after queued jobs finish.
func (s *Service) Close() {
	s.generator.Close()
}

// Load returns an editor for the board at (userID, weekID). A missing board
// is created empty and persisted before Load returns.
func (s *Service) Load(ctx context.Context, userID string, weekID weekid.ID) (*Editor, error) {
	if err := validateKey(userID, weekID); err != nil {
		return nil, err
	}

	b, raw, err := s.getBoard(ctx, userID, weekID)
	if errors.Is(err, store.ErrNotFound) {
		b = newBoard(weekID, s.now())
		raw, err = s.putBoard(ctx, userID, b, nil)
	}
	if err != nil {
		return nil, err
	}

	return &Editor{svc: s, userID: userID, weekID: weekID, board: b, raw: raw}, nil
}

// Get returns the stored board without creating it. Missing boards return ErrBoardNotFound.
func (s *Service) Get(ctx context.Context, userID string, weekID weekid.ID) (Board, error) {
	if err := validateKey(userID, weekID); err != nil {
		return Board{}, err
	}
	b, _, err := s.getBoard(ctx, userID, weekID)
	if errors.Is(err, store.ErrNotFound) {
		return Board{}, fmt.Errorf("%w: %s", ErrBoardNotFound, weekID)
	}
	return b, err
}

// List returns the IDs of every stored board for userID, ordered by ID.
func (s *Service) List(ctx context.Context, userID string) ([]weekid.ID, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrMissingUser
	}
	docs, err := s.store.List(ctx, store.Join("users", userID, "weeklyBoard"))
	if err != nil {
		return nil, fmt.Errorf("listing boards: %w", err)
	}
	ids := make([]weekid.ID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, weekid.ID(d.Path.ID()))
	}
	return ids, nil
}

func validateKey(userID string, weekID weekid.ID) error {
	if strings.TrimSpace(userID) == "" {
		return ErrMissingUser
	}
	if strings.TrimSpace(string(weekID)) == "" {
		return ErrMissingWeek
	}
	if _, err := weekid.Parse(weekID); err != nil {
		return err
	}
	return nil
}

// getBoard reads and decodes a board, returning the raw document alongside it.
func (s *Service) getBoard(ctx context.Context, userID string, weekID weekid.ID) (Board, []byte, error) {
	path := store.BoardPath(userID, string(weekID))
	raw, err := s.store.Get(ctx, path)
	if errors.Is(err, store.ErrNotFound) {
		return Board{}, nil, err
	}
	if err != nil {
		s.logger.Error("loading board failed",
			zap.String("user", userID), zap.Stringer("week", weekID), zap.Error(err))
		return Board{}, nil, fmt.Errorf("loading board %s: %w", weekID, err)
	}

	var b Board
	if err := json.Unmarshal(raw, &b); err != nil {
		return Board{}, nil, fmt.Errorf("decoding board %s: %w", weekID, err)
	}
	b.normalize()
	return b, raw, nil
}

// putBoard merges b's fields into base and writes the result. Fields of base
// that Board does not model are carried over untouched. A nil base writes b alone.
func (s *Service) putBoard(ctx context.Context, userID string, b Board, base []byte) ([]byte, error) {
	doc, err := encodeBoard(b, base)
	if err != nil {
		return nil, fmt.Errorf("encoding board %s: %w", b.WeekID, err)
	}

	path := store.BoardPath(userID, string(b.WeekID))
	if err := s.store.Set(ctx, path, doc); err != nil {
		s.logger.Error("saving board failed",
			zap.String("user", userID), zap.Stringer("week", b.WeekID), zap.Error(err))
		return nil, fmt.Errorf("saving board %s: %w", b.WeekID, err)
	}
	return doc, nil
}

func encodeBoard(b Board, base []byte) ([]byte, error) {
	b.normalize()
	if base == nil {
		return json.Marshal(b)
	}

	fields := map[string]any{
		"weekId":     b.WeekID,
		"timeSlots":  b.TimeSlots,
		"activities": b.Activities,
		"createdAt":  b.CreatedAt,
		"updatedAt":  b.UpdatedAt,
	}
	if b.AutoGenerated {
		fields["autoGenerated"] = true
	}
	if b.TemplateWeekID != "" {
		fields["templateWeekId"] = b.TemplateWeekID
	}
	return store.Merge(base, fields)
}
