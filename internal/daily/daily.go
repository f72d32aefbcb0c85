// Package daily keeps a short to-do list per user per calendar day.
package daily

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/javiermolinar/shcadule/internal/store"
)

// MaxTasks is the most tasks one day can hold.
const MaxTasks = 20

// DateLayout is the layout of a day's key.
const DateLayout = "2006-01-02"

// Errors.
var (
	ErrMissingUser  = errors.New("missing user id")
	ErrEmptyTitle   = errors.New("task title cannot be empty")
	ErrTooManyTasks = fmt.Errorf("maximum %d tasks per day", MaxTasks)
	ErrTaskNotFound = errors.New("task not found")
)

// Task is one item on a day's list.
type Task struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Note      string    `json:"note"`
	Completed bool      `json:"completed"`
	Timestamp time.Time `json:"timestamp"`
}

// List is the stored document for one day.
type List struct {
	Date      string    `json:"date"`
	Tasks     []Task    `json:"tasks"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// Done returns how many tasks are completed.
func (l List) Done() int {
	n := 0
	for _, t := range l.Tasks {
		if t.Completed {
			n++
		}
	}
	return n
}

// Progress is the completed share of the list in percent, 0 for an empty list.
func (l List) Progress() float64 {
	if len(l.Tasks) == 0 {
		return 0
	}
	return float64(l.Done()) / float64(len(l.Tasks)) * 100
}

// TaskUpdate holds the task fields to change. Nil fields are kept.
type TaskUpdate struct {
	Title     *string
	Note      *string
	Completed *bool
}

// DateKey formats the calendar day of t in t's location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// Service reads and writes daily task lists.
type Service struct {
	store  store.Store
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides the task ID generator.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// NewService returns a Service backed by st.
func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:  st,
		logger: zap.NewNop(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the list for day. A day with no document has an empty list.
func (s *Service) Get(ctx context.Context, userID string, day time.Time) (List, error) {
	l, _, err := s.load(ctx, userID, DateKey(day))
	return l, err
}

// Add appends a task to day's list.
func (s *Service) Add(ctx context.Context, userID string, day time.Time, title, note string) (Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Task{}, ErrEmptyTitle
	}

	task := Task{
		ID:        s.newID(),
		Title:     title,
		Note:      strings.TrimSpace(note),
		Timestamp: s.now(),
	}
	err := s.mutate(ctx, userID, DateKey(day), func(l *List) error {
		if len(l.Tasks) >= MaxTasks {
			return ErrTooManyTasks
		}
		l.Tasks = append(l.Tasks, task)
		return nil
	})
	if err != nil {
		return Task{}, err
	}
	return task, nil
}

// Update changes one task and returns the result.
func (s *Service) Update(ctx context.Context, userID string, day time.Time, taskID string, u TaskUpdate) (Task, error) {
	var title string
	if u.Title != nil {
		title = strings.TrimSpace(*u.Title)
		if title == "" {
			return Task{}, ErrEmptyTitle
		}
	}

	var out Task
	err := s.mutate(ctx, userID, DateKey(day), func(l *List) error {
		i := slices.IndexFunc(l.Tasks, func(t Task) bool { return t.ID == taskID })
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
		}
		t := &l.Tasks[i]
		if u.Title != nil {
			t.Title = title
		}
		if u.Note != nil {
			t.Note = strings.TrimSpace(*u.Note)
		}
		if u.Completed != nil {
			t.Completed = *u.Completed
		}
		out = *t
		return nil
	})
	return out, err
}

// Toggle flips a task's completed flag.
func (s *Service) Toggle(ctx context.Context, userID string, day time.Time, taskID string) (Task, error) {
	l, err := s.Get(ctx, userID, day)
	if err != nil {
		return Task{}, err
	}
	i := slices.IndexFunc(l.Tasks, func(t Task) bool { return t.ID == taskID })
	if i < 0 {
		return Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	done := !l.Tasks[i].Completed
	return s.Update(ctx, userID, day, taskID, TaskUpdate{Completed: &done})
}

// Delete removes a task from day's list.
func (s *Service) Delete(ctx context.Context, userID string, day time.Time, taskID string) error {
	return s.mutate(ctx, userID, DateKey(day), func(l *List) error {
		i := slices.IndexFunc(l.Tasks, func(t Task) bool { return t.ID == taskID })
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
		}
		l.Tasks = slices.Delete(l.Tasks, i, i+1)
		return nil
	})
}

// load returns the list for date and whether a document exists for it.
func (s *Service) load(ctx context.Context, userID, date string) (List, bool, error) {
	if strings.TrimSpace(userID) == "" {
		return List{}, false, ErrMissingUser
	}

	raw, err := s.store.Get(ctx, store.DailyPath(userID, date))
	if errors.Is(err, store.ErrNotFound) {
		return List{Date: date, Tasks: []Task{}}, false, nil
	}
	if err != nil {
		return List{}, false, fmt.Errorf("loading tasks for %s: %w", date, err)
	}

	var l List
	if err := json.Unmarshal(raw, &l); err != nil {
		return List{}, false, fmt.Errorf("decoding tasks for %s: %w", date, err)
	}
	l.Date = date
	if l.Tasks == nil {
		l.Tasks = []Task{}
	}
	return l, true, nil
}

// mutate applies fn to the stored list and writes the task array back. Other
// fields of an existing document are left alone.
func (s *Service) mutate(ctx context.Context, userID, date string, fn func(*List) error) error {
	l, exists, err := s.load(ctx, userID, date)
	if err != nil {
		return err
	}
	if err := fn(&l); err != nil {
		return err
	}
	l.UpdatedAt = s.now()

	path := store.DailyPath(userID, date)
	if exists {
		err = s.store.Update(ctx, path, map[string]any{
			"tasks":     l.Tasks,
			"updatedAt": l.UpdatedAt,
		})
	} else {
		var doc []byte
		doc, err = json.Marshal(l)
		if err != nil {
			return fmt.Errorf("encoding tasks for %s: %w", date, err)
		}
		err = s.store.Set(ctx, path, doc)
	}
	if err != nil {
		s.logger.Error("saving tasks failed", zap.String("user", userID), zap.String("date", date), zap.Error(err))
		return fmt.Errorf("saving tasks for %s: %w", date, err)
	}

	s.logger.Debug("tasks saved", zap.String("user", userID), zap.String("date", date), zap.Int("tasks", len(l.Tasks)))
	return nil
}
