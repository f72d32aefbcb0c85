// Package goals tracks longer-range goals with a checklist, grouped by horizon.
package goals

import (
	"cmp"
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

// Errors.
var (
	ErrMissingUser     = errors.New("missing user id")
	ErrEmptyTitle      = errors.New("goal title cannot be empty")
	ErrEmptyItem       = errors.New("checklist item cannot be empty")
	ErrInvalidCategory = errors.New("category must be month, quarter, half or year")
	ErrGoalNotFound    = errors.New("goal not found")
	ErrItemNotFound    = errors.New("checklist item not found")
	ErrNothingToUpdate = errors.New("nothing to update")
)

// Category is the horizon a goal is set for.
type Category string

const (
	Month   Category = "month"
	Quarter Category = "quarter"
	Half    Category = "half"
	Year    Category = "year"
)

// Categories lists the horizons from shortest to longest.
var Categories = []Category{Month, Quarter, Half, Year}

// Label is the heading shown for a category.
func (c Category) Label() string {
	switch c {
	case Month:
		return "Monthly goals"
	case Quarter:
		return "3-month goals"
	case Half:
		return "6-month goals"
	case Year:
		return "Yearly goals"
	}
	return string(c)
}

// ParseCategory returns Month for an empty string.
func ParseCategory(s string) (Category, error) {
	if s == "" {
		return Month, nil
	}
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Categories, c) {
		return "", fmt.Errorf("%w, got %q", ErrInvalidCategory, s)
	}
	return c, nil
}

// ChecklistItem is one step towards a goal.
type ChecklistItem struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

// Goal is stored at users/{userID}/goals/{id}.
type Goal struct {
	ID          string          `json:"-"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Checklist   []ChecklistItem `json:"checklist"`
	Category    Category        `json:"category"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Progress is the completed share of the checklist in percent.
func (g Goal) Progress() float64 {
	if len(g.Checklist) == 0 {
		return 0
	}
	done := 0
	for _, it := range g.Checklist {
		if it.Completed {
			done++
		}
	}
	return float64(done) / float64(len(g.Checklist)) * 100
}

// Update holds the goal fields to change. Nil fields are kept.
type Update struct {
	Title       *string
	Description *string
	Category    *Category
}

// Service reads and writes goals.
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

// WithIDGenerator overrides the goal ID generator.
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

// Add creates a goal with an empty checklist.
func (s *Service) Add(ctx context.Context, userID string, category Category, title, description string) (Goal, error) {
	if strings.TrimSpace(userID) == "" {
		return Goal{}, ErrMissingUser
	}
	category, err := ParseCategory(string(category))
	if err != nil {
		return Goal{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return Goal{}, ErrEmptyTitle
	}

	now := s.now()
	g := Goal{
		ID:          s.newID(),
		Title:       title,
		Description: strings.TrimSpace(description),
		Checklist:   []ChecklistItem{},
		Category:    category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	doc, err := json.Marshal(g)
	if err != nil {
		return Goal{}, fmt.Errorf("encoding goal: %w", err)
	}
	if err := s.store.Set(ctx, goalPath(userID, g.ID), doc); err != nil {
		return Goal{}, fmt.Errorf("saving goal %s: %w", g.ID, err)
	}

	s.logger.Info("goal added", zap.String("user", userID), zap.String("goal", g.ID), zap.String("category", string(category)))
	return g, nil
}

// List returns the user's goals in category, oldest first.
func (s *Service) List(ctx context.Context, userID string, category Category) ([]Goal, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrMissingUser
	}
	docs, err := s.store.List(ctx, store.GoalsPath(userID), store.Where("category", string(category)))
	if err != nil {
		return nil, fmt.Errorf("listing goals: %w", err)
	}

	goals := make([]Goal, 0, len(docs))
	for _, d := range docs {
		g, err := decodeGoal(d.Path.ID(), d.Data)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	slices.SortStableFunc(goals, func(a, b Goal) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return goals, nil
}

// Get returns one goal.
func (s *Service) Get(ctx context.Context, userID, goalID string) (Goal, error) {
	if strings.TrimSpace(userID) == "" {
		return Goal{}, ErrMissingUser
	}
	raw, err := s.store.Get(ctx, goalPath(userID, goalID))
	if errors.Is(err, store.ErrNotFound) {
		return Goal{}, fmt.Errorf("%w: %s", ErrGoalNotFound, goalID)
	}
	if err != nil {
		return Goal{}, fmt.Errorf("loading goal %s: %w", goalID, err)
	}
	return decodeGoal(goalID, raw)
}

// Update changes a goal's title, description or category.
func (s *Service) Update(ctx context.Context, userID, goalID string, u Update) error {
	fields := map[string]any{}
	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		if title == "" {
			return ErrEmptyTitle
		}
		fields["title"] = title
	}
	if u.Description != nil {
		fields["description"] = strings.TrimSpace(*u.Description)
	}
	if u.Category != nil {
		c, err := ParseCategory(string(*u.Category))
		if err != nil {
			return err
		}
		fields["category"] = c
	}
	if len(fields) == 0 {
		return ErrNothingToUpdate
	}
	return s.update(ctx, userID, goalID, fields)
}

// AddItem appends an unchecked item to a goal's checklist.
func (s *Service) AddItem(ctx context.Context, userID, goalID, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyItem
	}
	g, err := s.Get(ctx, userID, goalID)
	if err != nil {
		return err
	}
	items := append(g.Checklist, ChecklistItem{Text: text})
	return s.update(ctx, userID, goalID, map[string]any{"checklist": items})
}

// ToggleItem flips the checklist item at index (0-based).
func (s *Service) ToggleItem(ctx context.Context, userID, goalID string, index int) (ChecklistItem, error) {
	g, err := s.Get(ctx, userID, goalID)
	if err != nil {
		return ChecklistItem{}, err
	}
	if index < 0 || index >= len(g.Checklist) {
		return ChecklistItem{}, fmt.Errorf("%w: #%d", ErrItemNotFound, index+1)
	}
	g.Checklist[index].Completed = !g.Checklist[index].Completed
	if err := s.update(ctx, userID, goalID, map[string]any{"checklist": g.Checklist}); err != nil {
		return ChecklistItem{}, err
	}
	return g.Checklist[index], nil
}

// Delete removes a goal.
func (s *Service) Delete(ctx context.Context, userID, goalID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrMissingUser
	}
	err := s.store.Delete(ctx, goalPath(userID, goalID))
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrGoalNotFound, goalID)
	}
	if err != nil {
		return fmt.Errorf("deleting goal %s: %w", goalID, err)
	}
	s.logger.Info("goal deleted", zap.String("user", userID), zap.String("goal", goalID))
	return nil
}

// All returns every goal of the user grouped by category.
func (s *Service) All(ctx context.Context, userID string) (map[Category][]Goal, error) {
	out := make(map[Category][]Goal, len(Categories))
	for _, c := range Categories {
		list, err := s.List(ctx, userID, c)
		if err != nil {
			return nil, err
		}
		out[c] = list
	}
	return out, nil
}

func (s *Service) update(ctx context.Context, userID, goalID string, fields map[string]any) error {
	if strings.TrimSpace(userID) == "" {
		return ErrMissingUser
	}
	fields["updatedAt"] = s.now()

	err := s.store.Update(ctx, goalPath(userID, goalID), fields)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrGoalNotFound, goalID)
	}
	if err != nil {
		s.logger.Error("updating goal failed", zap.String("user", userID), zap.String("goal", goalID), zap.Error(err))
		return fmt.Errorf("updating goal %s: %w", goalID, err)
	}
	return nil
}

func goalPath(userID, goalID string) store.Path {
	return store.Join(string(store.GoalsPath(userID)), goalID)
}

func decodeGoal(id string, raw []byte) (Goal, error) {
	var g Goal
	if err := json.Unmarshal(raw, &g); err != nil {
		return Goal{}, fmt.Errorf("decoding goal %s: %w", id, err)
	}
	g.ID = id
	if g.Checklist == nil {
		g.Checklist = []ChecklistItem{}
	}
	g.Category = cmp.Or(g.Category, Month)
	return g, nil
}
