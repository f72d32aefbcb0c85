// Package subscription manages plan upgrades on the user profile record:
// upgrade requests, manual approval, and expiry of lapsed plans.
package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/javiermolinar/shcadule/internal/store"
)

// Errors.
var (
	ErrMissingUser      = errors.New("missing user id")
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidPlan      = errors.New("plan must be 'ai' or 'pro'")
	ErrMissingReference = errors.New("payment reference cannot be empty")
	ErrInvalidStatus    = errors.New("account status must be 'active' or 'denied'")
)

// DefaultApprovalPeriod is how long an approved plan stays active.
const DefaultApprovalPeriod = 30 * 24 * time.Hour

// Plan is a subscription tier.
type Plan string

const (
	PlanFree Plan = "free"
	PlanAI   Plan = "ai"
	PlanPro  Plan = "pro"
)

// ParsePlan accepts the paid plans only.
func ParsePlan(s string) (Plan, error) {
	switch p := Plan(strings.ToLower(strings.TrimSpace(s))); p {
	case PlanAI, PlanPro:
		return p, nil
	default:
		return "", fmt.Errorf("%w, got %q", ErrInvalidPlan, s)
	}
}

// Status is the state of a subscription.
type Status string

const (
	StatusNone    Status = "none"
	StatusActive  Status = "active"
	StatusPending Status = "pending"
	StatusExpired Status = "expired"
)

// AccountStatus is set by administrators to block an account.
type AccountStatus string

const (
	AccountActive AccountStatus = "active"
	AccountDenied AccountStatus = "denied"
)

// Profile is the canonical per-user record stored under the "profile" key of
// users/{userID}.
type Profile struct {
	UserID             string        `json:"-"`
	Name               string        `json:"name,omitempty"`
	Email              string        `json:"email,omitempty"`
	TimeFormat         string        `json:"timeFormat,omitempty"`
	CalendarPreference string        `json:"calendarPreference,omitempty"`
	Status             AccountStatus `json:"status,omitempty"`
	Plan               Plan          `json:"plan"`
	SubscriptionStatus Status        `json:"subscriptionStatus,omitempty"`
	PendingPlan        Plan          `json:"pendingPlan,omitempty"`
	LastPaymentRef     string        `json:"lastPaymentRef,omitempty"`
	ExpiryDate         *time.Time    `json:"expiryDate,omitempty"`
	CreatedAt          time.Time     `json:"createdAt"`
}

// Service reads and updates subscription state.
type Service struct {
	store  store.Store
	logger *zap.Logger
	now    func() time.Time
	period time.Duration
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

// WithApprovalPeriod sets how long an approved plan lasts.
func WithApprovalPeriod(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.period = d
		}
	}
}

// NewService returns a Service backed by st.
func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:  st,
		logger: zap.NewNop(),
		now:    time.Now,
		period: DefaultApprovalPeriod,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a free profile for userID if none exists and returns the
// stored profile either way.
func (s *Service) Register(ctx context.Context, userID, name, email string) (Profile, error) {
	p, err := s.Get(ctx, userID)
	if err == nil || !errors.Is(err, ErrUserNotFound) {
		return p, err
	}

	p = Profile{
		UserID:             userID,
		Name:               name,
		Email:              email,
		TimeFormat:         "24",
		CalendarPreference: "gregorian",
		Status:             AccountActive,
		Plan:               PlanFree,
		SubscriptionStatus: StatusNone,
		CreatedAt:          s.now(),
	}
	if p.Name == "" {
		p.Name, _, _ = strings.Cut(email, "@")
	}

	doc, err := json.Marshal(map[string]Profile{"profile": p})
	if err != nil {
		return Profile{}, fmt.Errorf("encoding profile: %w", err)
	}
	if err := s.store.Set(ctx, store.UserPath(userID), doc); err != nil {
		return Profile{}, fmt.Errorf("saving profile %s: %w", userID, err)
	}

	s.logger.Info("profile created", zap.String("user", userID))
	return p, nil
}

// Get returns the profile of userID. Records written before profile and
// settings were merged are read from "settings" when "profile" is absent.
func (s *Service) Get(ctx context.Context, userID string) (Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return Profile{}, ErrMissingUser
	}

	raw, err := s.store.Get(ctx, store.UserPath(userID))
	if errors.Is(err, store.ErrNotFound) {
		return Profile{}, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	if err != nil {
		return Profile{}, fmt.Errorf("loading profile %s: %w", userID, err)
	}
	return decodeProfile(userID, raw)
}

// RequestUpgrade records a pending upgrade to plan, paid with reference.
func (s *Service) RequestUpgrade(ctx context.Context, userID string, plan Plan, reference string) error {
	if _, err := ParsePlan(string(plan)); err != nil {
		return err
	}
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return ErrMissingReference
	}
	if _, err := s.Get(ctx, userID); err != nil {
		return err
	}

	err := s.update(ctx, userID, map[string]any{
		"profile.pendingPlan":        plan,
		"profile.lastPaymentRef":     reference,
		"profile.subscriptionStatus": StatusPending,
	})
	if err != nil {
		return err
	}

	s.logger.Info("upgrade requested",
		zap.String("user", userID), zap.String("plan", string(plan)), zap.String("reference", reference))
	return nil
}

// Decide approves or denies a pending upgrade. Approval activates the pending
// plan (free if none was requested) until now plus the approval period.
func (s *Service) Decide(ctx context.Context, userID string, approve bool) error {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}

	var fields map[string]any
	if approve {
		plan := p.PendingPlan
		if plan == "" {
			plan = PlanFree
		}
		fields = map[string]any{
			"profile.plan":               plan,
			"profile.subscriptionStatus": StatusActive,
			"profile.expiryDate":         s.now().Add(s.period).UTC(),
			"profile.pendingPlan":        nil,
		}
	} else {
		fields = map[string]any{
			"profile.subscriptionStatus": StatusExpired,
			"profile.pendingPlan":        nil,
		}
	}

	if err := s.update(ctx, userID, fields); err != nil {
		return err
	}

	s.logger.Info("subscription decided", zap.String("user", userID), zap.Bool("approved", approve))
	return nil
}

// SetAccountStatus blocks or unblocks a user.
func (s *Service) SetAccountStatus(ctx context.Context, userID string, status AccountStatus) error {
	if status != AccountActive && status != AccountDenied {
		return fmt.Errorf("%w, got %q", ErrInvalidStatus, status)
	}
	if _, err := s.Get(ctx, userID); err != nil {
		return err
	}
	return s.update(ctx, userID, map[string]any{"profile.status": status})
}

// Pending returns the profiles awaiting a decision.
func (s *Service) Pending(ctx context.Context) ([]Profile, error) {
	return s.list(ctx, StatusPending)
}

// Sweep downgrades every active subscription whose expiry date has passed and
// returns how many were downgraded.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	docs, err := s.store.List(ctx, "users", store.Where("profile.subscriptionStatus", string(StatusActive)))
	if err != nil {
		return 0, fmt.Errorf("listing active subscriptions: %w", err)
	}

	now := s.now()
	expired := 0
	for _, d := range docs {
		userID := d.Path.ID()
		expiry, ok := parseExpiry(d.Data)
		if !ok || !expiry.Before(now) {
			continue
		}

		err := s.update(ctx, userID, map[string]any{
			"profile.plan":               PlanFree,
			"profile.subscriptionStatus": StatusExpired,
		})
		if err != nil {
			return expired, err
		}
		expired++
		s.logger.Debug("subscription expired", zap.String("user", userID), zap.Time("expiry", expiry))
	}

	return expired, nil
}

func (s *Service) list(ctx context.Context, status Status) ([]Profile, error) {
	docs, err := s.store.List(ctx, "users", store.Where("profile.subscriptionStatus", string(status)))
	if err != nil {
		return nil, fmt.Errorf("listing %s subscriptions: %w", status, err)
	}

	profiles := make([]Profile, 0, len(docs))
	for _, d := range docs {
		p, err := decodeProfile(d.Path.ID(), d.Data)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// update writes dotted profile fields. A record that still only has the legacy
// "settings" section gets it copied under "profile" in the same write.
func (s *Service) update(ctx context.Context, userID string, fields map[string]any) error {
	raw, err := s.store.Get(ctx, store.UserPath(userID))
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	if err != nil {
		return fmt.Errorf("loading profile %s: %w", userID, err)
	}
	if settings := gjson.GetBytes(raw, "settings"); settings.IsObject() && !gjson.GetBytes(raw, "profile").IsObject() {
		settings.ForEach(func(key, value gjson.Result) bool {
			field := "profile." + key.String()
			if _, ok := fields[field]; !ok {
				fields[field] = value.Value()
			}
			return true
		})
		s.logger.Info("profile migrated from settings", zap.String("user", userID))
	}

	if err := s.store.Update(ctx, store.UserPath(userID), fields); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrUserNotFound, userID)
		}
		s.logger.Error("updating profile failed", zap.String("user", userID), zap.Error(err))
		return fmt.Errorf("updating profile %s: %w", userID, err)
	}
	return nil
}

// decodeProfile reads "settings" first and lays "profile" over it, so fields
// missing from a partly written profile keep their legacy values.
func decodeProfile(userID string, raw []byte) (Profile, error) {
	var p Profile
	for _, name := range []string{"settings", "profile"} {
		section := gjson.GetBytes(raw, name)
		if !section.IsObject() {
			continue
		}
		if err := json.Unmarshal([]byte(section.Raw), &p); err != nil {
			return Profile{}, fmt.Errorf("decoding profile %s: %w", userID, err)
		}
	}
	p.UserID = userID
	if p.Plan == "" {
		p.Plan = PlanFree
	}
	if p.SubscriptionStatus == "" {
		p.SubscriptionStatus = StatusNone
	}
	return p, nil
}

func parseExpiry(raw []byte) (time.Time, bool) {
	v := gjson.GetBytes(raw, "profile.expiryDate")
	if v.Type != gjson.String {
		v = gjson.GetBytes(raw, "settings.expiryDate")
	}
	if v.Type != gjson.String {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, v.Str)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
