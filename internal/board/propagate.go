package board

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/javiermolinar/shcadule/internal/store"
	"github.com/javiermolinar/shcadule/internal/weekid"
)

// GenerateResult reports what AutoGenerateFutureWeeks wrote.
type GenerateResult struct {
	// Generated lists the weeks written, in order.
	Generated []weekid.ID
	// NoSlots is set when the template had no slots and nothing was attempted.
	NoSlots bool
}

// CopyWeek writes dst with src's time slots and no activities, replacing any
// existing dst board.
func (s *Service) CopyWeek(ctx context.Context, userID string, src, dst weekid.ID) error {
	if err := validateKey(userID, src); err != nil {
		return err
	}
	if err := validateKey(userID, dst); err != nil {
		return err
	}

	source, err := s.template(ctx, userID, src)
	if err != nil {
		return err
	}

	b := newBoard(dst, s.now())
	b.TimeSlots = slices.Clone(source.TimeSlots)
	if _, err := s.putBoard(ctx, userID, b, nil); err != nil {
		return err
	}

	s.logger.Info("week copied",
		zap.String("user", userID), zap.Stringer("from", src), zap.Stringer("to", dst),
		zap.Int("slots", len(b.TimeSlots)))
	return nil
}

// CopyToNextWeek copies src's slots into the following week and returns that week's ID.
func (s *Service) CopyToNextWeek(ctx context.Context, userID string, src weekid.ID) (weekid.ID, error) {
	if err := validateKey(userID, src); err != nil {
		return "", err
	}
	next, err := weekid.Next(src)
	if err != nil {
		return "", err
	}
	if err := s.CopyWeek(ctx, userID, src, next); err != nil {
		return "", err
	}
	return next, nil
}

// AutoGenerateFutureWeeks copies template's slots into each of the next
// weeksAhead weeks that has no slots yet. Weeks that already have slots are
// left alone, so repeated calls are idempotent. weeksAhead <= 0 uses the
// service default.
func (s *Service) AutoGenerateFutureWeeks(ctx context.Context, userID string, template weekid.ID, weeksAhead int) (GenerateResult, error) {
	if err := validateKey(userID, template); err != nil {
		return GenerateResult{}, err
	}
	if weeksAhead <= 0 {
		weeksAhead = s.weeksAhead
	}

	tmpl, err := s.template(ctx, userID, template)
	if err != nil {
		return GenerateResult{}, err
	}
	if len(tmpl.TimeSlots) == 0 {
		return GenerateResult{NoSlots: true}, nil
	}

	var result GenerateResult
	for i := 1; i <= weeksAhead; i++ {
		target, err := weekid.Advance(template, i)
		if err != nil {
			return result, err
		}

		existing, _, err := s.getBoard(ctx, userID, target)
		switch {
		case errors.Is(err, store.ErrNotFound):
		case err != nil:
			return result, err
		case len(existing.TimeSlots) > 0:
			continue
		}

		b := newBoard(target, s.now())
		b.TimeSlots = slices.Clone(tmpl.TimeSlots)
		b.AutoGenerated = true
		b.TemplateWeekID = template
		if _, err := s.putBoard(ctx, userID, b, nil); err != nil {
			return result, err
		}
		result.Generated = append(result.Generated, target)
	}

	s.logger.Info("future weeks generated",
		zap.String("user", userID), zap.Stringer("template", template),
		zap.Int("generated", len(result.Generated)))
	return result, nil
}

// template reads a source board, mapping absence to ErrBoardNotFound.
func (s *Service) template(ctx context.Context, userID string, id weekid.ID) (Board, error) {
	b, _, err := s.getBoard(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return Board{}, fmt.Errorf("%w: %s", ErrBoardNotFound, id)
	}
	return b, err
}

// String renders a result for logs and the CLI.
func (r GenerateResult) String() string {
	if r.NoSlots {
		return "no time slots to copy"
	}
	if len(r.Generated) == 0 {
		return "no weeks generated"
	}
	ids := make([]string, len(r.Generated))
	for i, id := range r.Generated {
		ids[i] = string(id)
	}
	return fmt.Sprintf("generated %d weeks: %s", len(ids), strings.Join(ids, ", "))
}
