package webhook

import (
	"errors"
	"strconv"
	"strings"

	"github.com/AutoGestorHQ/AutoGestor/app/models"
	"github.com/AutoGestorHQ/AutoGestor/app/repository"
	"gorm.io/gorm"
)

// PlanResolver resolves external plan tokens against the plan catalog.
type PlanResolver struct {
	plans repository.PlanRepository
}

// NewPlanResolver creates a plan resolver from an injected repository.
func NewPlanResolver(plans repository.PlanRepository) *PlanResolver {
	return &PlanResolver{plans: plans}
}

// ResolveBase resolves an identifier-or-name token to a live plan: exact
// ID match first, then exact display-name match. Unknown tokens resolve
// to nil without error.
func (r *PlanResolver) ResolveBase(token string) (*models.Plan, error) {
	t := strings.TrimSpace(token)
	if t == "" {
		return nil, nil
	}

	if id, err := strconv.ParseUint(t, 10, 64); err == nil {
		plan, err := r.plans.GetByID(uint(id))
		if err == nil {
			return plan, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	plan, err := r.plans.GetByName(t)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return plan, nil
}

// ResolveByOffer refines the base plan to the variant whose duration
// matches the parsed recurrence times quantity (e.g. "Pro" + mensal x 3
// resolves the quarterly "Pro" plan). It falls back to the base plan when
// no offer was supplied or no sibling variant exists.
func (r *PlanResolver) ResolveByOffer(token, offerRaw, quantityRaw string) (*models.Plan, error) {
	base, err := r.ResolveBase(token)
	if err != nil || base == nil {
		return base, err
	}

	rec := ParseOffer(offerRaw)
	if qty := ParseQuantity(quantityRaw); qty > 1 {
		rec.Multiplier *= qty
	}
	months := DurationMonths(rec)
	if months == 0 || months == base.DurationMonths {
		return base, nil
	}

	variant, err := r.plans.GetByNameAndDuration(base.Name, months)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return base, nil
		}
		return nil, err
	}
	return variant, nil
}

// ParseQuantity parses a mapped quantity value. Absent or unparsable
// input defaults to 1; explicit zero or negative values pass through so
// the due-date clamp can treat them as "no due date".
func ParseQuantity(raw string) int {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 1
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 1
}
