// Package tier maps a vendor's subscription plan to its visual tier,
// badge eligibility, and marker stacking priority.
package tier

import (
	domain "github.com/feiramap/feiramap/pkg/types"
)

// Stack priorities per plan, ascending. Higher wins visual stacking.
const (
	PriorityFree       = 100
	PriorityBasic      = 200
	PriorityPremium    = 300
	PriorityPremiumMax = 400
)

// Classification is the derived visual contract for one vendor.
type Classification struct {
	Tier          domain.PlanTier `json:"tier"`
	HasBadge      bool            `json:"has_badge"`
	HasSpotlight  bool            `json:"has_spotlight"`
	StackPriority int             `json:"stack_priority"`
}

// Classify derives the visual classification for a vendor. It is
// recomputed on every read so plan changes are never served stale, and
// it never fails: unknown or missing plans classify as free.
func Classify(v *domain.Vendor) Classification {
	switch v.Plan {
	case domain.PlanBasic:
		return Classification{
			Tier:          domain.PlanBasic,
			HasBadge:      true,
			StackPriority: PriorityBasic,
		}
	case domain.PlanPremium:
		return Classification{
			Tier:          domain.PlanPremium,
			HasBadge:      true,
			HasSpotlight:  true,
			StackPriority: PriorityPremium,
		}
	case domain.PlanPremiumMax:
		return Classification{
			Tier:          domain.PlanPremiumMax,
			HasBadge:      true,
			HasSpotlight:  true,
			StackPriority: PriorityPremiumMax,
		}
	default:
		return Classification{
			Tier:          domain.PlanFree,
			StackPriority: PriorityFree,
		}
	}
}
