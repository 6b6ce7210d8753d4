package model

// Unlimited marks a quota without an upper bound.
const Unlimited = -1

type PlanLimits struct {
	Workspaces   int `json:"workspaces"`
	Tables       int `json:"tables"`
	RowsPerTable int `json:"rowsPerTable"`
}

// Allows reports whether current+adding stays within limit.
func Allows(limit int, current int64, adding int) bool {
	if limit < 0 {
		return true
	}
	return current+int64(adding) <= int64(limit)
}

// PriceMap maps provider price ids to plans.
type PriceMap map[string]Plan

// PlanFor returns the plan for a price id. Unknown prices map to free so a
// stray or discontinued price never unlocks paid quotas.
func (m PriceMap) PlanFor(priceID string) Plan {
	if priceID == "" {
		return PlanFree
	}
	if p, ok := m[priceID]; ok {
		return p
	}
	return PlanFree
}
