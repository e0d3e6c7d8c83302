package moderation

import "modix/model"

// EffectStatus tells a caller whether the Discord side of an operation
// happened.
type EffectStatus string

const (
	// EffectNotApplicable is reported for notices, warnings and for undo
	// operations that another active infraction keeps in force.
	EffectNotApplicable EffectStatus = "not_applicable"
	EffectApplied       EffectStatus = "applied"
	// EffectPending means the change is recorded but Discord has not caught
	// up yet. Reconcile retries it.
	EffectPending EffectStatus = "pending"
)

// Result is returned by operations that may touch Discord.
type Result struct {
	Infraction model.Infraction
	Effect     EffectStatus
	// EffectErr says why Effect is EffectPending, usually a *model.GatewayError.
	EffectErr error
}

// Pending reports whether the Discord effect still has to be applied.
func (r Result) Pending() bool {
	return r.Effect == EffectPending
}
