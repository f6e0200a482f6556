package authz

// Effect is the policy decision point's verdict for one (instance, action)
// pair.
type Effect string

// Effects returned by the policy decision point.
const (
	EffectAllow Effect = "EFFECT_ALLOW"
	EffectDeny  Effect = "EFFECT_DENY"
)

// Decision is the verdict set returned by one check call. It covers every
// instance submitted in the request; lookups for anything else are denied.
type Decision struct {
	// verdicts maps instance id -> action -> allowed.
	verdicts map[string]map[string]bool
}

// NewDecision builds a decision from an explicit verdict map (instance id ->
// action -> allowed). Used by Gateway fakes; production decisions come from
// the policy decision point.
func NewDecision(verdicts map[string]map[string]bool) *Decision {
	return &Decision{verdicts: verdicts}
}

// IsAuthorized reports whether the given action was granted on the given
// instance. Absent verdicts are treated identically to denied ones.
func (d *Decision) IsAuthorized(instanceID, action string) bool {
	if d == nil {
		return false
	}
	actions, ok := d.verdicts[instanceID]
	if !ok {
		return false
	}
	return actions[action]
}

// InstanceIDs returns the instance ids the decision holds verdicts for.
func (d *Decision) InstanceIDs() []string {
	if d == nil {
		return nil
	}
	ids := make([]string, 0, len(d.verdicts))
	for id := range d.verdicts {
		ids = append(ids, id)
	}
	return ids
}
