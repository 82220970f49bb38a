package config

import (
	"hash/fnv"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FeatureFlags manages feature toggles for the audit engine.
// Supports gradual rollout keyed by a subject (the plan code) and
// per-subject overrides.
type FeatureFlags struct {
	mu sync.RWMutex

	features map[string]*Feature

	// Override rules (for testing/debugging)
	subjectOverrides map[string]map[string]bool // subject -> feature -> enabled
}

// Feature represents a single feature flag.
type Feature struct {
	Name        string
	Description string
	Enabled     bool

	// Rollout percentage (0-100)
	// Subjects are assigned based on a hash of their key
	RolloutPercent int

	// Time-based activation
	EnabledFrom  *time.Time
	EnabledUntil *time.Time
}

// FeatureContext provides context for feature flag evaluation.
type FeatureContext struct {
	Subject string // plan code
	IsAdmin bool
}

// Predefined feature flag names.
const (
	// Grouped requirements need every group satisfied, not just the credit total.
	FeatureAuditGroupedStrict = "audit.grouped_strict"

	// Pick a requirement group automatically when a course is added to a plan.
	FeaturePlanAutoAssignGroups = "plan.auto_assign_groups"
)

// LoadFeatureFlags loads feature flags from environment variables.
func LoadFeatureFlags() *FeatureFlags {
	ff := &FeatureFlags{
		features:         make(map[string]*Feature),
		subjectOverrides: make(map[string]map[string]bool),
	}

	ff.initializeDefaults()
	ff.loadFromEnvironment()

	return ff
}

func (ff *FeatureFlags) initializeDefaults() {
	ff.features[FeatureAuditGroupedStrict] = &Feature{
		Name:           FeatureAuditGroupedStrict,
		Description:    "Require every requirement group to be satisfied",
		Enabled:        true,
		RolloutPercent: 100,
	}

	ff.features[FeaturePlanAutoAssignGroups] = &Feature{
		Name:           FeaturePlanAutoAssignGroups,
		Description:    "Auto-assign requirement groups on course add",
		Enabled:        true,
		RolloutPercent: 100,
	}
}

// loadFromEnvironment loads feature flag overrides from env vars.
// Format: FEATURE_<NAME>=true|false|<percent>
// Example: FEATURE_AUDIT_GROUPED_STRICT=false
// Example: FEATURE_PLAN_AUTO_ASSIGN_GROUPS=25 (25% rollout)
func (ff *FeatureFlags) loadFromEnvironment() {
	for name, feature := range ff.features {
		val := os.Getenv(featureNameToEnvKey(name))
		if val == "" {
			continue
		}

		if b, err := strconv.ParseBool(val); err == nil {
			feature.Enabled = b
			if b {
				feature.RolloutPercent = 100
			} else {
				feature.RolloutPercent = 0
			}
			continue
		}

		if p, err := strconv.Atoi(val); err == nil && p >= 0 && p <= 100 {
			feature.Enabled = p > 0
			feature.RolloutPercent = p
		}
	}
}

// featureNameToEnvKey converts feature name to environment variable key.
// "audit.grouped_strict" -> "FEATURE_AUDIT_GROUPED_STRICT"
func featureNameToEnvKey(name string) string {
	key := strings.ToUpper(name)
	key = strings.ReplaceAll(key, ".", "_")
	return "FEATURE_" + key
}

// IsEnabled checks if a feature is enabled for the given context.
func (ff *FeatureFlags) IsEnabled(featureName string, ctx *FeatureContext) bool {
	if ff == nil {
		return false
	}
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	if ctx != nil && ctx.Subject != "" {
		if overrides, ok := ff.subjectOverrides[ctx.Subject]; ok {
			if enabled, ok := overrides[featureName]; ok {
				return enabled
			}
		}
	}

	feature, ok := ff.features[featureName]
	if !ok {
		return false
	}

	if ctx != nil && ctx.IsAdmin {
		return true
	}

	if !feature.Enabled {
		return false
	}

	now := time.Now()
	if feature.EnabledFrom != nil && now.Before(*feature.EnabledFrom) {
		return false
	}
	if feature.EnabledUntil != nil && now.After(*feature.EnabledUntil) {
		return false
	}

	if feature.RolloutPercent < 100 && ctx != nil && ctx.Subject != "" {
		return isInRollout(ctx.Subject, featureName, feature.RolloutPercent)
	}

	return feature.RolloutPercent > 0
}

// isInRollout determines if a subject is in the rollout percentage.
// Uses consistent hashing so subjects stay in their bucket.
func isInRollout(subject, featureName string, percent int) bool {
	h := fnv.New32a()
	h.Write([]byte(featureName))
	h.Write([]byte(subject))

	return int(h.Sum32()%100) < percent
}

// SetSubjectOverride forces a feature on or off for one subject.
func (ff *FeatureFlags) SetSubjectOverride(subject, featureName string, enabled bool) {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	if _, ok := ff.subjectOverrides[subject]; !ok {
		ff.subjectOverrides[subject] = make(map[string]bool)
	}
	ff.subjectOverrides[subject][featureName] = enabled
}

// ClearSubjectOverrides removes all overrides for a subject.
func (ff *FeatureFlags) ClearSubjectOverrides(subject string) {
	ff.mu.Lock()
	defer ff.mu.Unlock()
	delete(ff.subjectOverrides, subject)
}

// SetRolloutPercent updates the rollout percentage for a feature.
// Thread-safe for live updates.
func (ff *FeatureFlags) SetRolloutPercent(featureName string, percent int) error {
	ff.mu.Lock()
	defer ff.mu.Unlock()

	feature, ok := ff.features[featureName]
	if !ok {
		return ErrFeatureNotFound
	}

	if percent < 0 || percent > 100 {
		return ErrInvalidRolloutPercent
	}

	feature.RolloutPercent = percent
	feature.Enabled = percent > 0

	return nil
}

// EnableFeature enables a feature at 100% rollout.
func (ff *FeatureFlags) EnableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 100)
}

// DisableFeature disables a feature completely.
func (ff *FeatureFlags) DisableFeature(featureName string) error {
	return ff.SetRolloutPercent(featureName, 0)
}

// GetAllFeatures returns a copy of all feature configurations.
func (ff *FeatureFlags) GetAllFeatures() map[string]*Feature {
	ff.mu.RLock()
	defer ff.mu.RUnlock()

	result := make(map[string]*Feature, len(ff.features))
	for k, v := range ff.features {
		featureCopy := *v
		result[k] = &featureCopy
	}
	return result
}

// --- Convenience methods for common checks ---

// GroupedStrict reports whether strict grouped evaluation applies to a plan.
func (ff *FeatureFlags) GroupedStrict(planCode string) bool {
	return ff.IsEnabled(FeatureAuditGroupedStrict, &FeatureContext{Subject: planCode})
}

// AutoAssignGroups reports whether course adds on a plan auto-assign groups.
func (ff *FeatureFlags) AutoAssignGroups(planCode string) bool {
	return ff.IsEnabled(FeaturePlanAutoAssignGroups, &FeatureContext{Subject: planCode})
}

// --- Errors ---

var (
	ErrFeatureNotFound       = &FeatureFlagError{Message: "feature not found"}
	ErrInvalidRolloutPercent = &FeatureFlagError{Message: "rollout percent must be 0-100"}
)

// FeatureFlagError represents a feature flag error.
type FeatureFlagError struct {
	Message string
}

func (e *FeatureFlagError) Error() string {
	return e.Message
}
