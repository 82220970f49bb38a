package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "transfer-hub", cfg.App.Name)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "all", cfg.Audit.DefaultView)
	assert.Equal(t, "open", cfg.Audit.UnknownConstraints)
	assert.Equal(t, 5, cfg.Audit.SuggestionLimit)
	assert.Equal(t, 5*time.Minute, cfg.Audit.CacheTTL)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.True(t, cfg.Features.GroupedStrict("ABC123"))
	assert.True(t, cfg.Features.AutoAssignGroups("ABC123"))
}

func TestLoad_AuditOverrides(t *testing.T) {
	t.Setenv("AUDIT_DEFAULT_VIEW", "Completed")
	t.Setenv("AUDIT_UNKNOWN_CONSTRAINTS", "closed")
	t.Setenv("AUDIT_CACHE_TTL", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "completed", cfg.Audit.DefaultView)
	assert.Equal(t, "closed", cfg.Audit.UnknownConstraints)
	assert.Equal(t, 30*time.Second, cfg.Audit.CacheTTL)
}

func TestLoad_Lists(t *testing.T) {
	t.Setenv("HTTP_CORS_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("SEED_CATALOG_FILE", "catalog.yaml")
	t.Setenv("SEED_PLAN_FILES", "p1.yaml,p2.yaml")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, "catalog.yaml", cfg.Seed.CatalogFile)
	assert.Equal(t, []string{"p1.yaml", "p2.yaml"}, cfg.Seed.PlanFiles)
	assert.False(t, cfg.HTTP.AdminEnabled)

	t.Setenv("HTTP_ADMIN_ENABLED", "true")
	cfg, err = Load()
	require.NoError(t, err)
	assert.True(t, cfg.HTTP.AdminEnabled)
}

func TestLoad_DatabaseURLFromParts(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "hub")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "transfer")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://hub:secret@db:5432/transfer?sslmode=disable", cfg.Database.URL)
}

func TestValidate(t *testing.T) {
	t.Setenv("AUDIT_UNKNOWN_CONSTRAINTS", "maybe")
	t.Setenv("AUDIT_DEFAULT_VIEW", "everything")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUDIT_UNKNOWN_CONSTRAINTS")
	assert.Contains(t, err.Error(), "AUDIT_DEFAULT_VIEW")
}

func TestValidate_ProductionNeedsDatabase(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestFeatureFlags_EnvOverride(t *testing.T) {
	t.Setenv("FEATURE_AUDIT_GROUPED_STRICT", "false")

	ff := LoadFeatureFlags()
	assert.False(t, ff.GroupedStrict("ABC123"))
	assert.True(t, ff.AutoAssignGroups("ABC123"))
}

func TestFeatureFlags_RolloutIsStable(t *testing.T) {
	ff := LoadFeatureFlags()
	require.NoError(t, ff.SetRolloutPercent(FeaturePlanAutoAssignGroups, 50))

	first := ff.AutoAssignGroups("PLAN42")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ff.AutoAssignGroups("PLAN42"))
	}

	enabled := 0
	for _, code := range []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J", "K", "L", "M", "N", "O", "P"} {
		if ff.AutoAssignGroups(code) {
			enabled++
		}
	}
	assert.Greater(t, enabled, 0)
	assert.Less(t, enabled, 16)
}

func TestFeatureFlags_Overrides(t *testing.T) {
	ff := LoadFeatureFlags()
	require.NoError(t, ff.DisableFeature(FeatureAuditGroupedStrict))

	ff.SetSubjectOverride("VIP", FeatureAuditGroupedStrict, true)
	assert.True(t, ff.GroupedStrict("VIP"))
	assert.False(t, ff.GroupedStrict("OTHER"))

	ff.ClearSubjectOverrides("VIP")
	assert.False(t, ff.GroupedStrict("VIP"))

	require.NoError(t, ff.EnableFeature(FeatureAuditGroupedStrict))
	assert.True(t, ff.GroupedStrict("OTHER"))
	assert.Equal(t, 100, ff.GetAllFeatures()[FeatureAuditGroupedStrict].RolloutPercent)

	assert.True(t, ff.IsEnabled(FeatureAuditGroupedStrict, &FeatureContext{IsAdmin: true}))
	assert.False(t, ff.IsEnabled("missing.flag", nil))
	assert.ErrorIs(t, ff.SetRolloutPercent("missing.flag", 10), ErrFeatureNotFound)
	assert.ErrorIs(t, ff.SetRolloutPercent(FeatureAuditGroupedStrict, 101), ErrInvalidRolloutPercent)

	var nilFlags *FeatureFlags
	assert.False(t, nilFlags.GroupedStrict("X"))
}
