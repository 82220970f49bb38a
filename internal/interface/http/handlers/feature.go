package handlers

import (
	"errors"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/transferhub/transfer-hub/config"
	"github.com/transferhub/transfer-hub/pkg/logger"
)

// FeatureAdmin is the part of config.FeatureFlags the admin endpoints drive.
type FeatureAdmin interface {
	GetAllFeatures() map[string]*config.Feature
	SetRolloutPercent(featureName string, percent int) error
	EnableFeature(featureName string) error
	DisableFeature(featureName string) error
	SetSubjectOverride(subject, featureName string, enabled bool)
	ClearSubjectOverrides(subject string)
}

// FeatureHandler serves runtime feature flag changes.
type FeatureHandler struct {
	flags FeatureAdmin
	log   *logger.Logger
}

// NewFeatureHandler creates a FeatureHandler.
func NewFeatureHandler(flags FeatureAdmin, log *logger.Logger) *FeatureHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &FeatureHandler{
		flags: flags,
		log:   log.With(logger.Component("FeatureHandler")),
	}
}

// FeatureView is one flag as listed by the admin API.
type FeatureView struct {
	Name           string `json:"name"`
	Description    string `json:"description"`
	Enabled        bool   `json:"enabled"`
	RolloutPercent int    `json:"rollout_percent"`
}

// UpdateFeatureRequest is the body of PUT /admin/features/:name. A rollout
// percentage wins over the enabled switch.
type UpdateFeatureRequest struct {
	Enabled        *bool `json:"enabled"`
	RolloutPercent *int  `json:"rollout_percent"`
}

// OverrideRequest is the body of PUT /admin/features/:name/overrides/:subject.
type OverrideRequest struct {
	Enabled bool `json:"enabled"`
}

// List serves GET /admin/features.
func (h *FeatureHandler) List(c *gin.Context) {
	RespondOK(c, gin.H{"features": h.views()})
}

// Update serves PUT /admin/features/:name.
func (h *FeatureHandler) Update(c *gin.Context) {
	var req UpdateFeatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	name := c.Param("name")
	var err error
	switch {
	case req.RolloutPercent != nil:
		err = h.flags.SetRolloutPercent(name, *req.RolloutPercent)
	case req.Enabled != nil && *req.Enabled:
		err = h.flags.EnableFeature(name)
	case req.Enabled != nil:
		err = h.flags.DisableFeature(name)
	default:
		RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("enabled or rollout_percent is required"))
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	h.log.Info("feature flag updated", logger.String("name", name))
	view, _ := h.view(name)
	RespondOK(c, view)
}

// SetOverride serves PUT /admin/features/:name/overrides/:subject.
func (h *FeatureHandler) SetOverride(c *gin.Context) {
	var req OverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}

	name, subject := c.Param("name"), c.Param("subject")
	if _, ok := h.view(name); !ok {
		h.fail(c, config.ErrFeatureNotFound)
		return
	}
	h.flags.SetSubjectOverride(subject, name, req.Enabled)

	h.log.Info("feature override set",
		logger.String("name", name),
		logger.PlanCode(subject),
		logger.Bool("enabled", req.Enabled),
	)
	c.Status(http.StatusNoContent)
}

// ClearOverrides serves DELETE /admin/overrides/:subject.
func (h *FeatureHandler) ClearOverrides(c *gin.Context) {
	subject := c.Param("subject")
	h.flags.ClearSubjectOverrides(subject)
	h.log.Info("feature overrides cleared", logger.PlanCode(subject))
	c.Status(http.StatusNoContent)
}

func (h *FeatureHandler) views() []FeatureView {
	features := h.flags.GetAllFeatures()
	out := make([]FeatureView, 0, len(features))
	for name, f := range features {
		out = append(out, FeatureView{
			Name:           name,
			Description:    f.Description,
			Enabled:        f.Enabled,
			RolloutPercent: f.RolloutPercent,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (h *FeatureHandler) view(name string) (FeatureView, bool) {
	for _, v := range h.views() {
		if v.Name == name {
			return v, true
		}
	}
	return FeatureView{}, false
}

func (h *FeatureHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, config.ErrFeatureNotFound):
		RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, config.ErrInvalidRolloutPercent):
		RespondError(c, http.StatusBadRequest, "validation_error", err)
	default:
		h.log.Error("feature update failed", logger.Err(err))
		RespondError(c, http.StatusInternalServerError, "internal_error", errors.New("internal error"))
	}
}
