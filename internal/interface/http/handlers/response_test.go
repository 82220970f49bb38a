package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/transferhub/transfer-hub/internal/domain/shared"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", shared.ErrPlanNotFound, http.StatusNotFound, "not_found"},
		{"validation", shared.ErrInvalidView, http.StatusBadRequest, "validation_error"},
		{"conflict", shared.NewDomainError("plan", "Save", shared.ErrAlreadyExists, "plan exists"), http.StatusConflict, "already_exists"},
		{"invalid state", shared.ErrNoTargetProgram, http.StatusUnprocessableEntity, "invalid_state"},
		{"unavailable", shared.WrapError("plan", "Find", shared.ErrTimeout, "find plan", errors.New("deadline")), http.StatusServiceUnavailable, "unavailable"},
		{"other", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, code := classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}
