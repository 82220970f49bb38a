package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transferhub/transfer-hub/internal/domain/audit"
	"github.com/transferhub/transfer-hub/pkg/logger"
)

var testdata = filepath.Join("..", "..", "internal", "infrastructure", "catalogfile", "testdata")

func baseOptions(report, view string) options {
	return options{
		catalogPath: filepath.Join(testdata, "catalog.yaml"),
		planPath:    filepath.Join(testdata, "plan.yaml"),
		report:      report,
		view:        view,
		unknown:     string(audit.FailOpen),
	}
}

func TestRun_Progress(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, run(context.Background(), baseOptions(reportProgress, "all"), &buf, logger.Nop()))

	var report audit.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	assert.Equal(t, "PLAN01", report.PlanCode)
	assert.Equal(t, "bio-bs", report.ProgramID)
	assert.Equal(t, 100.0, report.CompletionPercentage)
	require.Len(t, report.Requirements, 1)
	assert.Equal(t, audit.StatusMet, report.Requirements[0].Status)
}

func TestRun_CSVCompletedView(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, run(context.Background(), baseOptions(reportCSV, "completed"), &buf, logger.Nop()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "major,Major Core,8,0,8,false", lines[1])
}

func TestRun_UnknownConstraintsClosed(t *testing.T) {
	opts := baseOptions(reportUnmet, "all")
	opts.unknown = string(audit.FailClosed)

	var buf bytes.Buffer
	require.NoError(t, run(context.Background(), opts, &buf, logger.Nop()))

	var out struct {
		TotalUnmet int `json:"total_unmet"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, 1, out.TotalUnmet)
}

func TestRun_Prerequisites(t *testing.T) {
	opts := baseOptions(reportPrereq, "")
	opts.course = "BIOS 4000"
	opts.institution = "uga"

	var buf bytes.Buffer
	require.NoError(t, run(context.Background(), opts, &buf, logger.Nop()))

	var report audit.PrerequisiteReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	assert.False(t, report.CanTake)
	assert.Equal(t, []string{"MATH 2250"}, report.SatisfiedPrerequisites)
	assert.Equal(t, []string{"CHEM 1211"}, report.MissingPrerequisites)
}

func TestRun_Errors(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer

	opts := baseOptions(reportProgress, "")
	opts.planPath = ""
	assert.Error(t, run(ctx, opts, &buf, logger.Nop()))

	assert.Error(t, run(ctx, baseOptions("histogram", ""), &buf, logger.Nop()))
	assert.Error(t, run(ctx, baseOptions(reportProgress, "someday"), &buf, logger.Nop()))
}
