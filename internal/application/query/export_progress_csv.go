package query

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/transferhub/transfer-hub/internal/domain/audit"
)

// Progress export layout. Keep header order EXACT.
var progressCSVHeader = []string{
	"program_type",
	"category",
	"credits_required",
	"credits_completed",
	"credits_remaining",
	"is_complete",
}

// ExportProgressCSV returns one row per requirement of the report, header
// first.
func ExportProgressCSV(r *audit.Report) [][]string {
	rows := make([][]string, 0, len(r.Requirements)+1)
	rows = append(rows, append([]string(nil), progressCSVHeader...))
	for _, rr := range r.Requirements {
		rows = append(rows, toProgressRow(r.ProgramType, rr))
	}
	return rows
}

// WriteProgressCSV writes the export rows of r to w.
func WriteProgressCSV(w io.Writer, r *audit.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(ExportProgressCSV(r)); err != nil {
		return err
	}
	return cw.Error()
}

func toProgressRow(programType string, rr audit.RequirementResult) []string {
	return []string{
		programType,                       // program_type
		rr.Category,                       // category
		strconv.Itoa(rr.CreditsRequired),  // credits_required
		strconv.Itoa(rr.CreditsEarned),    // credits_completed
		strconv.Itoa(rr.RemainingCredits), // credits_remaining
		strconv.FormatBool(rr.Met()),      // is_complete
	}
}
