package verify

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"sqldrill/internal/engine"
)

// Querier is the slice of a scratch dataset the verifier needs
type Querier interface {
	Query(ctx context.Context, sqlText string) (*engine.RowSet, error)
}

// Verdict is the outcome of grading one submission. LearnerError carries
// the raw execution error when the candidate query failed to run; a failed
// query is an expected outcome, not a system fault.
type Verdict struct {
	Correct      bool
	LearnerError string
}

// SolutionFaultError means the canonical solution failed to execute against
// its own dataset. That is broken exercise content, not a learner mistake,
// and must never be reported as a plain incorrect verdict.
type SolutionFaultError struct {
	Query string
	Err   error
}

func (e *SolutionFaultError) Error() string {
	return fmt.Sprintf("canonical solution %q failed: %v", e.Query, e.Err)
}

func (e *SolutionFaultError) Unwrap() error {
	return e.Err
}

// Verify executes the candidate and the canonical solution against the same
// dataset and compares their outputs.
//
// Comparison is by row count, column count and per-cell textual value at
// matching positions. Column names are never compared, so learner aliases
// are fine. When orderSensitive is true (the default for exercises), rows
// must match position by position in engine return order; otherwise the two
// results are compared as multisets of rows.
func Verify(ctx context.Context, dataset Querier, candidateQuery, solutionQuery string, orderSensitive bool) (Verdict, error) {
	candidate, err := dataset.Query(ctx, candidateQuery)
	if err != nil {
		var execErr *engine.ExecError
		if errors.As(err, &execErr) {
			return Verdict{Correct: false, LearnerError: execErr.Err.Error()}, nil
		}
		return Verdict{}, err
	}

	solution, err := dataset.Query(ctx, solutionQuery)
	if err != nil {
		return Verdict{}, &SolutionFaultError{Query: solutionQuery, Err: err}
	}

	return Verdict{Correct: equalResults(candidate, solution, orderSensitive)}, nil
}

func equalResults(candidate, solution *engine.RowSet, orderSensitive bool) bool {
	if len(candidate.Rows) != len(solution.Rows) {
		return false
	}
	if len(candidate.Rows) == 0 {
		return true
	}
	if len(candidate.Columns) != len(solution.Columns) {
		return false
	}

	if orderSensitive {
		for i := range candidate.Rows {
			if rowKey(candidate.Rows[i]) != rowKey(solution.Rows[i]) {
				return false
			}
		}
		return true
	}

	return equalAsMultisets(candidate.Rows, solution.Rows)
}

// equalAsMultisets compares row sets ignoring row order but keeping
// duplicate counts.
func equalAsMultisets(a, b [][]engine.Value) bool {
	ka := make([]string, len(a))
	kb := make([]string, len(b))
	for i := range a {
		ka[i] = rowKey(a[i])
		kb[i] = rowKey(b[i])
	}
	sort.Strings(ka)
	sort.Strings(kb)
	for i := range ka {
		if ka[i] != kb[i] {
			return false
		}
	}
	return true
}

// rowKey textualizes a row for comparison. The unit separator keeps cell
// boundaries unambiguous.
func rowKey(row []engine.Value) string {
	parts := make([]string, len(row))
	for i, v := range row {
		parts[i] = v.String()
	}
	return strings.Join(parts, "\x1f")
}
