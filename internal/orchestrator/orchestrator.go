package orchestrator

import (
	"context"
	"fmt"
	"time"

	"sqldrill/internal/catalog"
	"sqldrill/internal/engine"
	"sqldrill/internal/models"
	"sqldrill/internal/repository"
	"sqldrill/internal/service"
	"sqldrill/internal/verify"
)

// State is the orchestrator's position in the practice workflow
type State int

const (
	StateNotStarted State = iota
	StateLoading
	StateReady
	StateSubmitted
	StateAllComplete
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "NotStarted"
	case StateLoading:
		return "Loading"
	case StateReady:
		return "Ready"
	case StateSubmitted:
		return "Submitted"
	case StateAllComplete:
		return "AllComplete"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ContractViolationError reports a method invoked in a state that forbids
// it. It is a programming error in the caller, never masked.
type ContractViolationError struct {
	Op    string
	State State
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("%s is not valid in state %s", e.Op, e.State)
}

// Orchestrator drives one learner's practice workflow: resolve the current
// exercise, materialize its scratch dataset, grade submissions, and advance
// on success. It owns the dataset lifecycle and the attempt timer.
//
// One instance serves one learner from one client; it is not safe for
// concurrent use. It must be owned and injected by the application context,
// never reached through a shared global.
type Orchestrator struct {
	catalog  *catalog.Catalog
	eng      *engine.Engine
	practice *service.PracticeService
	sessions *repository.SessionRepository

	learnerID int64

	state       State
	current     models.Exercise
	dataset     *engine.ScratchDataset
	readyAt     time.Time
	lastVerdict *verify.Verdict
}

// New creates an orchestrator for one learner
func New(cat *catalog.Catalog, eng *engine.Engine, practice *service.PracticeService, sessions *repository.SessionRepository, learnerID int64) *Orchestrator {
	return &Orchestrator{
		catalog:   cat,
		eng:       eng,
		practice:  practice,
		sessions:  sessions,
		learnerID: learnerID,
		state:     StateNotStarted,
	}
}

// State returns the current workflow state
func (o *Orchestrator) State() State {
	return o.state
}

// Current returns the exercise being practiced. Only meaningful outside
// NotStarted and AllComplete.
func (o *Orchestrator) Current() models.Exercise {
	return o.current
}

// LastVerdict returns the verdict of the most recent submission, or nil
func (o *Orchestrator) LastVerdict() *verify.Verdict {
	return o.lastVerdict
}

// Start begins practice: it activates the session, resolves the learner's
// current exercise (or the first one), and materializes its dataset. Any
// setup failure aborts the whole load and returns to NotStarted with no
// partial dataset left behind.
func (o *Orchestrator) Start(ctx context.Context) (models.Exercise, error) {
	if o.state != StateNotStarted {
		return models.Exercise{}, &ContractViolationError{Op: "start", State: o.state}
	}

	ex, err := o.practice.CurrentOrFirstExercise(o.learnerID)
	if err != nil {
		return models.Exercise{}, err
	}

	if err := o.sessions.Activate(o.learnerID); err != nil {
		return models.Exercise{}, err
	}
	if err := o.sessions.SetCurrentExercise(o.learnerID, ex.ID); err != nil {
		return models.Exercise{}, err
	}

	return ex, o.load(ctx, ex)
}

// load materializes the exercise's dataset and enters Ready
func (o *Orchestrator) load(ctx context.Context, ex models.Exercise) error {
	o.state = StateLoading
	o.current = ex
	o.lastVerdict = nil

	dataset, err := engine.Materialize(ctx, o.eng, ex.SetupStatements)
	if err != nil {
		// Materialize already tore the connection down; nothing dangles.
		o.state = StateNotStarted
		return fmt.Errorf("failed to load exercise %d: %w", ex.ID, err)
	}

	o.dataset = dataset
	o.state = StateReady
	o.readyAt = time.Now()
	return nil
}

// RunQuery executes a free-form query against the exercise's dataset so the
// learner can explore before submitting. Valid while an exercise is loaded.
func (o *Orchestrator) RunQuery(ctx context.Context, sqlText string) (*engine.RowSet, error) {
	if o.state != StateReady && o.state != StateSubmitted {
		return nil, &ContractViolationError{Op: "run", State: o.state}
	}
	return o.dataset.Query(ctx, sqlText)
}

// Submit grades the candidate query against the loaded dataset and records
// the attempt. Elapsed time is measured from when the exercise became
// Ready. Submitting again after a verdict records a fresh attempt; retries
// are expected and counted.
func (o *Orchestrator) Submit(ctx context.Context, candidateQuery string) (*service.SubmissionResult, error) {
	if o.state != StateReady && o.state != StateSubmitted {
		return nil, &ContractViolationError{Op: "submit", State: o.state}
	}

	elapsed := int(time.Since(o.readyAt).Seconds())

	result, err := o.practice.GradeAndRecord(ctx, o.learnerID, o.current, o.dataset, candidateQuery, &elapsed)
	if err != nil {
		return nil, err
	}

	o.state = StateSubmitted
	o.lastVerdict = &result.Verdict
	return result, nil
}

// Next advances to the following exercise. Valid only after a correct
// verdict. On the last exercise it disposes the dataset, deactivates the
// session and enters the terminal AllComplete state.
func (o *Orchestrator) Next(ctx context.Context) (models.Exercise, error) {
	if o.state != StateSubmitted || o.lastVerdict == nil || !o.lastVerdict.Correct {
		return models.Exercise{}, &ContractViolationError{Op: "next", State: o.state}
	}

	next, ok := o.catalog.After(o.current.ID)
	if !ok {
		o.disposeDataset()
		if err := o.sessions.Deactivate(o.learnerID); err != nil {
			return models.Exercise{}, err
		}
		o.state = StateAllComplete
		return models.Exercise{}, nil
	}

	if err := o.sessions.SetCurrentExercise(o.learnerID, next.ID); err != nil {
		return models.Exercise{}, err
	}

	o.disposeDataset()
	return next, o.load(ctx, next)
}

// Done reports whether every exercise has been completed
func (o *Orchestrator) Done() bool {
	return o.state == StateAllComplete
}

// Exit abandons practice from any state: the session is deactivated, the
// dataset disposed, and the orchestrator returns to NotStarted.
func (o *Orchestrator) Exit() error {
	o.disposeDataset()
	o.state = StateNotStarted
	o.lastVerdict = nil
	return o.sessions.Deactivate(o.learnerID)
}

func (o *Orchestrator) disposeDataset() {
	if o.dataset != nil {
		o.dataset.Dispose()
		o.dataset = nil
	}
}
