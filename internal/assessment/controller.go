// Package assessment drives one talent-assessment run at a time:
// child selection, question fetch, strictly ordered answer submission and
// the final analysis step. The controller owns the run exclusively; pages
// only ever see snapshots.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sebakara/early-passion-detection/internal/api"
	"github.com/sebakara/early-passion-detection/internal/journal"
	"github.com/sebakara/early-passion-detection/internal/session"
	"github.com/sebakara/early-passion-detection/internal/types"
)

// Phase is the controller's position in the assessment flow.
type Phase int

const (
	Idle Phase = iota
	SelectingChild
	FetchingQuestions
	InProgress
	Submitting
	Analyzing
	Complete
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case SelectingChild:
		return "selecting-child"
	case FetchingQuestions:
		return "fetching-questions"
	case InProgress:
		return "in-progress"
	case Submitting:
		return "submitting"
	case Analyzing:
		return "analyzing"
	case Complete:
		return "complete"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// ErrBusy is returned when an operation is refused because another network
// step for the same run is still in flight.
var ErrBusy = errors.New("assessment operation already in flight")

// ErrSessionGone is returned when the session was evicted and the run may
// not proceed until the user re-authenticates.
var ErrSessionGone = errors.New("session is no longer active")

// Backend is the slice of the API client the controller uses.
type Backend interface {
	ListChildren(ctx context.Context) ([]types.Child, error)
	FetchAssessment(ctx context.Context, childID int) (*types.QuestionSet, error)
	SubmitResponse(ctx context.Context, childID, questionID int, answer string) error
	Analyze(ctx context.Context, childID int) (*api.AnalysisResult, error)
}

// run is the single active assessment run. Owned by the controller.
type run struct {
	id        string
	child     types.Child
	questions []types.Question
	index     int
	phase     Phase
	failedAt  Phase // the step that failed, for retry
	reason    string
	result    *api.AnalysisResult
}

// Snapshot is the read-only view handed to pages.
type Snapshot struct {
	Phase      Phase
	Child      types.Child
	Questions  []types.Question
	Index      int
	FailReason string
	Result     *api.AnalysisResult
	Children   []types.Child
}

// Current returns the question at the snapshot's index, and whether one
// exists.
func (s Snapshot) Current() (types.Question, bool) {
	if s.Index < 0 || s.Index >= len(s.Questions) {
		return types.Question{}, false
	}
	return s.Questions[s.Index], true
}

// Controller owns the assessment state machine.
type Controller struct {
	backend Backend
	journal *journal.Journal
	logger  *zap.Logger

	mu       sync.Mutex
	children []types.Child
	run      *run
	busy     bool
	active   bool // session is authenticated
}

// Option configures the controller.
type Option func(*Controller)

// WithJournal attaches the local answer journal.
func WithJournal(j *journal.Journal) Option {
	return func(c *Controller) { c.journal = j }
}

// WithLogger attaches a zap logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// New creates a controller. Callers that have a session store should also
// call BindSession so eviction freezes the run.
func New(backend Backend, opts ...Option) *Controller {
	c := &Controller{
		backend: backend,
		logger:  zap.NewNop(),
		active:  true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BindSession subscribes the controller to session changes: losing the
// session freezes the run (no further submissions), regaining it thaws
// the run at the same question so journaled progress is not lost.
func (c *Controller) BindSession(s *session.Store) {
	c.setActive(s.State().Status == session.Authenticated)
	s.Subscribe(func(st session.State) {
		c.setActive(st.Status == session.Authenticated)
	})
}

func (c *Controller) setActive(active bool) {
	c.mu.Lock()
	was := c.active
	c.active = active
	c.mu.Unlock()
	if was && !active {
		c.logger.Info("session lost; assessment run frozen")
	}
}

// Snapshot returns the current view of the flow.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	snap := Snapshot{Phase: Idle, Children: c.children}
	if c.run == nil {
		if c.children != nil {
			snap.Phase = SelectingChild
		}
		return snap
	}
	snap.Phase = c.run.phase
	snap.Child = c.run.child
	snap.Questions = c.run.questions
	snap.Index = c.run.index
	snap.FailReason = c.run.reason
	snap.Result = c.run.result
	return snap
}

// LoadChildren fetches the caller's children. An empty list is a valid,
// displayable state.
func (c *Controller) LoadChildren(ctx context.Context) (Snapshot, error) {
	children, err := c.backend.ListChildren(ctx)
	if err != nil {
		return c.Snapshot(), err
	}

	c.mu.Lock()
	if children == nil {
		children = []types.Child{}
	}
	c.children = children
	snap := c.snapshotLocked()
	c.mu.Unlock()
	return snap, nil
}

// StartAssessment begins a run for an already-loaded child, replacing any
// prior run entirely; even a run for the same child starts over at
// index 0.
func (c *Controller) StartAssessment(ctx context.Context, childID int) (Snapshot, error) {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return c.Snapshot(), ErrSessionGone
	}
	if c.busy {
		c.mu.Unlock()
		return c.Snapshot(), ErrBusy
	}

	var child *types.Child
	for i := range c.children {
		if c.children[i].ID == childID {
			child = &c.children[i]
			break
		}
	}
	if child == nil {
		c.mu.Unlock()
		return c.Snapshot(), fmt.Errorf("child %d is not in the loaded list", childID)
	}

	old := c.run
	c.run = &run{
		id:    uuid.NewString(),
		child: *child,
		phase: FetchingQuestions,
	}
	runID := c.run.id
	c.busy = true
	c.mu.Unlock()

	if old != nil {
		c.dropJournalRun(ctx, old.id)
	}

	qs, err := c.backend.FetchAssessment(ctx, childID)

	startIndex := 0
	if err == nil && qs != nil && len(qs.Questions) > 0 {
		startIndex = c.replayJournal(ctx, runID, childID, qs.Questions)
	}

	c.mu.Lock()
	c.busy = false

	if c.run == nil || c.run.id != runID {
		// Superseded while the fetch was in flight; discard the result.
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, nil
	}
	if !c.active {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, ErrSessionGone
	}
	if err != nil {
		c.run.phase = Failed
		c.run.failedAt = FetchingQuestions
		c.run.reason = err.Error()
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, err
	}

	c.run.questions = qs.Questions
	c.run.index = startIndex
	if len(qs.Questions) == 0 {
		c.run.phase = Failed
		c.run.failedAt = FetchingQuestions
		c.run.reason = "no questions available for this child"
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, errors.New(c.run.reason)
	}
	if startIndex >= len(qs.Questions) {
		// An earlier process got every answer accepted and then died
		// before the analysis. Only that step is left.
		c.run.phase = Analyzing
		c.mu.Unlock()
		return c.analyze(ctx, runID, childID)
	}
	c.run.phase = InProgress
	c.logger.Info("assessment started",
		zap.Int("child_id", childID),
		zap.Int("questions", len(qs.Questions)),
		zap.Int("first_question", startIndex))
	snap := c.snapshotLocked()
	c.mu.Unlock()
	return snap, nil
}

// replayJournal resumes what interrupted runs for this child left in the
// journal. Rows are usable only while they form an exact prefix of the
// fresh question set: synced rows count as already accepted, unsynced ones
// are resubmitted and their receipts migrate to the new run. Rows beyond
// the first mismatch, and every old run's rows afterwards, are dropped.
// Returns the index of the first question still needing an answer.
func (c *Controller) replayJournal(ctx context.Context, runID string, childID int, questions []types.Question) int {
	if c.journal == nil {
		return 0
	}
	entries, err := c.journal.PendingForChild(ctx, childID)
	if err != nil {
		c.logger.Warn("journal read failed", zap.Error(err))
		return 0
	}

	// Migrate the usable prefix to the new run first, so a failure during
	// resubmission below cannot strand rows in a run about to be dropped.
	var prefix []journal.Entry
	for _, e := range entries {
		if e.RunID == runID {
			continue
		}
		n := len(prefix)
		if n >= len(questions) || e.Index != n || questions[n].ID != e.QuestionID {
			break
		}
		c.recordJournal(ctx, journal.Entry{
			RunID: runID, ChildID: childID, QuestionID: e.QuestionID, Index: e.Index, Answer: e.Answer,
		})
		if e.Synced {
			c.markSynced(ctx, runID, e.QuestionID)
		}
		prefix = append(prefix, e)
	}

	idx := 0
	for _, e := range prefix {
		if !e.Synced {
			if err := c.backend.SubmitResponse(ctx, childID, e.QuestionID, e.Answer); err != nil {
				c.logger.Warn("journal replay interrupted",
					zap.Int("index", idx), zap.Error(err))
				break
			}
			c.markSynced(ctx, runID, e.QuestionID)
		}
		idx++
	}

	dropped := make(map[string]bool)
	for _, e := range entries {
		if e.RunID != runID && !dropped[e.RunID] {
			dropped[e.RunID] = true
			c.dropJournalRun(ctx, e.RunID)
		}
	}
	if idx > 0 {
		c.logger.Info("resumed journaled answers",
			zap.Int("child_id", childID), zap.Int("recovered", idx))
	}
	return idx
}

// SubmitAnswer submits the answer for the current question. Submissions
// are strictly ordered by index; a second call while one is in flight is
// refused, and a response that arrives after the run was replaced or the
// session evicted is discarded rather than applied.
func (c *Controller) SubmitAnswer(ctx context.Context, answer string) (Snapshot, error) {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return c.Snapshot(), ErrSessionGone
	}
	if c.busy {
		c.mu.Unlock()
		return c.Snapshot(), ErrBusy
	}
	if c.run == nil || c.run.phase != InProgress {
		phase := Idle
		if c.run != nil {
			phase = c.run.phase
		}
		c.mu.Unlock()
		return c.Snapshot(), fmt.Errorf("cannot submit an answer in state %s", phase)
	}

	q := c.run.questions[c.run.index]
	encoded, err := types.AnswerFor(q, answer)
	if err != nil {
		c.mu.Unlock()
		return c.Snapshot(), err
	}

	runID := c.run.id
	childID := c.run.child.ID
	index := c.run.index
	c.busy = true
	c.run.phase = Submitting
	c.mu.Unlock()

	c.recordJournal(ctx, journal.Entry{
		RunID: runID, ChildID: childID, QuestionID: q.ID, Index: index, Answer: encoded,
	})

	err = c.backend.SubmitResponse(ctx, childID, q.ID, encoded)

	c.mu.Lock()
	c.busy = false
	if c.run == nil || c.run.id != runID {
		c.mu.Unlock()
		return c.Snapshot(), nil // stale response for a replaced run
	}
	if !c.active {
		// Evicted while in flight: freeze at the same question. The
		// journal still holds this answer as unsynced.
		c.run.phase = InProgress
		c.mu.Unlock()
		return c.Snapshot(), ErrSessionGone
	}
	if err != nil {
		c.run.phase = InProgress // same question is re-presentable
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, err
	}

	if index+1 < len(c.run.questions) {
		c.run.index = index + 1
		c.run.phase = InProgress
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.markSynced(ctx, runID, q.ID)
		return snap, nil
	}

	// Last answer accepted: move to analysis.
	c.run.phase = Analyzing
	c.mu.Unlock()
	c.markSynced(ctx, runID, q.ID)
	return c.analyze(ctx, runID, childID)
}

// Retry re-runs the step a Failed run stopped at.
func (c *Controller) Retry(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	if c.run == nil || c.run.phase != Failed {
		c.mu.Unlock()
		return c.Snapshot(), errors.New("nothing to retry")
	}
	failedAt := c.run.failedAt
	childID := c.run.child.ID
	runID := c.run.id
	c.run.reason = ""
	c.mu.Unlock()

	switch failedAt {
	case FetchingQuestions:
		return c.StartAssessment(ctx, childID)
	case Analyzing:
		c.mu.Lock()
		if c.run == nil || c.run.id != runID {
			c.mu.Unlock()
			return c.Snapshot(), errors.New("nothing to retry")
		}
		if c.busy {
			c.mu.Unlock()
			return c.Snapshot(), ErrBusy
		}
		c.run.phase = Analyzing
		c.mu.Unlock()
		return c.analyze(ctx, runID, childID)
	default:
		// A failed submission leaves the run InProgress already; a retry
		// here is just the next SubmitAnswer.
		c.mu.Lock()
		if c.run == nil || c.run.id != runID {
			c.mu.Unlock()
			return c.Snapshot(), errors.New("nothing to retry")
		}
		c.run.phase = InProgress
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, nil
	}
}

func (c *Controller) analyze(ctx context.Context, runID string, childID int) (Snapshot, error) {
	c.mu.Lock()
	c.busy = true
	c.mu.Unlock()

	result, err := c.backend.Analyze(ctx, childID)

	c.mu.Lock()
	c.busy = false

	if c.run == nil || c.run.id != runID {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, nil
	}
	if !c.active {
		c.run.phase = Failed
		c.run.failedAt = Analyzing
		c.run.reason = ErrSessionGone.Error()
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, ErrSessionGone
	}
	if err != nil {
		c.run.phase = Failed
		c.run.failedAt = Analyzing
		c.run.reason = err.Error()
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, err
	}

	c.run.phase = Complete
	c.run.result = result
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.dropJournalRun(ctx, runID)
	c.logger.Info("assessment complete", zap.Int("child_id", childID))
	return snap, nil
}

// Reset discards the run and returns to child selection. Used by the UI
// after Complete, and on explicit abandonment.
func (c *Controller) Reset(ctx context.Context) Snapshot {
	c.mu.Lock()
	old := c.run
	c.run = nil
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if old != nil && old.phase != Complete {
		// Keep the journal for incomplete runs; the user may resume.
		return snap
	}
	if old != nil {
		c.dropJournalRun(ctx, old.id)
	}
	return snap
}

// journal helpers: best-effort, never block the flow.

func (c *Controller) recordJournal(ctx context.Context, e journal.Entry) {
	if c.journal == nil {
		return
	}
	if err := c.journal.Record(ctx, e); err != nil {
		c.logger.Warn("answer not journaled", zap.Error(err))
	}
}

func (c *Controller) markSynced(ctx context.Context, runID string, questionID int) {
	if c.journal == nil {
		return
	}
	if err := c.journal.MarkSynced(ctx, runID, questionID); err != nil {
		c.logger.Warn("journal sync mark failed", zap.Error(err))
	}
}

func (c *Controller) dropJournalRun(ctx context.Context, runID string) {
	if c.journal == nil {
		return
	}
	if err := c.journal.DropRun(ctx, runID); err != nil {
		c.logger.Warn("journal cleanup failed", zap.Error(err))
	}
}
