package execution

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/Ajay03299/DevForge/internal/app"
	"github.com/Ajay03299/DevForge/internal/application/dto"
	"github.com/Ajay03299/DevForge/internal/application/port/output"
	"github.com/Ajay03299/DevForge/internal/application/service"
	"github.com/Ajay03299/DevForge/internal/domain/repair"
)

// PatchRequester proposes a complete replacement file
type PatchRequester interface {
	RequestPatch(ctx context.Context, req service.PatchRequest) (string, error)
}

// RepairDefaults are used when the input leaves a policy unset
type RepairDefaults struct {
	MaxAttempts   int
	Timeout       time.Duration
	MatchStrategy repair.MatchStrategy
}

// RunRepairUseCase drives one bounded repair session over one file
type RunRepairUseCase struct {
	store    output.TargetStore
	locker   output.PathLocker
	sandbox  output.SandboxExecutor
	patcher  PatchRequester
	differ   *service.DiffReportService
	observer output.RepairObserver
	defaults RepairDefaults
	now      func() time.Time
}

// NewRunRepairUseCase creates a new RunRepairUseCase
func NewRunRepairUseCase(
	store output.TargetStore,
	locker output.PathLocker,
	sandbox output.SandboxExecutor,
	patcher PatchRequester,
	differ *service.DiffReportService,
	observer output.RepairObserver,
	defaults RepairDefaults,
) *RunRepairUseCase {
	if defaults.MaxAttempts <= 0 {
		defaults.MaxAttempts = repair.DefaultMaxAttempts
	}
	if defaults.MatchStrategy == "" {
		defaults.MatchStrategy = repair.DefaultMatchStrategy
	}
	if observer == nil {
		observer = output.NopObserver{}
	}
	if differ == nil {
		differ = service.NewDiffReportService()
	}

	return &RunRepairUseCase{
		store:    store,
		locker:   locker,
		sandbox:  sandbox,
		patcher:  patcher,
		differ:   differ,
		observer: observer,
		defaults: defaults,
		now:      time.Now,
	}
}

// sessionRun is the mutable driver state of one session
type sessionRun struct {
	input    dto.RunRepairInput
	session  *repair.Session
	timeout  time.Duration
	strategy repair.MatchStrategy

	current       string          // Code the next execution runs
	attempt       *repair.Attempt // In progress, nil between attempts
	backupWritten bool
	err           error // Infrastructure failure that ended the session
}

// Execute runs the session. It returns an error only when the session could
// not start (invalid input, lock, unreadable target); every other ending is
// reported through the output's Outcome.
func (uc *RunRepairUseCase) Execute(ctx context.Context, input dto.RunRepairInput) (*dto.RunRepairOutput, error) {
	if strings.TrimSpace(input.FilePath) == "" {
		return nil, fmt.Errorf("file path is required")
	}

	strategy := input.MatchStrategy
	if strategy == "" {
		strategy = uc.defaults.MatchStrategy
	}
	if _, err := repair.ParseMatchStrategy(string(strategy)); err != nil {
		return nil, err
	}
	maxAttempts := input.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = uc.defaults.MaxAttempts
	}
	timeout := input.Timeout
	if timeout <= 0 {
		timeout = uc.defaults.Timeout
	}

	unlock, err := uc.locker.Lock(ctx, input.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s: %w", input.FilePath, err)
	}
	defer func() {
		if err := unlock(); err != nil {
			app.GetLogger().Warn("failed to release lock on %s: %v", input.FilePath, err)
		}
	}()
	defer uc.store.Release(input.FilePath)

	// The original is captured once, before any execution
	original, err := uc.store.Read(input.FilePath)
	if err != nil {
		return nil, err
	}

	expectation := input.Expectation
	if expectation == "" {
		expectation = repair.ExtractExpectation(input.Intent)
	}

	now := uc.now()
	run := &sessionRun{
		input:    input,
		session:  repair.NewSession(repair.NewSessionID(now), input.FilePath, original, input.Intent, expectation, maxAttempts, now),
		timeout:  timeout,
		strategy: strategy,
		current:  original,
	}
	app.GetLogger().Info("repair session %s started: %s (max %d attempts, expectation %q)",
		run.session.ID, input.FilePath, maxAttempts, expectation)

	m := repair.NewMachine(maxAttempts)
	ev := repair.Event{Kind: repair.EventStarted}
	for {
		next, effect, err := m.Next(ev)
		if err != nil {
			return nil, fmt.Errorf("repair loop: %w", err)
		}
		m = next
		if effect == repair.EffectFinish {
			break
		}
		ev = uc.perform(ctx, run, m, effect)
	}

	return uc.finish(ctx, run, m), nil
}

// perform executes the side effect requested by the machine and returns the
// event describing its result.
func (uc *RunRepairUseCase) perform(ctx context.Context, run *sessionRun, m repair.Machine, effect repair.Effect) repair.Event {
	switch effect {
	case repair.EffectExecute:
		return uc.execute(ctx, run, m.Attempt)

	case repair.EffectClassify:
		c := repair.Classify(run.attempt.Result, run.session.Expectation, run.strategy)
		run.attempt.Classification = c
		app.GetLogger().Debug("attempt %d classified as %s", run.attempt.Index, c.Verdict)
		return repair.Event{Kind: repair.EventClassified, Verdict: c.Verdict}

	case repair.EffectCheckBudget:
		return repair.Event{Kind: repair.EventProceed}

	case repair.EffectRequestPatch:
		return uc.requestPatch(ctx, run)

	case repair.EffectBackupAndApply:
		wrote, err := uc.store.EnsureBackup(run.session.TargetPath, run.session.Original())
		if err != nil {
			return uc.fail(run, err, repair.EventApplyFailed)
		}
		run.backupWritten = run.backupWritten || wrote
		return uc.apply(ctx, run)

	case repair.EffectApply:
		return uc.apply(ctx, run)
	}

	// The machine only emits the effects above
	return uc.fail(run, fmt.Errorf("unhandled effect %s", effect), repair.EventApplyFailed)
}

func (uc *RunRepairUseCase) execute(ctx context.Context, run *sessionRun, index int) repair.Event {
	// Stop between attempts
	if ctx.Err() != nil {
		return repair.Event{Kind: repair.EventCancelled}
	}

	run.attempt = &repair.Attempt{Index: index, Code: run.current, StartedAt: uc.now()}
	uc.observer.AttemptStarted(context.WithoutCancel(ctx), repair.AttemptStarted{
		SessionID:   run.session.ID,
		TargetPath:  run.session.TargetPath,
		Index:       index,
		MaxAttempts: run.session.MaxAttempts,
	})

	result, err := uc.sandbox.Execute(ctx, repair.ExecutionRequest{
		Code:     run.current,
		FileName: run.session.TargetPath,
		Timeout:  run.timeout,
	})
	if err != nil {
		if ctx.Err() != nil {
			run.attempt.Error = ctx.Err().Error()
			return repair.Event{Kind: repair.EventCancelled}
		}
		return uc.fail(run, err, repair.EventExecFailed)
	}

	run.attempt.Result = result
	return repair.Event{Kind: repair.EventExecuted}
}

func (uc *RunRepairUseCase) requestPatch(ctx context.Context, run *sessionRun) repair.Event {
	if ctx.Err() != nil {
		return repair.Event{Kind: repair.EventCancelled}
	}

	a := run.attempt
	a.PatchRequested = true
	candidate, err := uc.patcher.RequestPatch(ctx, service.PatchRequest{
		FilePath:    run.session.TargetPath,
		Code:        run.current,
		Attempt:     a.Index,
		Result:      a.Result,
		Verdict:     a.Verdict(),
		Diagnostic:  a.Classification.Diagnostic,
		Intent:      run.session.Intent,
		Expectation: run.session.Expectation,
	})
	if err != nil {
		if ctx.Err() != nil {
			a.Error = ctx.Err().Error()
			return repair.Event{Kind: repair.EventCancelled}
		}
		return uc.fail(run, err, repair.EventAdapterFailed)
	}

	a.Candidate = candidate
	if sameCode(candidate, run.current) {
		app.GetLogger().Info("patch service returned the code unchanged; stopping")
		return repair.Event{Kind: repair.EventPatchUnchanged}
	}
	return repair.Event{Kind: repair.EventPatchReady}
}

func (uc *RunRepairUseCase) apply(ctx context.Context, run *sessionRun) repair.Event {
	a := run.attempt
	if err := uc.store.Apply(run.session.TargetPath, a.Candidate); err != nil {
		return uc.fail(run, err, repair.EventApplyFailed)
	}
	a.Applied = true
	run.current = a.Candidate
	uc.finalizeAttempt(ctx, run)
	return repair.Event{Kind: repair.EventApplied}
}

// fail records an infrastructure error on the current attempt
func (uc *RunRepairUseCase) fail(run *sessionRun, err error, kind repair.EventKind) repair.Event {
	run.err = err
	if run.attempt != nil {
		run.attempt.Error = err.Error()
	}
	app.GetLogger().Error("repair session %s: %v", run.session.ID, err)
	return repair.Event{Kind: kind}
}

// finalizeAttempt appends the in-progress attempt and emits its event
func (uc *RunRepairUseCase) finalizeAttempt(ctx context.Context, run *sessionRun) {
	if run.attempt == nil {
		return
	}
	a := *run.attempt
	a.FinishedAt = uc.now()
	run.attempt = nil

	if err := run.session.Record(a); err != nil {
		// Indices come from the machine; a failure here is a driver bug
		app.GetLogger().Error("failed to record attempt %d: %v", a.Index, err)
		return
	}
	uc.observer.AttemptFinished(context.WithoutCancel(ctx), repair.NewAttemptFinished(run.session, a))
}

func (uc *RunRepairUseCase) finish(ctx context.Context, run *sessionRun, m repair.Machine) *dto.RunRepairOutput {
	uc.finalizeAttempt(ctx, run)

	s := run.session
	s.Finish(m.State.Outcome(), m.StopReason, uc.now())
	path := s.TargetPath

	final := s.FinalContent()
	reverted := false
	if run.input.RevertOnFailure && !s.Outcome.IsSuccess() && s.Wrote() {
		restored, err := uc.store.Restore(path)
		if err != nil {
			app.GetLogger().Error("failed to revert %s: %v", path, err)
			if run.err == nil {
				run.err = err
			}
		} else {
			final = restored
			reverted = true
		}
	}

	report := uc.differ.Diff(s.Original(), final)
	unified, err := uc.differ.Unified(filepath.Base(path), s.Original(), final)
	if err != nil {
		app.GetLogger().Warn("%v", err)
	}
	added, deleted := report.Stats()

	out := &dto.RunRepairOutput{
		SessionID:    s.ID,
		FilePath:     path,
		Intent:       s.Intent,
		Expectation:  s.Expectation,
		Outcome:      s.Outcome,
		StopReason:   s.StopReason,
		AttemptsUsed: s.AttemptsUsed(),
		MaxAttempts:  s.MaxAttempts,
		Diff:         report,
		UnifiedDiff:  unified,
		LinesAdded:   added,
		LinesDeleted: deleted,
		Reverted:     reverted,
		ElapsedMs:    s.FinishedAt.Sub(s.StartedAt).Milliseconds(),
		CompletedAt:  s.FinishedAt,
		Err:          run.err,
		Session:      s,
	}
	for _, a := range s.Attempts() {
		out.Attempts = append(out.Attempts, dto.NewAttemptDTO(a))
	}
	if last, ok := s.LastAttempt(); ok {
		out.LastVerdict = last.Verdict()
		out.LastExcerpt = repair.Excerpt(last.Classification.Diagnostic, repair.ExcerptLength)
	}
	if run.backupWritten {
		out.BackupPath = uc.store.BackupPath(path)
	}
	if run.err != nil {
		out.ErrorMsg = run.err.Error()
	}

	uc.observer.SessionFinished(context.WithoutCancel(ctx), repair.SessionFinished{
		SessionID:    s.ID,
		TargetPath:   path,
		Intent:       s.Intent,
		Outcome:      s.Outcome,
		StopReason:   s.StopReason,
		AttemptsUsed: s.AttemptsUsed(),
		MaxAttempts:  s.MaxAttempts,
		LastVerdict:  out.LastVerdict,
		LinesAdded:   added,
		LinesDeleted: deleted,
		Reverted:     reverted,
		Duration:     s.FinishedAt.Sub(s.StartedAt),
		Error:        out.ErrorMsg,
	})

	app.GetLogger().Info("repair session %s finished: %s after %d/%d attempts",
		s.ID, s.Outcome, s.AttemptsUsed(), s.MaxAttempts)
	return out
}

// sameCode ignores trailing whitespace, which the code block parser normalizes
func sameCode(a, b string) bool {
	return strings.TrimRight(a, " \t\r\n") == strings.TrimRight(b, " \t\r\n")
}
