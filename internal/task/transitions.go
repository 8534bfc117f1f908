package task

import "fmt"

// This file is the transition engine tying the seven typed views to the
// single persisted State. Two directions:
//
//   - Forward: each view's ToState method attempts exactly one step of
//     advance toward the next view before writing a status - Assign may
//     collapse into Approve, Approve into Stage, and so on. Stage, Run,
//     and Finish always succeed at their one step (the gate, if any, was
//     already satisfied by an earlier view), so in practice a persisted
//     Stage view is always recorded as Staged, a persisted Run view as
//     Running, and a persisted Finish view as Finished.
//   - Restore: reconstructing a view from a loaded State walks forward
//     from whatever status is on record, re-validating every gate it
//     passes through, until it reaches the requested view or fails with
//     ErrCannotRestore.

// assignToApprove converts a to Approve if I8 (all declared input and
// output names are bound) holds.
func assignToApprove(a Assign) (Approve, error) {
	if !a.State.AllDataAssigned() {
		return Approve{}, ErrAssignNotReady
	}

	a.State.Status = StatusDataAssigned

	return Approve{State: a.State}, nil
}

// approveToStage converts ap to Stage if I9 (every participant has
// approved, or there is only one participant) holds.
func approveToStage(ap Approve) (Stage, error) {
	if !ap.State.EveryoneApproved() {
		return Stage{}, ErrApproveNotReady
	}

	ap.State.Status = StatusApproved

	return Stage{State: ap.State}, nil
}

// stageToRun converts s to Run. Unconditional: every gate a Run requires
// was already satisfied to reach Stage.
func stageToRun(s Stage) Run {
	s.State.Status = StatusStaged

	return Run{State: s.State}
}

// runToFinish converts r to Finish. Unconditional.
func runToFinish(r Run) Finish {
	r.State.Status = StatusRunning

	return Finish{State: r.State}
}

// finishToDone converts f to Done. Unconditional.
func finishToDone(f Finish) Done {
	if f.State.Result.Kind != ResultFailureKind {
		f.State.Status = StatusFinished
	}

	return Done{State: f.State}
}

// ToState persists c unconditionally as Created. Create never attempts an
// advance of its own: a freshly constructed task has no assigned data yet.
func (c Create) ToState() State {
	c.State.Status = StatusCreated

	return c.State
}

// ToState persists a, first attempting the single Assign -> Approve step.
// Succeeds as DataAssigned if every name is bound, else as Created.
func (a Assign) ToState() State {
	if next, err := assignToApprove(a); err == nil {
		return next.State
	}

	a.State.Status = StatusCreated

	return a.State
}

// ToState persists ap, first attempting the single Approve -> Stage step.
// Succeeds as Approved if every participant has approved, else as
// DataAssigned.
func (ap Approve) ToState() State {
	if next, err := approveToStage(ap); err == nil {
		return next.State
	}

	ap.State.Status = StatusDataAssigned

	return ap.State
}

// ToState persists s, advancing the single Stage -> Run step, so the
// recorded status is Staged.
func (s Stage) ToState() State {
	return stageToRun(s).State
}

// ToState persists r, advancing the single Run -> Finish step, so the
// recorded status is Running.
func (r Run) ToState() State {
	return runToFinish(r).State
}

// ToState persists f, advancing the single Finish -> Done step, so the
// recorded status is Finished (or Failed, if f carries a failure
// Result).
func (f Finish) ToState() State {
	return finishToDone(f).State
}

// ToState persists d as-is. Done never advances further: the commented-out
// source conversion from a terminal task back to TaskState is resolved
// here as a no-op that simply returns the stored record.
func (d Done) ToState() State {
	return d.State
}

// RestoreAssign reconstructs an Assign view from state. Only a task still
// at Created can be viewed as Assign.
func RestoreAssign(state State) (Assign, error) {
	if state.Status != StatusCreated {
		return Assign{}, cannotRestoreErr("Assign", state.Status)
	}

	return Assign{State: state}, nil
}

// RestoreApprove reconstructs an Approve view from state. A Created task
// is walked forward through Assign first (re-validating I8); a
// DataAssigned task is accepted directly.
func RestoreApprove(state State) (Approve, error) {
	switch state.Status {
	case StatusDataAssigned:
		return Approve{State: state}, nil
	case StatusCreated:
		a, err := RestoreAssign(state)
		if err != nil {
			return Approve{}, cannotRestoreErr("Approve", state.Status)
		}

		next, err := assignToApprove(a)
		if err != nil {
			return Approve{}, cannotRestoreErr("Approve", state.Status)
		}

		return next, nil
	default:
		return Approve{}, cannotRestoreErr("Approve", state.Status)
	}
}

// RestoreStage reconstructs a Stage view from state. Created and
// DataAssigned tasks are walked forward through Approve first
// (re-validating I8 and I9 as needed); an Approved task is accepted
// directly.
func RestoreStage(state State) (Stage, error) {
	switch state.Status {
	case StatusApproved:
		return Stage{State: state}, nil
	case StatusCreated, StatusDataAssigned:
		ap, err := RestoreApprove(state)
		if err != nil {
			return Stage{}, cannotRestoreErr("Stage", state.Status)
		}

		next, err := approveToStage(ap)
		if err != nil {
			return Stage{}, cannotRestoreErr("Stage", state.Status)
		}

		return next, nil
	default:
		return Stage{}, cannotRestoreErr("Stage", state.Status)
	}
}

// RestoreRun reconstructs a Run view from state. Only a Staged task can be
// viewed as Run.
func RestoreRun(state State) (Run, error) {
	if state.Status != StatusStaged {
		return Run{}, cannotRestoreErr("Run", state.Status)
	}

	return Run{State: state}, nil
}

// RestoreFinish reconstructs a Finish view from state. Only a Running task
// can be viewed as Finish.
func RestoreFinish(state State) (Finish, error) {
	if state.Status != StatusRunning {
		return Finish{}, cannotRestoreErr("Finish", state.Status)
	}

	return Finish{State: state}, nil
}

// RestoreDone reconstructs a Done view from state. Only a Finished task
// can be viewed as Done; a Failed task is terminal but is not a Done view
// (its Result already records the failure).
func RestoreDone(state State) (Done, error) {
	if state.Status != StatusFinished {
		return Done{}, cannotRestoreErr("Done", state.Status)
	}

	return Done{State: state}, nil
}

func cannotRestoreErr(phase string, status Status) error {
	return fmt.Errorf("Cannot restore to %s from saved state: %w (status=%s)", phase, ErrCannotRestore, status) //nolint:staticcheck // string-stable client-facing phrase prefix
}
