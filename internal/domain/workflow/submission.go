package workflow

// NewSubmissionMachine builds the lifecycle of a new bill form:
//
//	IDLE -> FILE_STAGING -> VALID | INVALID
//	INVALID -> FILE_STAGING
//	VALID -> FILE_STAGING | SUBMITTING
//	SUBMITTING -> DONE | FAILED
//	FAILED -> SUBMITTING (manual re-submit) | FILE_STAGING
//
// hasStagedFile guards every SUBMIT so a form without an accepted receipt
// can never reach the store.
func NewSubmissionMachine(hasStagedFile GuardFunc) StateMachine {
	b := NewBuilder()

	b.Configure(StateIdle).
		Permit(TriggerChooseFile, StateFileStaging)

	b.Configure(StateFileStaging).
		Permit(TriggerAcceptFile, StateValid).
		Permit(TriggerRejectFile, StateInvalid)

	b.Configure(StateInvalid).
		Permit(TriggerChooseFile, StateFileStaging)

	b.Configure(StateValid).
		Permit(TriggerChooseFile, StateFileStaging).
		PermitIf(TriggerSubmit, StateSubmitting, hasStagedFile)

	b.Configure(StateSubmitting).
		Permit(TriggerSucceed, StateDone).
		Permit(TriggerFail, StateFailed)

	b.Configure(StateFailed).
		Permit(TriggerChooseFile, StateFileStaging).
		PermitIf(TriggerSubmit, StateSubmitting, hasStagedFile)

	return b.Build(StateIdle)
}
