package global

import (
	"errors"
	"fmt"

	"github.com/conn-castle/globalenv/internal/messages"
	"github.com/conn-castle/globalenv/internal/names"
)

var (
	// ErrInvalidIdentifier reports a malformed environment or exposed name.
	ErrInvalidIdentifier = names.ErrInvalidIdentifier
	// ErrAmbiguousMapping reports explicit mappings combined with several target environments.
	ErrAmbiguousMapping = errors.New("ambiguous exposed mapping")
	// ErrManifestMutation reports a failed add, remove or set step on the manifest.
	ErrManifestMutation = errors.New("manifest mutation failed")
	// ErrInstall reports a failed solve, fetch or link.
	ErrInstall = errors.New("install failed")
	// ErrDiscovery reports a prefix inspection failure while planning exposure.
	ErrDiscovery = errors.New("executable discovery failed")
	// ErrPublish reports a failure to converge shims.
	ErrPublish = errors.New("shim publication failed")
	// ErrRevert reports a rollback that failed after an install failure.
	ErrRevert = errors.New("revert failed")
)

// Stage names one step of installing an environment.
type Stage string

// Installation stages, in execution order.
const (
	StageRedefine    Stage = "redefine"
	StageRegister    Stage = "register dependencies"
	StageMaterialize Stage = "materialize"
	StagePlan        Stage = "plan exposure"
	StagePublish     Stage = "publish shims"
)

// StageError records which stage of which environment failed. It matches both its kind
// sentinel and the underlying cause with errors.Is.
type StageError struct {
	Kind  error
	Env   names.EnvironmentName
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf(messages.GlobalStageFmt, e.Env, e.Stage, e.Err)
}

// Unwrap exposes the kind and the cause.
func (e *StageError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func stageError(kind error, env names.EnvironmentName, stage Stage, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Kind: kind, Env: env, Stage: stage, Err: err}
}

// RevertError compounds an install failure with the failure of its rollback.
type RevertError struct {
	Env       names.EnvironmentName
	Cause     error
	RevertErr error
}

func (e *RevertError) Error() string {
	return fmt.Sprintf(messages.GlobalRevertFmt, e.Env, e.Cause, e.RevertErr)
}

// Unwrap exposes ErrRevert, the original cause and the revert failure.
func (e *RevertError) Unwrap() []error {
	return []error{ErrRevert, e.Cause, e.RevertErr}
}
