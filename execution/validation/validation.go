// Package validation decides whether a decoded state transition may be
// executed against the current block state.
//
// Validation runs in three stages: structure (the transition alone),
// signature (the signing key, read from the store) and state (everything
// else the transition depends on). A stage runs only when the previous one
// passed. Client mistakes are collected as consensus errors in a Result;
// a returned Go error is always fatal for the block.
package validation

import (
	"github.com/rony4d/go-platform-drive/drive"
	"github.com/rony4d/go-platform-drive/drive/fees"
	"github.com/rony4d/go-platform-drive/drive/storage"
	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/inter/keys"
	"github.com/rony4d/go-platform-drive/platform"
	"github.com/rony4d/go-platform-drive/platform/version"
	"github.com/rony4d/go-platform-drive/transition"
	"github.com/rony4d/go-platform-drive/transition/consensuserr"
	"github.com/rony4d/go-platform-drive/transition/contract"
	"github.com/rony4d/go-platform-drive/transition/document"
)

// Stage is a validation stage.
type Stage uint8

const (
	StageStructure Stage = iota
	StageSignature
	StageState
	// StageValid is reached by transitions that passed every stage.
	StageValid
)

func (s Stage) String() string {
	switch s {
	case StageStructure:
		return "structure"
	case StageSignature:
		return "signature"
	case StageState:
		return "state"
	case StageValid:
		return "valid"
	}
	return "unknown"
}

// Result is the outcome of validating one transition.
type Result struct {
	// Stage is the stage that failed, or StageValid.
	Stage  Stage
	Errors []consensuserr.ConsensusError
}

// IsValid reports whether no error was found.
func (r *Result) IsValid() bool {
	return len(r.Errors) == 0
}

// First returns the first error, or nil.
func (r *Result) First() consensuserr.ConsensusError {
	if len(r.Errors) == 0 {
		return nil
	}
	return r.Errors[0]
}

func (r *Result) add(errs ...consensuserr.ConsensusError) {
	r.Errors = append(r.Errors, errs...)
}

// Context is the state fetched while validating a transition. The
// transformer builds the action out of it.
type Context struct {
	Block    *inter.BlockContext
	Version  *version.PlatformVersion
	Envelope *transition.Envelope

	// Digest is the signing digest of the transition.
	Digest []byte
	Log    fees.Log
	// Cost is the store work of the reads done by validation.
	Cost storage.OperationCost

	// Authenticated is set once the transition is proven to be signed by
	// an existing identity key. Only authenticated transitions are billed
	// for failed validation.
	Authenticated bool
	SignerKey     keys.PublicKey
	// Balance is the signer balance read by signature validation.
	Balance inter.Credits
	// Required is the credits the transition moves out of the signer
	// balance besides fees.
	Required inter.Credits

	Contracts map[inter.Identifier]*contract.DataContract
	// Documents holds the stored documents a batch acts on, Next the
	// documents it produces.
	Documents map[inter.Identifier]*document.Document
	Next      map[inter.Identifier]*document.Document

	RecipientExists bool
}

func newContext(block *inter.BlockContext, pv *version.PlatformVersion, env *transition.Envelope) *Context {
	return &Context{
		Block:     block,
		Version:   pv,
		Envelope:  env,
		Contracts: make(map[inter.Identifier]*contract.DataContract),
		Documents: make(map[inter.Identifier]*document.Document),
		Next:      make(map[inter.Identifier]*document.Document),
	}
}

// Transition returns the validated transition.
func (ctx *Context) Transition() transition.StateTransition {
	return ctx.Envelope.Transition
}

// Validator runs the validation stages against drive state.
type Validator struct {
	drive *drive.Drive
	rules platform.Rules
}

// New creates a validator.
func New(d *drive.Drive, rules platform.Rules) *Validator {
	return &Validator{
		drive: d,
		rules: rules,
	}
}

// Validate runs every stage against the open block transaction. It never
// writes to tx.
func (v *Validator) Validate(tx *storage.Transaction, block *inter.BlockContext, pv *version.PlatformVersion, env *transition.Envelope) (*Context, *Result, error) {
	ctx := newContext(block, pv, env)
	res := &Result{Stage: StageStructure}

	if err := v.Structure(ctx, res); err != nil || !res.IsValid() {
		return ctx, res, err
	}
	res.Stage = StageSignature
	if err := v.Signature(tx, ctx, res); err != nil || !res.IsValid() {
		return ctx, res, err
	}
	res.Stage = StageState
	if err := v.State(tx, ctx, res); err != nil || !res.IsValid() {
		return ctx, res, err
	}
	res.Stage = StageValid
	return ctx, res, nil
}
