package consensuserr

import (
	"fmt"

	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/inter/keys"
)

const (
	CodeInvalidStateTransitionSignature        Code = 20001
	CodeMissingPublicKey                       Code = 20002
	CodePublicKeyIsDisabled                    Code = 20003
	CodeInvalidSignaturePublicKeySecurityLevel Code = 20004
	CodeInvalidSignaturePublicKeyPurpose       Code = 20005
	CodeInvalidSignaturePublicKeyType          Code = 20006
	CodeSignerIdentityNotFound                 Code = 20007
	CodeInvalidIdentityKeySignature            Code = 20008
)

type InvalidStateTransitionSignatureError struct{}

func (e InvalidStateTransitionSignatureError) Code() Code { return CodeInvalidStateTransitionSignature }
func (e InvalidStateTransitionSignatureError) Error() string {
	return "invalid state transition signature"
}

type MissingPublicKeyError struct {
	ID keys.KeyID
}

func (e MissingPublicKeyError) Code() Code { return CodeMissingPublicKey }
func (e MissingPublicKeyError) Error() string {
	return fmt.Sprintf("public key %d not found", e.ID)
}

type PublicKeyIsDisabledError struct {
	ID keys.KeyID
}

func (e PublicKeyIsDisabledError) Code() Code { return CodePublicKeyIsDisabled }
func (e PublicKeyIsDisabledError) Error() string {
	return fmt.Sprintf("public key %d is disabled", e.ID)
}

type InvalidSignaturePublicKeySecurityLevelError struct {
	ID      keys.KeyID
	Level   keys.SecurityLevel
	Allowed []keys.SecurityLevel
}

func (e InvalidSignaturePublicKeySecurityLevelError) Code() Code {
	return CodeInvalidSignaturePublicKeySecurityLevel
}
func (e InvalidSignaturePublicKeySecurityLevelError) Error() string {
	return fmt.Sprintf("public key %d has security level %s, allowed %v", e.ID, e.Level, e.Allowed)
}

type InvalidSignaturePublicKeyPurposeError struct {
	ID      keys.KeyID
	Purpose keys.Purpose
	Allowed []keys.Purpose
}

func (e InvalidSignaturePublicKeyPurposeError) Code() Code {
	return CodeInvalidSignaturePublicKeyPurpose
}
func (e InvalidSignaturePublicKeyPurposeError) Error() string {
	return fmt.Sprintf("public key %d has purpose %s, allowed %v", e.ID, e.Purpose, e.Allowed)
}

type InvalidSignaturePublicKeyTypeError struct {
	ID   keys.KeyID
	Type keys.KeyType
}

func (e InvalidSignaturePublicKeyTypeError) Code() Code { return CodeInvalidSignaturePublicKeyType }
func (e InvalidSignaturePublicKeyTypeError) Error() string {
	return fmt.Sprintf("public key %d of type %s cannot sign transitions", e.ID, e.Type)
}

type SignerIdentityNotFoundError struct {
	Identity inter.Identifier
}

func (e SignerIdentityNotFoundError) Code() Code { return CodeSignerIdentityNotFound }
func (e SignerIdentityNotFoundError) Error() string {
	return fmt.Sprintf("signer identity %s not found", e.Identity)
}

// InvalidIdentityKeySignatureError is a failed proof of possession of a new
// key.
type InvalidIdentityKeySignatureError struct {
	ID keys.KeyID
}

func (e InvalidIdentityKeySignatureError) Code() Code { return CodeInvalidIdentityKeySignature }
func (e InvalidIdentityKeySignatureError) Error() string {
	return fmt.Sprintf("new public key %d signature is invalid", e.ID)
}
