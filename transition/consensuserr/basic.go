package consensuserr

import (
	"fmt"

	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/inter/keys"
)

const (
	CodeUnsupportedProtocolVersion    Code = 10001
	CodeMaxSizeExceeded               Code = 10002
	CodeDuplicatedIdentityPublicKeyID Code = 10003
	CodeDuplicatedIdentityPublicKey   Code = 10004
	CodeInvalidIdentityPublicKeyData  Code = 10005
	CodeMissingMasterPublicKey        Code = 10006
	CodeInvalidKeyCount               Code = 10007
	CodeInvalidAmount                 Code = 10008
	CodeCreditTransferToSelf          Code = 10009
	CodeInvalidWithdrawalOutputScript Code = 10010
	CodeNotFibonacciCoreFee           Code = 10011
	CodeInvalidDataContractID         Code = 10012
	CodeEmptyDataContract             Code = 10013
	CodeUndefinedIndexProperty        Code = 10014
	CodeInvalidBatchSize              Code = 10015
	CodeInvalidDocumentID             Code = 10016
	CodeInvalidEntropy                Code = 10017
	CodeTokenTransitionsNotSupported  Code = 10018
	CodeInvalidVotePoll               Code = 10019
	CodeMasterKeyAddition             Code = 10020
	CodeInvalidAssetLockProof         Code = 10021
	CodeTooManyDocumentTypes          Code = 10022
	CodeDuplicatedKeyInUpdate         Code = 10023
	CodeSerializedObjectParsing       Code = 10024
)

type UnsupportedProtocolVersionError struct {
	Received uint32
	Min      uint32
	Max      uint32
}

func (e UnsupportedProtocolVersionError) Code() Code { return CodeUnsupportedProtocolVersion }
func (e UnsupportedProtocolVersionError) Error() string {
	return fmt.Sprintf("protocol version %d is not supported, expected %d..%d", e.Received, e.Min, e.Max)
}

type MaxSizeExceededError struct {
	Size uint64
	Max  uint64
}

func (e MaxSizeExceededError) Code() Code { return CodeMaxSizeExceeded }
func (e MaxSizeExceededError) Error() string {
	return fmt.Sprintf("state transition is %d bytes, max is %d", e.Size, e.Max)
}

// DuplicatedIdentityPublicKeyIDError lists every duplicated key id at once.
type DuplicatedIdentityPublicKeyIDError struct {
	IDs []keys.KeyID
}

func (e DuplicatedIdentityPublicKeyIDError) Code() Code { return CodeDuplicatedIdentityPublicKeyID }
func (e DuplicatedIdentityPublicKeyIDError) Error() string {
	return fmt.Sprintf("duplicated public key ids %v", e.IDs)
}

type DuplicatedIdentityPublicKeyError struct {
	IDs []keys.KeyID
}

func (e DuplicatedIdentityPublicKeyError) Code() Code { return CodeDuplicatedIdentityPublicKey }
func (e DuplicatedIdentityPublicKeyError) Error() string {
	return fmt.Sprintf("duplicated public keys %v", e.IDs)
}

type InvalidIdentityPublicKeyDataError struct {
	ID   keys.KeyID
	Type keys.KeyType
	Size uint32
}

func (e InvalidIdentityPublicKeyDataError) Code() Code { return CodeInvalidIdentityPublicKeyData }
func (e InvalidIdentityPublicKeyDataError) Error() string {
	return fmt.Sprintf("public key %d of type %s has invalid data of %d bytes", e.ID, e.Type, e.Size)
}

type MissingMasterPublicKeyError struct{}

func (e MissingMasterPublicKeyError) Code() Code { return CodeMissingMasterPublicKey }
func (e MissingMasterPublicKeyError) Error() string {
	return "identity must have a master authentication key"
}

type InvalidKeyCountError struct {
	Count uint32
	Max   uint32
}

func (e InvalidKeyCountError) Code() Code { return CodeInvalidKeyCount }
func (e InvalidKeyCountError) Error() string {
	return fmt.Sprintf("identity has %d keys, allowed 1..%d", e.Count, e.Max)
}

type InvalidAmountError struct {
	Amount uint64
	Min    uint64
}

func (e InvalidAmountError) Code() Code { return CodeInvalidAmount }
func (e InvalidAmountError) Error() string {
	return fmt.Sprintf("amount %d is below the minimum %d", e.Amount, e.Min)
}

type CreditTransferToSelfError struct {
	Identity inter.Identifier
}

func (e CreditTransferToSelfError) Code() Code { return CodeCreditTransferToSelf }
func (e CreditTransferToSelfError) Error() string {
	return fmt.Sprintf("identity %s cannot transfer credits to itself", e.Identity)
}

type InvalidWithdrawalOutputScriptError struct {
	Length uint32
}

func (e InvalidWithdrawalOutputScriptError) Code() Code { return CodeInvalidWithdrawalOutputScript }
func (e InvalidWithdrawalOutputScriptError) Error() string {
	return fmt.Sprintf("withdrawal output script of %d bytes is neither P2PKH nor P2SH", e.Length)
}

type NotFibonacciCoreFeeError struct {
	FeePerByte uint32
}

func (e NotFibonacciCoreFeeError) Code() Code { return CodeNotFibonacciCoreFee }
func (e NotFibonacciCoreFeeError) Error() string {
	return fmt.Sprintf("core fee per byte %d is not a fibonacci number", e.FeePerByte)
}

type InvalidDataContractIDError struct {
	Expected inter.Identifier
	Got      inter.Identifier
}

func (e InvalidDataContractIDError) Code() Code { return CodeInvalidDataContractID }
func (e InvalidDataContractIDError) Error() string {
	return fmt.Sprintf("data contract id %s does not match derived id %s", e.Got, e.Expected)
}

type EmptyDataContractError struct{}

func (e EmptyDataContractError) Code() Code { return CodeEmptyDataContract }
func (e EmptyDataContractError) Error() string {
	return "data contract defines no document types"
}

type UndefinedIndexPropertyError struct {
	DocumentType string
	Index        string
	Property     string
}

func (e UndefinedIndexPropertyError) Code() Code { return CodeUndefinedIndexProperty }
func (e UndefinedIndexPropertyError) Error() string {
	return fmt.Sprintf("index %s of %s uses undefined property %s", e.Index, e.DocumentType, e.Property)
}

type InvalidBatchSizeError struct {
	Count uint32
	Max   uint32
}

func (e InvalidBatchSizeError) Code() Code { return CodeInvalidBatchSize }
func (e InvalidBatchSizeError) Error() string {
	return fmt.Sprintf("batch has %d transitions, allowed 1..%d", e.Count, e.Max)
}

type InvalidDocumentIDError struct {
	Expected inter.Identifier
	Got      inter.Identifier
}

func (e InvalidDocumentIDError) Code() Code { return CodeInvalidDocumentID }
func (e InvalidDocumentIDError) Error() string {
	return fmt.Sprintf("document id %s does not match derived id %s", e.Got, e.Expected)
}

type InvalidEntropyError struct {
	Length uint32
}

func (e InvalidEntropyError) Code() Code { return CodeInvalidEntropy }
func (e InvalidEntropyError) Error() string {
	return fmt.Sprintf("document entropy must be 32 bytes, got %d", e.Length)
}

type TokenTransitionsNotSupportedError struct{}

func (e TokenTransitionsNotSupportedError) Code() Code { return CodeTokenTransitionsNotSupported }
func (e TokenTransitionsNotSupportedError) Error() string {
	return "tokens are not supported by the active protocol version"
}

type InvalidVotePollError struct {
	Field string
}

func (e InvalidVotePollError) Code() Code { return CodeInvalidVotePoll }
func (e InvalidVotePollError) Error() string {
	return fmt.Sprintf("vote poll field %s is missing", e.Field)
}

type MasterKeyAdditionError struct {
	ID keys.KeyID
}

func (e MasterKeyAdditionError) Code() Code { return CodeMasterKeyAddition }
func (e MasterKeyAdditionError) Error() string {
	return fmt.Sprintf("key %d: master keys cannot be added by an update", e.ID)
}

type InvalidAssetLockProofError struct {
	Outpoint []byte
}

func (e InvalidAssetLockProofError) Code() Code { return CodeInvalidAssetLockProof }
func (e InvalidAssetLockProofError) Error() string {
	return fmt.Sprintf("asset lock proof %x is malformed", e.Outpoint)
}

type TooManyDocumentTypesError struct {
	Count uint32
	Max   uint32
}

func (e TooManyDocumentTypesError) Code() Code { return CodeTooManyDocumentTypes }
func (e TooManyDocumentTypesError) Error() string {
	return fmt.Sprintf("data contract defines %d document types, max is %d", e.Count, e.Max)
}

// DuplicatedKeyInUpdateError is reported when an update adds and disables
// the same key id, or repeats an id.
type DuplicatedKeyInUpdateError struct {
	IDs []keys.KeyID
}

func (e DuplicatedKeyInUpdateError) Code() Code { return CodeDuplicatedKeyInUpdate }
func (e DuplicatedKeyInUpdateError) Error() string {
	return fmt.Sprintf("key ids %v appear more than once in the update", e.IDs)
}

// SerializedObjectParsingError is a transition that could not be decoded.
type SerializedObjectParsingError struct {
	Reason string
}

func (e SerializedObjectParsingError) Code() Code { return CodeSerializedObjectParsing }
func (e SerializedObjectParsingError) Error() string {
	return "state transition could not be parsed: " + e.Reason
}
