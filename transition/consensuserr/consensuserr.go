// Package consensuserr is the flat taxonomy of client-caused errors.
//
// Every kind is a plain struct holding the diagnostic fields of the rule it
// reports, never a reference back to the transition. Kinds are identified by
// a stable numeric Code whose range gives the Class. Errors travel in the
// block receipt as (code, RLP payload).
package consensuserr

import (
	"fmt"
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

// Code identifies an error kind. Codes are part of the receipt format and
// never change meaning.
type Code uint32

// Class groups codes by the pipeline stage that produces them.
type Class uint8

const (
	ClassBasic Class = iota + 1
	ClassSignature
	ClassFee
	ClassState
)

func (c Class) String() string {
	switch c {
	case ClassBasic:
		return "basic"
	case ClassSignature:
		return "signature"
	case ClassFee:
		return "fee"
	case ClassState:
		return "state"
	}
	return "unknown"
}

// ConsensusError is implemented by every error kind.
type ConsensusError interface {
	error
	Code() Code
}

// ClassOf returns the class of a code.
func ClassOf(code Code) Class {
	switch {
	case code >= 10000 && code < 20000:
		return ClassBasic
	case code >= 20000 && code < 30000:
		return ClassSignature
	case code >= 30000 && code < 40000:
		return ClassFee
	case code >= 40000 && code < 50000:
		return ClassState
	}
	return 0
}

// ErrUnknownCode is returned when decoding a payload of an unregistered code.
var ErrUnknownCode = errors.New("unknown consensus error code")

var kinds = map[Code]reflect.Type{}

func register(errs ...ConsensusError) {
	for _, e := range errs {
		if _, ok := kinds[e.Code()]; ok {
			panic(fmt.Sprintf("consensus error code %d registered twice", e.Code()))
		}
		kinds[e.Code()] = reflect.TypeOf(e)
	}
}

// Encode serializes the structured payload of an error.
func Encode(e ConsensusError) ([]byte, error) {
	return rlp.EncodeToBytes(e)
}

// Decode rebuilds an error from its code and payload.
func Decode(code Code, payload []byte) (ConsensusError, error) {
	typ, ok := kinds[code]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownCode, "code %d", code)
	}
	ptr := reflect.New(typ)
	if err := rlp.DecodeBytes(payload, ptr.Interface()); err != nil {
		return nil, errors.Wrapf(err, "decode consensus error %d", code)
	}
	return ptr.Elem().Interface().(ConsensusError), nil
}

func init() {
	register(
		UnsupportedProtocolVersionError{},
		MaxSizeExceededError{},
		DuplicatedIdentityPublicKeyIDError{},
		DuplicatedIdentityPublicKeyError{},
		InvalidIdentityPublicKeyDataError{},
		MissingMasterPublicKeyError{},
		InvalidKeyCountError{},
		InvalidAmountError{},
		CreditTransferToSelfError{},
		InvalidWithdrawalOutputScriptError{},
		NotFibonacciCoreFeeError{},
		InvalidDataContractIDError{},
		EmptyDataContractError{},
		UndefinedIndexPropertyError{},
		InvalidBatchSizeError{},
		InvalidDocumentIDError{},
		InvalidEntropyError{},
		TokenTransitionsNotSupportedError{},
		InvalidVotePollError{},
		MasterKeyAdditionError{},
		InvalidAssetLockProofError{},
		TooManyDocumentTypesError{},
		DuplicatedKeyInUpdateError{},
		SerializedObjectParsingError{},

		InvalidStateTransitionSignatureError{},
		MissingPublicKeyError{},
		PublicKeyIsDisabledError{},
		InvalidSignaturePublicKeySecurityLevelError{},
		InvalidSignaturePublicKeyPurposeError{},
		InvalidSignaturePublicKeyTypeError{},
		SignerIdentityNotFoundError{},
		InvalidIdentityKeySignatureError{},

		BalanceIsNotEnoughError{},

		NonceOutOfBoundsError{},
		IdentityAlreadyExistsError{},
		IdentityDoesNotExistError{},
		AssetLockAlreadySpentError{},
		InvalidIdentityRevisionError{},
		MissingIdentityPublicKeyIDsError{},
		KeyCannotBeDisabledError{},
		DuplicatedIdentityPublicKeyStateError{},
		DataContractAlreadyPresentError{},
		DataContractNotFoundError{},
		DataContractIsReadonlyError{},
		InvalidDataContractVersionError{},
		IncompatibleDataContractError{},
		DocumentTypeNotFoundError{},
		DocumentAlreadyPresentError{},
		DocumentNotFoundError{},
		DocumentOwnerIDMismatchError{},
		InvalidDocumentRevisionError{},
		DuplicateUniqueIndexError{},
		DuplicateDocumentTransitionsWithIDsError{},
		DuplicateUniqueIndexInBatchError{},
		DocumentTransitionNotAllowedError{},
		DocumentNotForSaleError{},
		DocumentIncorrectPurchasePriceError{},
		InvalidDocumentPropertiesError{},
		TokenIsPausedError{},
		IdentityTokenAccountFrozenError{},
		UnauthorizedTokenActionError{},
		InsufficientTokenBalanceError{},
		TokenMintPastMaxSupplyError{},
		TokenNotFoundError{},
		VotePollNotAvailableError{},
		TokenAccountNotFrozenError{},
	)
}
