package consensuserr

import (
	"fmt"

	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/inter/keys"
)

const (
	CodeNonceOutOfBounds                   Code = 40001
	CodeIdentityAlreadyExists              Code = 40002
	CodeIdentityDoesNotExist               Code = 40003
	CodeAssetLockAlreadySpent              Code = 40004
	CodeInvalidIdentityRevision            Code = 40005
	CodeMissingIdentityPublicKeyIDs        Code = 40006
	CodeKeyCannotBeDisabled                Code = 40007
	CodeDuplicatedIdentityPublicKeyState   Code = 40008
	CodeDataContractAlreadyPresent         Code = 40009
	CodeDataContractNotFound               Code = 40010
	CodeDataContractIsReadonly             Code = 40011
	CodeInvalidDataContractVersion         Code = 40012
	CodeIncompatibleDataContract           Code = 40013
	CodeDocumentTypeNotFound               Code = 40014
	CodeDocumentAlreadyPresent             Code = 40015
	CodeDocumentNotFound                   Code = 40016
	CodeDocumentOwnerIDMismatch            Code = 40017
	CodeInvalidDocumentRevision            Code = 40018
	CodeDuplicateUniqueIndex               Code = 40019
	CodeDuplicateDocumentTransitionsWithID Code = 40020
	CodeDuplicateUniqueIndexInBatch        Code = 40021
	CodeDocumentTransitionNotAllowed       Code = 40022
	CodeDocumentNotForSale                 Code = 40023
	CodeDocumentIncorrectPurchasePrice     Code = 40024
	CodeInvalidDocumentProperties          Code = 40025
	CodeTokenIsPaused                      Code = 40026
	CodeIdentityTokenAccountFrozen         Code = 40027
	CodeUnauthorizedTokenAction            Code = 40028
	CodeInsufficientTokenBalance           Code = 40029
	CodeTokenMintPastMaxSupply             Code = 40030
	CodeTokenNotFound                      Code = 40031
	CodeVotePollNotAvailable               Code = 40032
	CodeTokenAccountNotFrozen              Code = 40033
)

// NonceOutOfBoundsError reports a nonce that is not the expected next one.
// Contract is zero for per-identity nonces.
type NonceOutOfBoundsError struct {
	Identity inter.Identifier
	Contract inter.Identifier
	Expected uint64
	Provided uint64
}

func (e NonceOutOfBoundsError) Code() Code { return CodeNonceOutOfBounds }
func (e NonceOutOfBoundsError) Error() string {
	if e.Contract.IsZero() {
		return fmt.Sprintf("identity %s nonce %d out of bounds, expected %d", e.Identity, e.Provided, e.Expected)
	}
	return fmt.Sprintf("identity %s nonce %d for contract %s out of bounds, expected %d",
		e.Identity, e.Provided, e.Contract, e.Expected)
}

type IdentityAlreadyExistsError struct {
	Identity inter.Identifier
}

func (e IdentityAlreadyExistsError) Code() Code { return CodeIdentityAlreadyExists }
func (e IdentityAlreadyExistsError) Error() string {
	return fmt.Sprintf("identity %s already exists", e.Identity)
}

type IdentityDoesNotExistError struct {
	Identity inter.Identifier
}

func (e IdentityDoesNotExistError) Code() Code { return CodeIdentityDoesNotExist }
func (e IdentityDoesNotExistError) Error() string {
	return fmt.Sprintf("identity %s does not exist", e.Identity)
}

type AssetLockAlreadySpentError struct {
	Outpoint []byte
}

func (e AssetLockAlreadySpentError) Code() Code { return CodeAssetLockAlreadySpent }
func (e AssetLockAlreadySpentError) Error() string {
	return fmt.Sprintf("asset lock %x was already used", e.Outpoint)
}

type InvalidIdentityRevisionError struct {
	Identity inter.Identifier
	Current  uint64
	Provided uint64
}

func (e InvalidIdentityRevisionError) Code() Code { return CodeInvalidIdentityRevision }
func (e InvalidIdentityRevisionError) Error() string {
	return fmt.Sprintf("identity %s revision %d is not the next after %d", e.Identity, e.Provided, e.Current)
}

type MissingIdentityPublicKeyIDsError struct {
	IDs []keys.KeyID
}

func (e MissingIdentityPublicKeyIDsError) Code() Code { return CodeMissingIdentityPublicKeyIDs }
func (e MissingIdentityPublicKeyIDsError) Error() string {
	return fmt.Sprintf("public keys %v do not exist", e.IDs)
}

type KeyCannotBeDisabledError struct {
	ID keys.KeyID
}

func (e KeyCannotBeDisabledError) Code() Code { return CodeKeyCannotBeDisabled }
func (e KeyCannotBeDisabledError) Error() string {
	return fmt.Sprintf("public key %d cannot be disabled", e.ID)
}

type DuplicatedIdentityPublicKeyStateError struct {
	IDs []keys.KeyID
}

func (e DuplicatedIdentityPublicKeyStateError) Code() Code {
	return CodeDuplicatedIdentityPublicKeyState
}
func (e DuplicatedIdentityPublicKeyStateError) Error() string {
	return fmt.Sprintf("public keys %v are already registered", e.IDs)
}

type DataContractAlreadyPresentError struct {
	Contract inter.Identifier
}

func (e DataContractAlreadyPresentError) Code() Code { return CodeDataContractAlreadyPresent }
func (e DataContractAlreadyPresentError) Error() string {
	return fmt.Sprintf("data contract %s already exists", e.Contract)
}

type DataContractNotFoundError struct {
	Contract inter.Identifier
}

func (e DataContractNotFoundError) Code() Code { return CodeDataContractNotFound }
func (e DataContractNotFoundError) Error() string {
	return fmt.Sprintf("data contract %s not found", e.Contract)
}

type DataContractIsReadonlyError struct {
	Contract inter.Identifier
}

func (e DataContractIsReadonlyError) Code() Code { return CodeDataContractIsReadonly }
func (e DataContractIsReadonlyError) Error() string {
	return fmt.Sprintf("data contract %s is readonly", e.Contract)
}

type InvalidDataContractVersionError struct {
	Expected uint32
	Provided uint32
}

func (e InvalidDataContractVersionError) Code() Code { return CodeInvalidDataContractVersion }
func (e InvalidDataContractVersionError) Error() string {
	return fmt.Sprintf("data contract version %d, expected %d", e.Provided, e.Expected)
}

// IncompatibleDataContractError reports an update that changes an existing
// document type in a way stored documents could not follow.
type IncompatibleDataContractError struct {
	DocumentType string
	Field        string
}

func (e IncompatibleDataContractError) Code() Code { return CodeIncompatibleDataContract }
func (e IncompatibleDataContractError) Error() string {
	return fmt.Sprintf("update changes %s of document type %s", e.Field, e.DocumentType)
}

type DocumentTypeNotFoundError struct {
	Contract     inter.Identifier
	DocumentType string
}

func (e DocumentTypeNotFoundError) Code() Code { return CodeDocumentTypeNotFound }
func (e DocumentTypeNotFoundError) Error() string {
	return fmt.Sprintf("document type %s not found in contract %s", e.DocumentType, e.Contract)
}

type DocumentAlreadyPresentError struct {
	Document inter.Identifier
}

func (e DocumentAlreadyPresentError) Code() Code { return CodeDocumentAlreadyPresent }
func (e DocumentAlreadyPresentError) Error() string {
	return fmt.Sprintf("document %s already exists", e.Document)
}

type DocumentNotFoundError struct {
	Document inter.Identifier
}

func (e DocumentNotFoundError) Code() Code { return CodeDocumentNotFound }
func (e DocumentNotFoundError) Error() string {
	return fmt.Sprintf("document %s not found", e.Document)
}

type DocumentOwnerIDMismatchError struct {
	Document inter.Identifier
	Owner    inter.Identifier
	Signer   inter.Identifier
}

func (e DocumentOwnerIDMismatchError) Code() Code { return CodeDocumentOwnerIDMismatch }
func (e DocumentOwnerIDMismatchError) Error() string {
	return fmt.Sprintf("document %s is owned by %s, not %s", e.Document, e.Owner, e.Signer)
}

type InvalidDocumentRevisionError struct {
	Document inter.Identifier
	Current  uint64
	Provided uint64
}

func (e InvalidDocumentRevisionError) Code() Code { return CodeInvalidDocumentRevision }
func (e InvalidDocumentRevisionError) Error() string {
	return fmt.Sprintf("document %s revision %d is not the next after %d", e.Document, e.Provided, e.Current)
}

// DuplicateUniqueIndexError is a unique index value already taken by a
// stored document.
type DuplicateUniqueIndexError struct {
	Document    inter.Identifier
	Index       string
	Conflicting inter.Identifier
}

func (e DuplicateUniqueIndexError) Code() Code { return CodeDuplicateUniqueIndex }
func (e DuplicateUniqueIndexError) Error() string {
	return fmt.Sprintf("document %s violates unique index %s held by %s", e.Document, e.Index, e.Conflicting)
}

type DuplicateDocumentTransitionsWithIDsError struct {
	Documents []inter.Identifier
}

func (e DuplicateDocumentTransitionsWithIDsError) Code() Code {
	return CodeDuplicateDocumentTransitionsWithID
}
func (e DuplicateDocumentTransitionsWithIDsError) Error() string {
	return fmt.Sprintf("batch touches documents %v more than once", e.Documents)
}

// DuplicateUniqueIndexInBatchError is two transitions of one batch claiming
// the same unique index value.
type DuplicateUniqueIndexInBatchError struct {
	Index     string
	Documents []inter.Identifier
}

func (e DuplicateUniqueIndexInBatchError) Code() Code { return CodeDuplicateUniqueIndexInBatch }
func (e DuplicateUniqueIndexInBatchError) Error() string {
	return fmt.Sprintf("documents %v claim the same value of unique index %s", e.Documents, e.Index)
}

// DocumentTransitionNotAllowedError reports an operation the document type
// configuration forbids. Action is the document transition action code.
type DocumentTransitionNotAllowedError struct {
	DocumentType string
	Action       uint8
}

func (e DocumentTransitionNotAllowedError) Code() Code { return CodeDocumentTransitionNotAllowed }
func (e DocumentTransitionNotAllowedError) Error() string {
	return fmt.Sprintf("action %d is not allowed on document type %s", e.Action, e.DocumentType)
}

type DocumentNotForSaleError struct {
	Document inter.Identifier
}

func (e DocumentNotForSaleError) Code() Code { return CodeDocumentNotForSale }
func (e DocumentNotForSaleError) Error() string {
	return fmt.Sprintf("document %s is not for sale", e.Document)
}

type DocumentIncorrectPurchasePriceError struct {
	Document inter.Identifier
	Price    inter.Credits
	Offered  inter.Credits
}

func (e DocumentIncorrectPurchasePriceError) Code() Code { return CodeDocumentIncorrectPurchasePrice }
func (e DocumentIncorrectPurchasePriceError) Error() string {
	return fmt.Sprintf("document %s costs %d, offered %d", e.Document, e.Price, e.Offered)
}

type InvalidDocumentPropertiesError struct {
	DocumentType string
	Property     string
}

func (e InvalidDocumentPropertiesError) Code() Code { return CodeInvalidDocumentProperties }
func (e InvalidDocumentPropertiesError) Error() string {
	return fmt.Sprintf("property %s is invalid for document type %s", e.Property, e.DocumentType)
}

type TokenIsPausedError struct {
	Token inter.Identifier
}

func (e TokenIsPausedError) Code() Code { return CodeTokenIsPaused }
func (e TokenIsPausedError) Error() string {
	return fmt.Sprintf("token %s is paused", e.Token)
}

type IdentityTokenAccountFrozenError struct {
	Token    inter.Identifier
	Identity inter.Identifier
}

func (e IdentityTokenAccountFrozenError) Code() Code { return CodeIdentityTokenAccountFrozen }
func (e IdentityTokenAccountFrozenError) Error() string {
	return fmt.Sprintf("identity %s account of token %s is frozen", e.Identity, e.Token)
}

type UnauthorizedTokenActionError struct {
	Token    inter.Identifier
	Identity inter.Identifier
	Action   uint8
}

func (e UnauthorizedTokenActionError) Code() Code { return CodeUnauthorizedTokenAction }
func (e UnauthorizedTokenActionError) Error() string {
	return fmt.Sprintf("identity %s may not perform action %d on token %s", e.Identity, e.Action, e.Token)
}

type InsufficientTokenBalanceError struct {
	Token    inter.Identifier
	Identity inter.Identifier
	Balance  uint64
	Required uint64
}

func (e InsufficientTokenBalanceError) Code() Code { return CodeInsufficientTokenBalance }
func (e InsufficientTokenBalanceError) Error() string {
	return fmt.Sprintf("identity %s holds %d of token %s, required %d", e.Identity, e.Balance, e.Token, e.Required)
}

type TokenMintPastMaxSupplyError struct {
	Token     inter.Identifier
	Supply    uint64
	Amount    uint64
	MaxSupply uint64
}

func (e TokenMintPastMaxSupplyError) Code() Code { return CodeTokenMintPastMaxSupply }
func (e TokenMintPastMaxSupplyError) Error() string {
	return fmt.Sprintf("minting %d of token %s on supply %d exceeds max supply %d", e.Amount, e.Token, e.Supply, e.MaxSupply)
}

type TokenNotFoundError struct {
	Contract inter.Identifier
	Position uint16
}

func (e TokenNotFoundError) Code() Code { return CodeTokenNotFound }
func (e TokenNotFoundError) Error() string {
	return fmt.Sprintf("contract %s has no token at position %d", e.Contract, e.Position)
}

type VotePollNotAvailableError struct {
	Contract     inter.Identifier
	DocumentType string
	Index        string
}

func (e VotePollNotAvailableError) Code() Code { return CodeVotePollNotAvailable }
func (e VotePollNotAvailableError) Error() string {
	return fmt.Sprintf("index %s of %s in contract %s cannot be voted on", e.Index, e.DocumentType, e.Contract)
}

type TokenAccountNotFrozenError struct {
	Token    inter.Identifier
	Identity inter.Identifier
}

func (e TokenAccountNotFrozenError) Code() Code { return CodeTokenAccountNotFrozen }
func (e TokenAccountNotFrozenError) Error() string {
	return fmt.Sprintf("identity %s account of token %s is not frozen", e.Identity, e.Token)
}
