package validation

import (
	"github.com/rony4d/go-platform-drive/drive"
	"github.com/rony4d/go-platform-drive/drive/fees"
	"github.com/rony4d/go-platform-drive/drive/storage"
	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/inter/keys"
	"github.com/rony4d/go-platform-drive/transition"
	"github.com/rony4d/go-platform-drive/transition/consensuserr"
	"github.com/rony4d/go-platform-drive/transition/contract"
	"github.com/rony4d/go-platform-drive/transition/document"
)

// batchStateV0 validates a batch in three passes: referenced contracts and
// types, duplicates inside the batch, then every step against the store in
// batch order.
func batchStateV0(v *Validator, tx *storage.Transaction, ctx *Context, st transition.StateTransition) ([]consensuserr.ConsensusError, error) {
	t := st.(*transition.Batch)

	for _, sub := range t.Transitions {
		c, exists, err := v.fetchContract(tx, ctx, sub.Contract())
		if err != nil {
			return nil, err
		}
		if !exists {
			return one(consensuserr.DataContractNotFoundError{Contract: sub.Contract()}), nil
		}
		switch s := sub.(type) {
		case transition.DocumentTransition:
			if _, ok := c.DocumentType(s.Document().DocumentType); !ok {
				return one(consensuserr.DocumentTypeNotFoundError{Contract: c.ID, DocumentType: s.Document().DocumentType}), nil
			}
		case transition.TokenTransition:
			if _, ok := c.Token(s.Token().TokenPosition); !ok {
				return one(consensuserr.TokenNotFoundError{Contract: c.ID, Position: s.Token().TokenPosition}), nil
			}
		}
	}

	if errs := batchDuplicates(ctx, t); len(errs) > 0 {
		return errs, nil
	}

	nonces := make(map[inter.Identifier]uint64)
	tokens := newTokenView(tx, ctx)
	for _, sub := range t.Transitions {
		if e, err := checkContractNonce(tx, ctx, t.OwnerID, sub, nonces); e != nil || err != nil {
			return one(e), err
		}
		c := ctx.Contracts[sub.Contract()]

		var (
			e   consensuserr.ConsensusError
			err error
		)
		switch s := sub.(type) {
		case transition.DocumentTransition:
			e, err = documentState(tx, ctx, t.OwnerID, c, s)
		case transition.TokenTransition:
			e, err = tokens.check(t.OwnerID, c, s)
		}
		if e != nil || err != nil {
			return one(e), err
		}
	}
	return nil, nil
}

// checkContractNonce requires the nonces of one contract to continue the
// stored nonce without gaps across the batch.
func checkContractNonce(tx *storage.Transaction, ctx *Context, owner inter.Identifier, sub transition.BatchedTransition, last map[inter.Identifier]uint64) (consensuserr.ConsensusError, error) {
	contractID := sub.Contract()
	prev, seen := last[contractID]
	if !seen {
		stored, err := fetchContractNonce(tx, ctx, owner, contractID)
		if err != nil {
			return nil, err
		}
		prev = stored
	}
	if sub.Nonce() != prev+1 {
		return consensuserr.NonceOutOfBoundsError{Identity: owner, Contract: contractID, Expected: prev + 1, Provided: sub.Nonce()}, nil
	}
	last[contractID] = sub.Nonce()
	return nil, nil
}

// batchDuplicates finds documents touched twice and unique index values
// claimed twice within one batch.
func batchDuplicates(ctx *Context, t *transition.Batch) []consensuserr.ConsensusError {
	var errs []consensuserr.ConsensusError

	var dupIDs []inter.Identifier
	seen := make(map[inter.Identifier]bool)
	for _, sub := range t.Transitions {
		d, ok := sub.(transition.DocumentTransition)
		if !ok {
			continue
		}
		id := d.Document().ID
		if seen[id] {
			dupIDs = append(dupIDs, id)
		}
		seen[id] = true
	}
	if len(dupIDs) > 0 {
		errs = append(errs, consensuserr.DuplicateDocumentTransitionsWithIDsError{Documents: dupIDs})
	}

	claimed := make(map[string]inter.Identifier)
	for _, sub := range t.Transitions {
		var props []document.Property
		switch s := sub.(type) {
		case *transition.DocumentCreate:
			props = s.Properties
		case *transition.DocumentReplace:
			props = s.Properties
		default:
			continue
		}
		base := sub.(transition.DocumentTransition).Document()
		dt, _ := ctx.Contracts[base.ContractID].DocumentType(base.DocumentType)
		candidate := new(document.Document)
		candidate.SetProperties(props)
		for _, idx := range dt.UniqueIndices() {
			key, ok := candidate.IndexedKey(idx.Properties)
			if !ok {
				continue
			}
			slot := string(base.ContractID[:]) + "/" + dt.Name + "/" + idx.Name + "/" + string(key)
			if first, taken := claimed[slot]; taken {
				errs = append(errs, consensuserr.DuplicateUniqueIndexInBatchError{Index: idx.Name, Documents: []inter.Identifier{first, base.ID}})
				continue
			}
			claimed[slot] = base.ID
		}
	}
	return errs
}

func documentState(tx *storage.Transaction, ctx *Context, owner inter.Identifier, c *contract.DataContract, s transition.DocumentTransition) (consensuserr.ConsensusError, error) {
	base := s.Document()
	dt, _ := c.DocumentType(base.DocumentType)

	if required := dt.RequiredSecurityLevel(); ctx.SignerKey.SecurityLevel > required {
		var allowed []keys.SecurityLevel
		for l := keys.Critical; l <= required; l++ {
			allowed = append(allowed, l)
		}
		return consensuserr.InvalidSignaturePublicKeySecurityLevelError{ID: ctx.SignerKey.ID, Level: ctx.SignerKey.SecurityLevel, Allowed: allowed}, nil
	}

	notAllowed := consensuserr.DocumentTransitionNotAllowedError{DocumentType: dt.Name, Action: uint8(s.Action())}
	switch s.Action() {
	case transition.DocumentReplaceAction:
		if c.Config.Readonly {
			return consensuserr.DataContractIsReadonlyError{Contract: c.ID}, nil
		}
		if !dt.Mutable {
			return notAllowed, nil
		}
	case transition.DocumentDeleteAction:
		if c.Config.Readonly {
			return consensuserr.DataContractIsReadonlyError{Contract: c.ID}, nil
		}
		if !dt.CanBeDeleted || dt.KeepsHistory || c.Config.KeepsHistory {
			return notAllowed, nil
		}
	case transition.DocumentTransferAction:
		if !dt.Transferable {
			return notAllowed, nil
		}
	case transition.DocumentUpdatePriceAction, transition.DocumentPurchaseAction:
		if !dt.Tradeable {
			return notAllowed, nil
		}
	}

	ctx.Log.Add(fees.FetchDocument, 1)
	prev, exists, err := drive.FetchDocument(tx, c.ID, dt.Name, base.ID, &ctx.Cost)
	if err != nil {
		return nil, err
	}

	if create, ok := s.(*transition.DocumentCreate); ok {
		if exists {
			return consensuserr.DocumentAlreadyPresentError{Document: base.ID}, nil
		}
		if create.Price > 0 && !dt.Tradeable {
			return notAllowed, nil
		}
		if e := validateProperties(ctx, dt, create.Properties); e != nil {
			return e, nil
		}
		next := &document.Document{
			ID:          base.ID,
			OwnerID:     owner,
			Revision:    1,
			CreatedAtMs: ctx.Block.TimeMs,
			UpdatedAtMs: ctx.Block.TimeMs,
			Price:       create.Price,
		}
		next.SetProperties(create.Properties)
		ctx.Next[base.ID] = next
		return uniqueIndexConflict(tx, ctx, c.ID, dt, next)
	}

	if !exists {
		return consensuserr.DocumentNotFoundError{Document: base.ID}, nil
	}
	ctx.Documents[base.ID] = prev

	if purchase, ok := s.(*transition.DocumentPurchase); ok {
		if prev.Price == 0 {
			return consensuserr.DocumentNotForSaleError{Document: base.ID}, nil
		}
		if purchase.Price != prev.Price {
			return consensuserr.DocumentIncorrectPurchasePriceError{Document: base.ID, Price: prev.Price, Offered: purchase.Price}, nil
		}
	} else if prev.OwnerID != owner {
		return consensuserr.DocumentOwnerIDMismatchError{Document: base.ID, Owner: prev.OwnerID, Signer: owner}, nil
	}

	next := prev.Copy()
	next.UpdatedAtMs = ctx.Block.TimeMs
	var revision uint64
	switch s := s.(type) {
	case *transition.DocumentDelete:
		return nil, nil
	case *transition.DocumentReplace:
		if e := validateProperties(ctx, dt, s.Properties); e != nil {
			return e, nil
		}
		revision = s.Revision
		next.SetProperties(s.Properties)
	case *transition.DocumentTransfer:
		exists, err := drive.IdentityExists(tx, s.Recipient, &ctx.Cost)
		if err != nil {
			return nil, err
		}
		if !exists {
			return consensuserr.IdentityDoesNotExistError{Identity: s.Recipient}, nil
		}
		revision = s.Revision
		next.OwnerID = s.Recipient
		next.Price = 0
	case *transition.DocumentUpdatePrice:
		revision = s.Revision
		next.Price = s.Price
	case *transition.DocumentPurchase:
		revision = s.Revision
		next.OwnerID = owner
		next.Price = 0
		ctx.Required = ctx.Required.Add(s.Price)
	}
	if revision != prev.Revision+1 {
		return consensuserr.InvalidDocumentRevisionError{Document: base.ID, Current: prev.Revision, Provided: revision}, nil
	}
	next.Revision = revision
	ctx.Next[base.ID] = next
	return uniqueIndexConflict(tx, ctx, c.ID, dt, next)
}

func validateProperties(ctx *Context, dt *contract.DocumentType, props []document.Property) consensuserr.ConsensusError {
	ctx.Log.Add(fees.ValidateDocumentSchema, 1)
	if bad, ok := dt.ValidateProperties(props); !ok {
		return consensuserr.InvalidDocumentPropertiesError{DocumentType: dt.Name, Property: bad}
	}
	return nil
}

// uniqueIndexConflict rejects a document whose unique index values are held
// by another stored document.
func uniqueIndexConflict(tx *storage.Transaction, ctx *Context, contractID inter.Identifier, dt *contract.DocumentType, doc *document.Document) (consensuserr.ConsensusError, error) {
	for _, idx := range dt.UniqueIndices() {
		key, ok := doc.IndexedKey(idx.Properties)
		if !ok {
			continue
		}
		holder, found, err := drive.FetchUniqueIndexEntry(tx, contractID, dt.Name, idx.Name, key, &ctx.Cost)
		if err != nil {
			return nil, err
		}
		if found && holder != doc.ID {
			return consensuserr.DuplicateUniqueIndexError{Document: doc.ID, Index: idx.Name, Conflicting: holder}, nil
		}
	}
	return nil, nil
}
