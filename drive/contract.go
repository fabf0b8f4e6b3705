package drive

import (
	"github.com/pkg/errors"

	"github.com/rony4d/go-platform-drive/drive/paths"
	"github.com/rony4d/go-platform-drive/drive/storage"
	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/transition/contract"
	"github.com/rony4d/go-platform-drive/transition/document"
)

// FetchContract reads a contract through the contract cache. The returned
// contract is shared and must not be mutated.
func (d *Drive) FetchContract(tx *storage.Transaction, id inter.Identifier, cost *storage.OperationCost) (*contract.DataContract, bool, error) {
	if dc, ok := d.Contracts.Get(id); ok {
		return dc, true, nil
	}
	dc, ok, err := FetchContract(tx, id, cost)
	if err != nil || !ok {
		return nil, false, err
	}
	if !d.Contracts.InBlock(id) {
		d.Contracts.PutCommitted(dc)
	}
	return dc, true, nil
}

// FetchContract reads a contract from the store.
func FetchContract(tx *storage.Transaction, id inter.Identifier, cost *storage.OperationCost) (*contract.DataContract, bool, error) {
	e, ok, err := tx.Get(paths.ContractPath(id), paths.ContractKey, cost)
	if err != nil || !ok {
		return nil, false, err
	}
	dc, err := contract.Deserialize(e.Value)
	if err != nil {
		return nil, false, errors.Wrap(ErrCorruptedState, err.Error())
	}
	return dc, true, nil
}

// FetchDocument reads a document by id.
func FetchDocument(tx *storage.Transaction, contractID inter.Identifier, documentType string, id inter.Identifier, cost *storage.OperationCost) (*document.Document, bool, error) {
	e, ok, err := tx.Get(paths.DocumentsPath(contractID, documentType), id.Bytes(), cost)
	if err != nil || !ok {
		return nil, false, err
	}
	doc, err := document.Deserialize(e.Value)
	if err != nil {
		return nil, false, errors.Wrap(ErrCorruptedState, err.Error())
	}
	return doc, true, nil
}

// FetchUniqueIndexEntry returns the document holding a unique index key.
func FetchUniqueIndexEntry(tx *storage.Transaction, contractID inter.Identifier, documentType, index string, indexKey []byte, cost *storage.OperationCost) (inter.Identifier, bool, error) {
	e, ok, err := tx.Get(paths.IndexPath(contractID, documentType, index), indexKey, cost)
	if err != nil || !ok {
		return inter.Identifier{}, false, err
	}
	id, err := inter.BytesToIdentifier(e.Value)
	if err != nil {
		return inter.Identifier{}, false, errors.Wrap(ErrCorruptedState, err.Error())
	}
	return id, true, nil
}

// FetchIndexedDocumentIDs lists the documents under a non-unique index key.
func FetchIndexedDocumentIDs(tx *storage.Transaction, contractID inter.Identifier, documentType, index string, indexKey []byte, cost *storage.OperationCost) ([]inter.Identifier, error) {
	children, err := tx.Children(paths.IndexPath(contractID, documentType, index).Child(indexKey), cost)
	if err != nil {
		return nil, err
	}
	ids := make([]inter.Identifier, 0, len(children))
	for _, c := range children {
		id, err := inter.BytesToIdentifier(c.Key)
		if err != nil {
			return nil, errors.Wrap(ErrCorruptedState, err.Error())
		}
		ids = append(ids, id)
	}
	return ids, nil
}
