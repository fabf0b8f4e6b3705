package batch

import (
	"bytes"

	"github.com/pkg/errors"

	"github.com/rony4d/go-platform-drive/drive/paths"
	"github.com/rony4d/go-platform-drive/drive/storage"
	"github.com/rony4d/go-platform-drive/execution/action"
	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/transition"
	"github.com/rony4d/go-platform-drive/transition/contract"
	"github.com/rony4d/go-platform-drive/transition/document"
)

func buildBatchV0(b *builder, a action.Action) error {
	batch, ok := a.(*action.Batch)
	if !ok {
		return errors.Errorf("unexpected batch action %T", a)
	}
	for i, step := range batch.Steps {
		var err error
		switch s := step.(type) {
		case *action.DocumentStep:
			err = b.documentStep(batch.Owner, s)
		case *action.TokenStep:
			var build func(*builder, inter.Identifier, *action.TokenStep) error
			if build, err = tokenOps.Resolve(b.pv); err == nil {
				err = build(b, batch.Owner, s)
			}
		default:
			err = errors.Errorf("unexpected step %T", step)
		}
		if err != nil {
			return errors.Wrapf(err, "batch step %d", i)
		}
	}
	return nil
}

func (b *builder) documentStep(owner inter.Identifier, s *action.DocumentStep) error {
	docs := paths.DocumentsPath(s.ContractID, s.DocumentType.Name)
	ops := []storage.Op{b.identityContractNonceOp(owner, s.ContractID, s.IdentityContractNonce)}

	switch s.Kind {
	case transition.DocumentCreateAction:
		raw, err := s.Next.Serialize()
		if err != nil {
			return err
		}
		ops = append(ops, storage.InsertItemOp(docs, s.Next.ID.Bytes(), raw))
	case transition.DocumentDeleteAction:
		ops = append(ops, storage.DeleteOp(docs, s.Previous.ID.Bytes()))
	default:
		raw, err := s.Next.Serialize()
		if err != nil {
			return err
		}
		ops = append(ops, storage.ReplaceItemOp(docs, s.Next.ID.Bytes(), raw))
	}
	if err := b.apply(ops...); err != nil {
		return err
	}
	if err := b.updateIndices(s); err != nil {
		return err
	}
	if p := s.Payment; p != nil {
		if err := b.removeBalance(p.From, p.Amount); err != nil {
			return err
		}
		return b.addBalance(p.To, p.Amount)
	}
	return nil
}

// updateIndices removes the index entries of the previous document and adds
// those of the next one, skipping indices whose key did not change.
func (b *builder) updateIndices(s *action.DocumentStep) error {
	for i := range s.DocumentType.Indices {
		idx := &s.DocumentType.Indices[i]
		oldKey, hadOld := indexKey(s.Previous, idx)
		newKey, hasNew := indexKey(s.Next, idx)
		if hadOld && hasNew && bytes.Equal(oldKey, newKey) {
			continue
		}
		indexPath := paths.IndexPath(s.ContractID, s.DocumentType.Name, idx.Name)
		if hadOld {
			op := storage.DeleteOp(indexPath, oldKey)
			if !idx.Unique {
				op = storage.DeleteOp(indexPath.Child(oldKey), s.Previous.ID.Bytes())
			}
			if err := b.apply(op); err != nil {
				return errors.Wrapf(err, "index %s", idx.Name)
			}
		}
		if !hasNew {
			continue
		}
		if idx.Unique {
			if err := b.apply(storage.InsertItemOp(indexPath, newKey, s.Next.ID.Bytes())); err != nil {
				return errors.Wrapf(err, "index %s", idx.Name)
			}
			continue
		}
		_, exists, err := b.tx.Get(indexPath, newKey, &b.cost)
		if err != nil {
			return err
		}
		var ops []storage.Op
		if !exists {
			ops = append(ops, storage.InsertTreeOp(indexPath, newKey))
		}
		ops = append(ops, storage.InsertItemOp(indexPath.Child(newKey), s.Next.ID.Bytes(), nil))
		if err := b.apply(ops...); err != nil {
			return errors.Wrapf(err, "index %s", idx.Name)
		}
	}
	return nil
}

func indexKey(doc *document.Document, idx *contract.Index) ([]byte, bool) {
	if doc == nil {
		return nil, false
	}
	return doc.IndexedKey(idx.Properties)
}
