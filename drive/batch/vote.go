package batch

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/rony4d/go-platform-drive/drive/paths"
	"github.com/rony4d/go-platform-drive/drive/storage"
	"github.com/rony4d/go-platform-drive/execution/action"
)

func buildVoteV0(b *builder, a action.Action) error {
	v, ok := a.(*action.MasternodeVote)
	if !ok {
		return errors.Errorf("unexpected vote action %T", a)
	}
	choice, err := rlp.EncodeToBytes(v.Choice)
	if err != nil {
		return err
	}
	_, exists, err := b.tx.Get(paths.Votes.Path(), v.PollID.Bytes(), &b.cost)
	if err != nil {
		return err
	}
	var ops []storage.Op
	if !exists {
		ops = append(ops, storage.InsertTreeOp(paths.Votes.Path(), v.PollID.Bytes()))
	}
	ops = append(ops,
		storage.PutItemOp(paths.VotePollPath(v.PollID), v.ProTxHash[:], choice),
		b.identityNonceOp(v.Voter, v.Nonce),
	)
	return b.apply(ops...)
}
