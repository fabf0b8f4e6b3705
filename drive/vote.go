package drive

import (
	"github.com/rony4d/go-platform-drive/drive/paths"
	"github.com/rony4d/go-platform-drive/drive/storage"
	"github.com/rony4d/go-platform-drive/inter"
)

// PollID derives the id of a contested index poll.
func PollID(contractID inter.Identifier, documentType, index string, values [][]byte) inter.Identifier {
	parts := make([][]byte, 0, 3+len(values))
	parts = append(parts, contractID.Bytes(), []byte(documentType), []byte(index))
	parts = append(parts, values...)
	return inter.DeriveIdentifier(parts...)
}

// FetchVote reads a masternode's encoded vote on a poll.
func FetchVote(tx *storage.Transaction, pollID inter.Identifier, proTxHash []byte, cost *storage.OperationCost) ([]byte, bool, error) {
	e, ok, err := tx.Get(paths.VotePollPath(pollID), proTxHash, cost)
	if err != nil || !ok {
		return nil, false, err
	}
	return e.Value, true, nil
}

// FetchVotes lists the votes of a poll by voter.
func FetchVotes(tx *storage.Transaction, pollID inter.Identifier) ([]storage.KeyElement, error) {
	_, ok, err := tx.Get(paths.Votes.Path(), pollID.Bytes(), nil)
	if err != nil || !ok {
		return nil, err
	}
	return tx.Children(paths.VotePollPath(pollID), nil)
}
