package drive

import (
	"github.com/rony4d/go-platform-drive/drive/paths"
	"github.com/rony4d/go-platform-drive/drive/storage"
	"github.com/rony4d/go-platform-drive/inter"
)

// TokenState is the contract-independent state of a token.
type TokenState struct {
	Paused      bool
	TotalSupply uint64
	// MaxSupply is zero for unlimited tokens.
	MaxSupply uint64
}

// FetchTokenState reads a token. ok is false before the token is created.
func FetchTokenState(tx *storage.Transaction, tokenID inter.Identifier, cost *storage.OperationCost) (TokenState, bool, error) {
	var st TokenState
	path := paths.TokenPath(tokenID)
	supply, ok, err := getUint64(tx, path, paths.TokenSupplyKey, cost)
	if err != nil || !ok {
		return st, false, err
	}
	st.TotalSupply = supply
	if st.MaxSupply, _, err = getUint64(tx, path, paths.TokenMaxKey, cost); err != nil {
		return st, false, err
	}
	paused, _, err := getUint64(tx, path, paths.TokenPausedKey, cost)
	if err != nil {
		return st, false, err
	}
	st.Paused = paused != 0
	return st, true, nil
}

// FetchTokenBalance reads a token balance. Missing accounts hold zero.
func FetchTokenBalance(tx *storage.Transaction, tokenID, identity inter.Identifier, cost *storage.OperationCost) (uint64, bool, error) {
	return getUint64(tx, paths.TokenBalancesPath(tokenID), identity.Bytes(), cost)
}

// IsTokenAccountFrozen reports whether an identity's token account is frozen.
func IsTokenAccountFrozen(tx *storage.Transaction, tokenID, identity inter.Identifier, cost *storage.OperationCost) (bool, error) {
	_, ok, err := tx.Get(paths.TokenFrozenPath(tokenID), identity.Bytes(), cost)
	return ok, err
}
