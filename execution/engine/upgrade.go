package engine

import (
	"sort"

	"github.com/rony4d/go-platform-drive/drive"
	"github.com/rony4d/go-platform-drive/drive/storage"
	"github.com/rony4d/go-platform-drive/execution/pools"
	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/platform"
)

type upgradeFunc func(tx *storage.Transaction, rules platform.Rules, ended inter.Epoch, current uint32) (uint32, error)

// protocolUpgradeV0 picks the newest supported version proposed by at least
// the threshold share of the ended epoch's blocks. It returns current when
// no version qualifies.
func protocolUpgradeV0(tx *storage.Transaction, rules platform.Rules, ended inter.Epoch, current uint32) (uint32, error) {
	proposers, err := pools.FetchProposers(tx, ended)
	if err != nil {
		return 0, err
	}
	var blocks uint64
	for _, p := range proposers {
		blocks += p.Blocks
	}
	if blocks == 0 {
		return current, nil
	}
	votes, err := drive.FetchProtocolVersionVotes(tx, ended)
	if err != nil {
		return 0, err
	}
	versions := make([]uint32, 0, len(votes))
	for v := range votes {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] > versions[j] })
	for _, v := range versions {
		if v <= current || !rules.Protocol.Supports(v) {
			continue
		}
		if votes[v]*100 >= rules.Epochs.UpgradeThresholdPercent*blocks {
			return v, nil
		}
	}
	return current, nil
}
