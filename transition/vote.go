package transition

import (
	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/utils/cser"
)

// VotePoll addresses a contested unique index value.
type VotePoll struct {
	ContractID   inter.Identifier
	DocumentType string
	IndexName    string
	IndexValues  [][]byte
}

// VoteChoiceKind is what a masternode votes for.
type VoteChoiceKind uint8

const (
	TowardsIdentity VoteChoiceKind = iota
	Abstain
	Lock
)

// VoteChoice is a vote. Identity is only set for TowardsIdentity.
type VoteChoice struct {
	Kind     VoteChoiceKind
	Identity inter.Identifier
}

// MasternodeVote is cast by a masternode voter identity on a contested
// resource.
type MasternodeVote struct {
	ProTxHash       [32]byte
	VoterIdentityID inter.Identifier
	Poll            VotePoll
	Choice          VoteChoice
	Nonce           uint64
	Signed
}

func (t *MasternodeVote) Type() Type              { return MasternodeVoteType }
func (t *MasternodeVote) Owner() inter.Identifier { return t.VoterIdentityID }

func (t *MasternodeVote) encode(w *cser.Writer, withSignatures bool) {
	w.FixedBytes(t.ProTxHash[:])
	writeID(w, t.VoterIdentityID)
	writeID(w, t.Poll.ContractID)
	w.String(t.Poll.DocumentType)
	w.String(t.Poll.IndexName)
	w.Len(len(t.Poll.IndexValues))
	for _, v := range t.Poll.IndexValues {
		w.SliceBytes(v)
	}
	w.U8(uint8(t.Choice.Kind))
	if t.Choice.Kind == TowardsIdentity {
		writeID(w, t.Choice.Identity)
	}
	w.U64(t.Nonce)
	t.encodeSigned(w, withSignatures)
}

func (t *MasternodeVote) decode(r *cser.Reader) {
	r.FixedBytes(t.ProTxHash[:])
	t.VoterIdentityID = readID(r)
	t.Poll.ContractID = readID(r)
	t.Poll.DocumentType = r.String(maxNameLength)
	t.Poll.IndexName = r.String(maxNameLength)
	t.Poll.IndexValues = make([][]byte, r.Len(maxItems))
	for i := range t.Poll.IndexValues {
		t.Poll.IndexValues[i] = r.SliceBytes(maxNameLength)
	}
	t.Choice.Kind = VoteChoiceKind(r.U8())
	if t.Choice.Kind == TowardsIdentity {
		t.Choice.Identity = readID(r)
	}
	t.Nonce = r.U64()
	t.decodeSigned(r)
}
