package launcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/rcrowley/go-metrics"
	"github.com/sirupsen/logrus"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-platform-drive/execution/engine"
	"github.com/rony4d/go-platform-drive/genesis"
	"github.com/rony4d/go-platform-drive/inter"
	"github.com/rony4d/go-platform-drive/platform"
)

// BlockJSON is a block of a replay file.
type BlockJSON struct {
	Height                  uint64           `json:"height"`
	TimeMs                  uint64           `json:"timeMs"`
	CoreHeight              uint32           `json:"coreHeight"`
	Proposer                inter.Identifier `json:"proposer"`
	ProposedProtocolVersion uint32           `json:"proposedProtocolVersion"`
	Transitions             []hexutil.Bytes  `json:"transitions"`
}

func (b *BlockJSON) block() engine.Block {
	txs := make([][]byte, len(b.Transitions))
	for i, raw := range b.Transitions {
		txs[i] = raw
	}
	return engine.Block{
		Info: inter.BlockInfo{
			Height:                  idx.Block(b.Height),
			TimeMs:                  b.TimeMs,
			CoreHeight:              b.CoreHeight,
			Proposer:                b.Proposer,
			ProposedProtocolVersion: b.ProposedProtocolVersion,
		},
		Transitions: txs,
	}
}

func readBlocks(path string) ([]BlockJSON, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var blocks []BlockJSON
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	return blocks, nil
}

func replayCommand(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return errors.New("usage: replay <blocks.json>")
	}
	cfg, err := MakeAllConfigs(ctx)
	if err != nil {
		return err
	}
	log, err := makeLogger(cfg.Logging, ctx.App.ErrWriter)
	if err != nil {
		return err
	}
	blocks, err := readBlocks(ctx.Args().First())
	if err != nil {
		return err
	}
	return replay(context.Background(), cfg, log, blocks, ctx.App.Writer)
}

// replay executes the blocks on top of the configured state. Blocks at or
// below the last committed height are skipped so an interrupted replay can
// be resumed.
func replay(ctx context.Context, cfg Config, log *logrus.Logger, blocks []BlockJSON, w io.Writer) error {
	rules, err := cfg.Platform.Rules()
	if err != nil {
		return err
	}
	n, err := openNode(cfg, rules, log)
	if err != nil {
		return err
	}
	defer n.Close()

	last := n.engine.Decided().LastBlock.Height
	for i := range blocks {
		b := blocks[i].block()
		if b.Info.Height <= last {
			continue
		}
		out, root, err := n.engine.RunBlock(ctx, b)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "block %d epoch %d txs %d valid %d processing %d storage %d root %s\n",
			out.Info.Height, out.EpochInfo.Current.Index, len(out.Results), out.Receipt.Valid(),
			out.Fees.ProcessingFee, out.Fees.StorageFee, root.String())
		for _, r := range out.Results {
			if r.Err != nil {
				fmt.Fprintf(w, "  tx %d rejected: %d %s\n", r.Index, r.Err.Code(), r.Err.Error())
			}
		}
	}
	executed := metrics.GetOrRegisterCounter("drive/block/executed", n.engine.Metrics()).Count()
	log.WithField("blocks", executed).Info("Replay finished")
	return nil
}

// node is the opened platform state and the engine executing on it.
type node struct {
	engine *engine.Engine
	close  func() error
}

func (n *node) Close() error {
	return n.close()
}

// openNode opens the state and writes the fake network genesis into an
// empty store. Other networks must be initialized already.
func openNode(cfg Config, rules platform.Rules, log *logrus.Logger) (*node, error) {
	d, err := makeDrive(cfg)
	if err != nil {
		return nil, err
	}
	e, err := engine.New(d, rules, log, metrics.NewRegistry())
	if err != nil {
		d.Store.Close()
		return nil, err
	}
	initialized, err := d.IsInitialized()
	if err != nil {
		d.Store.Close()
		return nil, err
	}
	if !initialized {
		if rules.NetworkID != platform.FakeNetworkID {
			d.Store.Close()
			return nil, errors.Wrapf(engine.ErrNotInitialized, "%s network", rules.Name)
		}
		g := genesis.Fake(rules, cfg.Platform.FakeNetAccounts, inter.Credits(cfg.Platform.FakeNetBalance))
		if _, err := e.InitChain(g); err != nil {
			d.Store.Close()
			return nil, err
		}
	}
	return &node{engine: e, close: d.Store.Close}, nil
}
