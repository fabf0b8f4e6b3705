package platform

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestNetworkConstants(t *testing.T) {
	tests := []struct {
		name     string
		constant uint64
		want     uint64
	}{
		{"MainNetworkID", MainNetworkID, 0xd5},
		{"TestNetworkID", TestNetworkID, 0xd52},
		{"FakeNetworkID", FakeNetworkID, 0xd53},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.constant != tt.want {
				t.Errorf("%s = %d, want %d", tt.name, tt.constant, tt.want)
			}
		})
	}
}

func TestNetworkRules(t *testing.T) {
	tests := []struct {
		name        string
		rules       Rules
		wantName    string
		wantID      uint64
		wantEpoch   time.Duration
		wantGenesis uint32
		wantBatch   uint16
	}{
		{"main", MainNetRules(), "main", MainNetworkID, 18 * time.Hour, 1, 1},
		{"test", TestNetRules(), "test", TestNetworkID, time.Hour, 1, 1},
		{"fake", FakeNetRules(), "fake", FakeNetworkID, time.Minute, LatestProtocolVersion, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.rules.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", tt.rules.Name, tt.wantName)
			}
			if tt.rules.NetworkID != tt.wantID {
				t.Errorf("NetworkID = %d, want %d", tt.rules.NetworkID, tt.wantID)
			}
			if tt.rules.Epochs.EpochLength != tt.wantEpoch {
				t.Errorf("EpochLength = %v, want %v", tt.rules.Epochs.EpochLength, tt.wantEpoch)
			}
			if tt.rules.Protocol.GenesisVersion != tt.wantGenesis {
				t.Errorf("GenesisVersion = %d, want %d", tt.rules.Protocol.GenesisVersion, tt.wantGenesis)
			}
			if tt.rules.Limits.MaxTransitionsInBatch != tt.wantBatch {
				t.Errorf("MaxTransitionsInBatch = %d, want %d", tt.rules.Limits.MaxTransitionsInBatch, tt.wantBatch)
			}
			if !tt.rules.Protocol.Supports(tt.rules.Protocol.GenesisVersion) {
				t.Errorf("genesis protocol version %d is not supported", tt.rules.Protocol.GenesisVersion)
			}
		})
	}
}

func TestProtocolRulesSupports(t *testing.T) {
	r := ProtocolRules{MinSupportedVersion: 2, MaxSupportedVersion: 4}
	for v, want := range map[uint32]bool{1: false, 2: true, 4: true, 5: false} {
		if got := r.Supports(v); got != want {
			t.Errorf("Supports(%d) = %v, want %v", v, got, want)
		}
	}
}

func TestDerivedLimits(t *testing.T) {
	r := DefaultLimitsRules()
	if got := r.MaxTransitionSize(); got != 20*1024 {
		t.Errorf("MaxTransitionSize() = %d, want %d", got, 20*1024)
	}
	if got := FakeNetEpochsRules().EpochLengthMs(); got != 60000 {
		t.Errorf("EpochLengthMs() = %d, want 60000", got)
	}
}

func TestRulesCopyAndString(t *testing.T) {
	rules := FakeNetRules()
	cp := rules.Copy()
	if !reflect.DeepEqual(rules, cp) {
		t.Fatal("copy differs from original")
	}
	cp.Limits.MaxTransitionSizeKB = 1
	if rules.Limits.MaxTransitionSizeKB == 1 {
		t.Error("modifying the copy changed the original")
	}

	var decoded Rules
	if err := json.Unmarshal([]byte(rules.String()), &decoded); err != nil {
		t.Fatalf("String() is not valid JSON: %v", err)
	}
	if !reflect.DeepEqual(rules, decoded) {
		t.Errorf("decoded rules differ: %+v", decoded)
	}
}
