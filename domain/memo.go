package domain

import (
	"encoding/json"

	"github.com/pkg/errors"
)

const VaultMemoKey = "vault"

type Memorable interface {
	ToJson() string
	FromJson(jstr string) error
}

// Memo is a stored value. Version grows by one on every save, starting at 1.
type Memo struct {
	Key     string `json:"key"`
	Memo    string `json:"memo"`
	Version int64  `json:"version"`
}

// VaultSnapshot is everything needed to bring a vault back: the state
// aggregate, the strategy order and the state of the reference pools.
type VaultSnapshot struct {
	Ledger              LedgerState `json:"ledger" yaml:"ledger"`
	Buffered            string      `json:"buffered" yaml:"buffered"`
	Fees                FeeTable    `json:"fees" yaml:"fees"`
	BufferBasisPoints   uint32      `json:"buffer_bps" yaml:"buffer_bps"`
	DepositsDisabled    bool        `json:"deposits_disabled" yaml:"deposits_disabled"`
	WithdrawalsDisabled bool        `json:"withdrawals_disabled" yaml:"withdrawals_disabled"`
	Strategies          []string    `json:"strategies" yaml:"strategies"`
	Pools               []PoolState `json:"pools" yaml:"pools"`
}

// PoolState is the serialisable state of a reference pool strategy.
type PoolState struct {
	ID           string  `json:"id" yaml:"id"`
	MaxDeposits  string  `json:"max_deposits" yaml:"max_deposits"`
	MinDeposits  string  `json:"min_deposits" yaml:"min_deposits"`
	Deposits     string  `json:"deposits" yaml:"deposits"`
	Baseline     string  `json:"baseline" yaml:"baseline"`
	FeeBps       uint32  `json:"fee_bps" yaml:"fee_bps"`
	FeeRecipient Account `json:"fee_recipient,omitempty" yaml:"fee_recipient,omitempty"`
}

func SnapshotOf(state *VaultState) *VaultSnapshot {
	return &VaultSnapshot{
		Ledger:              state.Ledger.State(),
		Buffered:            state.Buffered.Dec(),
		Fees:                state.Fees.Clone(),
		BufferBasisPoints:   state.BufferBasisPoints,
		DepositsDisabled:    state.DepositsDisabled,
		WithdrawalsDisabled: state.WithdrawalsDisabled,
	}
}

// VaultState rebuilds the state aggregate held by the snapshot.
func (obj *VaultSnapshot) VaultState() (*VaultState, error) {
	ledger, err := LedgerFromState(obj.Ledger)
	if err != nil {
		return nil, err
	}
	buffered, err := ParseAmount(obj.Buffered)
	if err != nil {
		return nil, errors.Wrap(err, "buffered")
	}
	if err := obj.Fees.Validate(); err != nil {
		return nil, err
	}

	state := &VaultState{
		Ledger:              ledger,
		Buffered:            buffered,
		Fees:                obj.Fees.Clone(),
		DepositsDisabled:    obj.DepositsDisabled,
		WithdrawalsDisabled: obj.WithdrawalsDisabled,
	}
	if err := state.SetBufferBasisPoints(obj.BufferBasisPoints); err != nil {
		return nil, err
	}
	return state, nil
}

func (obj *VaultSnapshot) ToJson() string {
	jstr, err := json.Marshal(obj)
	if err != nil {
		return err.Error()
	}
	return string(jstr)
}

func (obj *VaultSnapshot) FromJson(jstr string) error {
	err := json.Unmarshal([]byte(jstr), obj)
	return err
}
