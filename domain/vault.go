package domain

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

// VaultState is the single aggregate every vault operation reads and writes.
// Operations plan against one state and apply the plan to a clone.
type VaultState struct {
	Ledger *ShareLedger
	// Buffered is the underlying held by the vault itself, not deployed to
	// any strategy.
	Buffered            *uint256.Int
	Fees                FeeTable
	BufferBasisPoints   uint32
	DepositsDisabled    bool
	WithdrawalsDisabled bool
}

func NewVaultState() *VaultState {
	return &VaultState{
		Ledger:   NewShareLedger(),
		Buffered: new(uint256.Int),
	}
}

func (s *VaultState) Clone() *VaultState {
	return &VaultState{
		Ledger:              s.Ledger.Clone(),
		Buffered:            s.Buffered.Clone(),
		Fees:                s.Fees.Clone(),
		BufferBasisPoints:   s.BufferBasisPoints,
		DepositsDisabled:    s.DepositsDisabled,
		WithdrawalsDisabled: s.WithdrawalsDisabled,
	}
}

// BufferTarget is the undeployed amount the vault aims to keep at the current
// total staked.
func (s *VaultState) BufferTarget() *uint256.Int {
	return bufferTargetAt(s.Ledger.totalStaked, s.BufferBasisPoints)
}

func (s *VaultState) SetBufferBasisPoints(bps uint32) error {
	if bps > BasisPointsDenominator {
		return errors.Wrapf(ErrorInvalidAmount, "buffer of %d basis points", bps)
	}
	s.BufferBasisPoints = bps
	return nil
}

func bufferTargetAt(totalStaked *uint256.Int, bps uint32) *uint256.Int {
	return basisPointsOf(totalStaked, bps)
}
