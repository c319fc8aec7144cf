package domain

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"
)

const BasisPointsDenominator = 10000

// RecipientKind tells the vault whether a fee recipient only holds a balance or
// also wants to be told about every mint.
type RecipientKind string

const (
	RecipientPlain  RecipientKind = "plain"
	RecipientNotify RecipientKind = "notify"
)

type FeeEntry struct {
	Recipient   Account       `json:"recipient" yaml:"recipient"`
	BasisPoints uint32        `json:"basis_points" yaml:"basis_points"`
	Kind        RecipientKind `json:"kind" yaml:"kind"`
}

// FeeTable is the ordered list of vault fees charged on positive rewards.
type FeeTable []FeeEntry

func (t FeeTable) TotalBasisPoints() uint64 {
	var total uint64
	for _, entry := range t {
		total += uint64(entry.BasisPoints)
	}
	return total
}

// Validate checks every entry and that the proportions stay below 100%.
func (t FeeTable) Validate() error {
	for i, entry := range t {
		if entry.Recipient == "" {
			return errors.Wrapf(ErrorInvalidFee, "entry #%d has no recipient", i)
		}
		if entry.BasisPoints == 0 {
			return errors.Wrapf(ErrorInvalidFee, "entry #%d charges nothing", i)
		}
		switch entry.Kind {
		case RecipientPlain, RecipientNotify, "":
		default:
			return errors.Wrapf(ErrorInvalidFee, "entry #%d has unknown recipient kind %q", i, entry.Kind)
		}
	}
	if total := t.TotalBasisPoints(); total >= BasisPointsDenominator {
		return errors.Wrapf(ErrorInvalidFee, "fees add up to %d basis points", total)
	}
	return nil
}

// Amounts returns each entry's cut of reward, rounded down.
func (t FeeTable) Amounts(reward *uint256.Int) []*uint256.Int {
	amounts := make([]*uint256.Int, len(t))
	for i, entry := range t {
		amounts[i] = basisPointsOf(reward, entry.BasisPoints)
	}
	return amounts
}

func (t FeeTable) Clone() FeeTable {
	if t == nil {
		return nil
	}
	clone := make(FeeTable, len(t))
	copy(clone, t)
	return clone
}

func basisPointsOf(amount *uint256.Int, bps uint32) *uint256.Int {
	// bps never exceeds the denominator, so the result fits.
	result, _ := new(uint256.Int).MulDivOverflow(amount, uint256.NewInt(uint64(bps)), uint256.NewInt(BasisPointsDenominator))
	return result
}
