package usecase

import (
	"vault/domain"
)

// VaultStatus is the read-only picture of the vault served to callers.
type VaultStatus struct {
	TotalStaked         string           `json:"total_staked" yaml:"total_staked"`
	TotalShares         string           `json:"total_shares" yaml:"total_shares"`
	SharePrice          string           `json:"share_price" yaml:"share_price"`
	Buffered            string           `json:"buffered" yaml:"buffered"`
	BufferTarget        string           `json:"buffer_target" yaml:"buffer_target"`
	MaxDeposits         string           `json:"max_deposits" yaml:"max_deposits"`
	MinDeposits         string           `json:"min_deposits" yaml:"min_deposits"`
	DepositsDisabled    bool             `json:"deposits_disabled" yaml:"deposits_disabled"`
	WithdrawalsDisabled bool             `json:"withdrawals_disabled" yaml:"withdrawals_disabled"`
	Fees                domain.FeeTable  `json:"fees" yaml:"fees"`
	Strategies          []StrategyStatus `json:"strategies" yaml:"strategies"`
}

type StrategyStatus struct {
	Index         int    `json:"index" yaml:"index"`
	ID            string `json:"id" yaml:"id"`
	TotalDeposits string `json:"total_deposits" yaml:"total_deposits"`
	MaxDeposits   string `json:"max_deposits" yaml:"max_deposits"`
	MinDeposits   string `json:"min_deposits" yaml:"min_deposits"`
}

type AccountStatus struct {
	Account    domain.Account `json:"account" yaml:"account"`
	Shares     string         `json:"shares" yaml:"shares"`
	Underlying string         `json:"underlying" yaml:"underlying"`
}

// Status reads every field under one lock, so the figures agree with each other.
func (interactor *VaultInteractor) Status() VaultStatus {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()

	state := interactor.state
	views := interactor.views()
	status := VaultStatus{
		TotalStaked:         state.Ledger.TotalStaked().Dec(),
		TotalShares:         state.Ledger.TotalShares().Dec(),
		SharePrice:          state.Ledger.SharePrice().String(),
		Buffered:            state.Buffered.Dec(),
		BufferTarget:        state.BufferTarget().Dec(),
		MaxDeposits:         maxDeposits(state, views).Dec(),
		MinDeposits:         minDeposits(views).Dec(),
		DepositsDisabled:    state.DepositsDisabled,
		WithdrawalsDisabled: state.WithdrawalsDisabled,
		Fees:                state.Fees.Clone(),
	}
	for i, view := range views {
		status.Strategies = append(status.Strategies, StrategyStatus{
			Index:         i,
			ID:            view.ID,
			TotalDeposits: view.TotalDeposits.Dec(),
			MaxDeposits:   view.MaxDeposits.Dec(),
			MinDeposits:   view.MinDeposits.Dec(),
		})
	}
	return status
}

func (interactor *VaultInteractor) AccountStatus(account domain.Account) (AccountStatus, error) {
	interactor.mu.Lock()
	defer interactor.mu.Unlock()

	shares := interactor.state.Ledger.BalanceOf(account)
	underlying, err := interactor.state.Ledger.UnderlyingForShares(shares)
	if err != nil {
		return AccountStatus{}, err
	}
	return AccountStatus{
		Account:    account,
		Shares:     shares.Dec(),
		Underlying: underlying.Dec(),
	}, nil
}
