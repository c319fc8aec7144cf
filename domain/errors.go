package domain

import "fmt"

var (
	ErrorInvalidAmount           = fmt.Errorf("invalid amount")
	ErrorInvalidAccount          = fmt.Errorf("invalid account")
	ErrorInsufficientBalance     = fmt.Errorf("insufficient balance")
	ErrorInsufficientLiquidity   = fmt.Errorf("insufficient liquidity")
	ErrorInsufficientDepositRoom = fmt.Errorf("insufficient deposit room")

	ErrorDepositsDisabled    = fmt.Errorf("deposits are disabled")
	ErrorWithdrawalsDisabled = fmt.Errorf("withdrawals are disabled")

	ErrorAlreadyAdded       = fmt.Errorf("strategy is already added")
	ErrorInvalidOrder       = fmt.Errorf("invalid strategy order")
	ErrorInvalidStrategySet = fmt.Errorf("invalid strategy set")
	ErrorStrategyNotEmpty   = fmt.Errorf("strategy still holds deposits")
	ErrorStrategyMismatch   = fmt.Errorf("strategy moved a different amount than asked")
	ErrorRollbackFailed     = fmt.Errorf("strategy rollback failed")

	ErrorInvalidFee = fmt.Errorf("invalid fee")

	ErrorSnapshotConflict = fmt.Errorf("vault was saved by another writer")
)
