package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	RecordKindDeposit  = "deposit"
	RecordKindWithdraw = "withdraw"
	RecordKindRebase   = "rebase"
	RecordKindTransfer = "transfer"
)

// Record is the journal entry every successful vault operation emits.
type Record struct {
	ID          string             `json:"id" yaml:"id"`
	Kind        string             `json:"kind" yaml:"kind"`
	Account     Account            `json:"account,omitempty" yaml:"account,omitempty"`
	Recipient   Account            `json:"recipient,omitempty" yaml:"recipient,omitempty"`
	Amount      string             `json:"amount" yaml:"amount"`
	Shares      string             `json:"shares" yaml:"shares"`
	NetChange   string             `json:"net_change,omitempty" yaml:"net_change,omitempty"`
	Allocations []RecordAllocation `json:"allocations,omitempty" yaml:"allocations,omitempty"`
	Fees        []RecordFee        `json:"fees,omitempty" yaml:"fees,omitempty"`
	SharePrice  string             `json:"share_price" yaml:"share_price"`
	CreateTime  time.Time          `json:"create_time" yaml:"create_time"`
}

type RecordAllocation struct {
	Strategy string `json:"strategy" yaml:"strategy"`
	Amount   string `json:"amount" yaml:"amount"`
}

type RecordFee struct {
	Recipient Account `json:"recipient" yaml:"recipient"`
	Amount    string  `json:"amount" yaml:"amount"`
	Shares    string  `json:"shares" yaml:"shares"`
}

func NewRecord(kind string) Record {
	return Record{
		ID:         uuid.NewString(),
		Kind:       kind,
		CreateTime: time.Now().UTC(),
	}
}
