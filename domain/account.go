package domain

import (
	"strings"

	"github.com/tonkeeper/tongo"
)

// Account is an opaque holder identifier. TON user-friendly addresses are
// normalised so the same wallet never owns two balances.
type Account string

func ParseAccount(s string) (Account, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrorInvalidAccount
	}

	accid, err := tongo.AccountIDFromBase64Url(s)
	if err != nil {
		// Not a TON address, keep it as given.
		return Account(s), nil
	}

	return Account(accid.ToHuman(true, IsTestNet())), nil
}

func (a Account) String() string {
	return string(a)
}
