package repositories

import "context"

// BalanceRepository is the ERC20-like token boundary the settlement core
// calls. Transfers fail atomically when the source balance is insufficient.
// Balances are keyed by (token, account).
type BalanceRepository interface {
	BalanceOf(ctx context.Context, token, account string) (string, error)
	// Transfer moves amount from one account to another inside the
	// current transaction scope.
	Transfer(ctx context.Context, token, from, to, amount string) error
	// Mint credits an account; test and bootstrap surface only.
	Mint(ctx context.Context, token, account, amount string) error
}
