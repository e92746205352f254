/*
Package wallet manages the per-user wallet aggregate.

A wallet is created lazily on a user's first financial operation and holds
the running balance plus lifetime totals. The package exposes reads and the
freeze gate only; balance mutation happens exclusively inside the ledger
package, as part of committing a transaction state transition.

Usage:

	svc := wallet.NewService(repo, cache)

	// Lazily create (idempotent, race-safe)
	w, err := svc.GetOrCreate(ctx, userID)

	// Cached read
	w, err = svc.Get(ctx, userID)

	// Block outbound movement
	err = svc.Freeze(ctx, userID, "chargeback review")
*/
package wallet
