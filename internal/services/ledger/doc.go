/*
Package ledger owns the transaction state machine.

Every monetary movement is a Transaction advancing through

	pending -> processing -> completed
	pending -> processing -> failed
	pending -> cancelled
	completed -> disputed

completed, failed and cancelled are terminal; the only exit from a terminal
state is completed -> disputed, raised externally after settlement.

Commit and Dispute are the only two paths that touch a wallet balance, and
both run inside one database transaction with the wallet row locked, so the
insufficient-funds check and the mutation are a single atomic unit.
Transactions are never deleted; corrections are new compensating rows.
*/
package ledger
