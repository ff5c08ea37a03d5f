/*
Package runtime is the ledger host that programs run on.

A Ledger keeps every account under its address in a versioned key value
store. Transactions are signed lists of instructions. Executing a transaction
verifies all signatures, loads the referenced accounts and calls the program
of each instruction in order. Programs may call other programs through the
environment they are given. A nested call can extend the signer and writable
privileges the caller holds, and a program can sign for the addresses it
derives with the pda package, but nothing else.

After every program returns, the host checks the changes it made: the sum of
lamports must not change, only the owner of an account may debit it or modify
its data, and read-only accounts must stay untouched. Any failure discards
the whole transaction.

Executed transactions are kept in memory until Commit persists them as a new
version of the store.
*/
package runtime
