/*
Package client provides a simple interface to a ledger running the escrow
program.

It takes care of creating the accounts a workflow needs, funding them so that
they are rent exempt, and signing transactions. Every method maps to a single
transaction, so a failure never leaves a workflow half done.
*/
package client
