/*
Package escrow implements a trustless two party token exchange.

The initializer moves the tokens it offers into a custody account and opens an
escrow by calling InitEscrow with the amount of the other token it expects in
return. InitEscrow records the deal in an escrow record and hands the custody
account over to the escrow authority, an address derived from the program id
that has no private key.

Any taker holding the expected token can then call Exchange. In a single
atomic step the taker pays the initializer, receives the whole custody
balance, and both the custody account and the escrow record are closed with
their rent returned to the initializer. Until that happens the initializer may
call CancelEscrow to get the deposit back.

Only the escrow program can sign for its authority, so the deposit can not
leave custody in any other way.
*/
package escrow
