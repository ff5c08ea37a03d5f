/*
Package token implements the fungible token program that escrow trades
settle through.

A Mint describes a token type, an Account holds a balance of one mint for an
owner. Account ownership is a field of the token state, so a program can take
custody of a balance by becoming its owner with SetAuthority and later move it
by signing with a derived address.

Mints with a freeze authority may freeze accounts. A frozen account can not
send, receive or be closed until it is thawed. Wrapped native lamports are not
supported.

Both state layouts are fixed size and compatible with existing clients of the
token program.
*/
package token
