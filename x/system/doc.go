/*
Package system implements the native program that owns every fresh address.

It can allocate an account for another program (CreateAccount) and move
lamports between accounts it owns (Transfer). Programs that need a new account
invoke it through the host, the escrow client uses it to allocate the record
slot before Init.
*/
package system
