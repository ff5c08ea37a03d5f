/*
Package swaptest provides fixtures to test programs against a complete
ledger: keys, stores, a ledger with all programs registered, and a token
market with two traders.
*/
package swaptest
