package swaptest

import "github.com/gagliardetto/solana-go"

// NewKey returns a new random private key.
func NewKey() solana.PrivateKey {
	return solana.NewWallet().PrivateKey
}

// NewAddress returns a random address nobody holds a key for.
func NewAddress() solana.PublicKey {
	return NewKey().PublicKey()
}
