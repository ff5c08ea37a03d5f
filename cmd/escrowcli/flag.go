package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

// env returns the value of an environment variable when it is set, so that
// ESCROWCLI_* variables can provide flag defaults.
func env(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}

// publicKey is a flag value holding a base58 encoded address.
type publicKey struct {
	solana.PublicKey
}

func (k *publicKey) Set(raw string) error {
	b, err := base58.Decode(raw)
	if err != nil {
		return fmt.Errorf("invalid base58: %s", err)
	}
	if len(b) != solana.PublicKeyLength {
		return fmt.Errorf("address of %d bytes", len(b))
	}
	copy(k.PublicKey[:], b)
	return nil
}

// flPublicKey returns a value that is being initialized with given default
// value and optionally overwritten by a command line argument if provided.
// This function follows Go's flag package convention.
// If given value cannot be deserialized to required type, process is
// terminated.
func flPublicKey(fl *flag.FlagSet, name, defaultVal, usage string) *solana.PublicKey {
	var k publicKey
	if defaultVal != "" {
		if err := k.Set(defaultVal); err != nil {
			fmt.Fprintf(os.Stderr, "Cannot parse %q address flag value. %s", name, err)
			os.Exit(2)
		}
	}
	fl.Var(&k, name, usage)
	return &k.PublicKey
}

// readInput returns binary data provided on input, encoded with given
// encoding. Surrounding whitespace is ignored.
func readInput(input io.Reader, encoding string) ([]byte, error) {
	raw, err := ioutil.ReadAll(input)
	if err != nil {
		return nil, fmt.Errorf("cannot read input: %s", err)
	}
	text := strings.TrimSpace(string(raw))
	switch encoding {
	case "hex":
		b, err := hex.DecodeString(text)
		if err != nil {
			return nil, fmt.Errorf("invalid hex input: %s", err)
		}
		return b, nil
	case "base58":
		b, err := base58.Decode(text)
		if err != nil {
			return nil, fmt.Errorf("invalid base58 input: %s", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown encoding %q", encoding)
	}
}
