package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/tokenswap/x/escrow"
)

func cmdAuthority(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print the address that owns custody accounts of the escrow program.

The authority is derived from the program id alone. It has no private key
and only the escrow program can sign for it.
`)
		fl.PrintDefaults()
	}
	var (
		programFl = flPublicKey(fl, "program", env("ESCROWCLI_PROGRAM", escrow.DefaultProgramID.String()),
			"Base58 id of the escrow program. You can use ESCROWCLI_PROGRAM environment variable to set it.")
	)
	fl.Parse(args)

	auth, err := escrow.Authority(*programFl)
	if err != nil {
		return fmt.Errorf("cannot derive authority: %s", err)
	}
	fmt.Fprintf(output, "program    %s\n", *programFl)
	fmt.Fprintf(output, "seed       %s\n", escrow.Seed)
	fmt.Fprintf(output, "authority  %s\n", auth.Address)
	fmt.Fprintf(output, "bump       %d\n", auth.Bump)
	return nil
}
