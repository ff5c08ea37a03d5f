package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/tokenswap/x/escrow"
)

func cmdDecodeInstruction(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read escrow instruction data from stdin and print it in a human readable form.
`)
		fl.PrintDefaults()
	}
	var (
		encFl = fl.String("enc", "hex", "Encoding of the input, hex or base58.")
	)
	fl.Parse(args)

	raw, err := readInput(input, *encFl)
	if err != nil {
		return err
	}
	ix, err := escrow.Decode(raw)
	if err != nil {
		return fmt.Errorf("cannot decode instruction: %s", err)
	}
	switch ix := ix.(type) {
	case escrow.InitEscrow:
		fmt.Fprintf(output, "instruction  InitEscrow\namount       %d\n", ix.Amount)
	case escrow.Exchange:
		fmt.Fprintf(output, "instruction  Exchange\namount       %d\n", ix.Amount)
	case escrow.CancelEscrow:
		fmt.Fprintln(output, "instruction  CancelEscrow")
	}
	return nil
}

func cmdDecodeRecord(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read escrow record account data from stdin and print it in a human readable
form. An uninitialized record is printed as well.
`)
		fl.PrintDefaults()
	}
	var (
		encFl = fl.String("enc", "hex", "Encoding of the input, hex or base58.")
	)
	fl.Parse(args)

	raw, err := readInput(input, *encFl)
	if err != nil {
		return err
	}
	r, err := escrow.UnpackUnchecked(raw)
	if err != nil {
		return fmt.Errorf("cannot decode record: %s", err)
	}
	fmt.Fprintf(output, "initialized  %t\n", r.IsInitialized)
	fmt.Fprintf(output, "initializer  %s\n", r.Initializer)
	fmt.Fprintf(output, "custody      %s\n", r.Custody)
	fmt.Fprintf(output, "receiving    %s\n", r.Receiving)
	fmt.Fprintf(output, "expected     %d\n", r.ExpectedAmount)
	return nil
}
