package main

import (
	"bytes"
	"strings"
	"testing"
)

const recordHex = "01000000000000000000000000000000000000000000000000000000000000000006ddf6e1d765a193d9cbe146ceeb79ac1cb485ed5f5b37913a8cf5857eff00a9496b55e963705f18ccd4ef9cbfcd14bdc72ef351880fbc339e67c385c4414b0640420f0000000000"

func TestDecodeInstruction(t *testing.T) {
	runGolden(t, "instruction_init", cmdDecodeInstruction, "0040420f0000000000\n")
	runGolden(t, "instruction_exchange", cmdDecodeInstruction, "013f420f0000000000")
	runGolden(t, "instruction_exchange", cmdDecodeInstruction, "vQCmdBV2qPV", "-enc", "base58")
	runGolden(t, "instruction_cancel", cmdDecodeInstruction, "02")
}

func TestDecodeRecord(t *testing.T) {
	runGolden(t, "record", cmdDecodeRecord, recordHex)
}

func TestDecodeErrors(t *testing.T) {
	cases := map[string]struct {
		input string
	}{
		"invalid hex": {
			input: "zz",
		},
		"unknown instruction tag": {
			input: "05",
		},
		"short instruction": {
			input: "0140",
		},
		"short record": {
			input: recordHex[:20],
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var out bytes.Buffer
			run := cmdDecodeInstruction
			if strings.Contains(testName, "record") {
				run = cmdDecodeRecord
			}
			if err := run(strings.NewReader(tc.input), &out, nil); err == nil {
				t.Fatalf("want error, got output %q", out.String())
			}
		})
	}
}
