package main

import "testing"

func TestAuthority(t *testing.T) {
	runGolden(t, "authority", cmdAuthority, "")
	runGolden(t, "authority_token_program", cmdAuthority, "",
		"-program", "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
}
