package main

import (
	"os"

	"github.com/hackeros/isolator"
)

func main() {
	// The sandbox build child re-enters this binary; hand it off before
	// any CLI work.
	if isolator.MaybeSandboxInit() {
		return
	}

	if err := execute(); err != nil {
		os.Exit(1)
	}
}
