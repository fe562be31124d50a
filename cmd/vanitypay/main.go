// Command vanitypay operates a vanity URL access ledger: it initializes the
// ledger, runs the administrator's configuration and withdrawal commands,
// records maintainer-submitted payments and serves paid alias content.
package main

import (
	"fmt"
	"os"
)

const programName = "vanitypay"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
