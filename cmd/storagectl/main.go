// Command storagectl is a manual inspector for the storage core: it
// assembles a NAND chip, an FTL, and a controller from flags/config and
// drives them for one operation per invocation. It keeps no state of its
// own across invocations — every run starts from a freshly erased chip,
// matching the storage core's own "no persisted state outside the NAND"
// rule.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
