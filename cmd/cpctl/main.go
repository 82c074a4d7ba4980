// Package main provides the cpctl binary for inspecting and managing
// control pack assignments and the schema-migration ledger.
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
