// SPDX-License-Identifier: Apache-2.0

// sampleqr extracts sample fields from scanned QR payloads.
//
// Usage:
//
//	sampleqr extract [file|-] [--format json|xml] [--field RunName ...] [--output yaml|json]
//	sampleqr compose --sample-id <id> [--run-name ...] [--format json|xml]
//	sampleqr serve
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
