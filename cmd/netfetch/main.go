// Package main implements the netfetch command, which fetches JSON documents
// through the shared task queue and reports each result.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
