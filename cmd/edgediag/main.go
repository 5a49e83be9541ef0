// Package main is the entry point for the edge diagnostics tool.
package main

import "github.com/2easy4marcus/ssh-agent/cmd/edgediag/cmd"

func main() {
	cmd.Execute()
}
