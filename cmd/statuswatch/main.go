// Package main is the entry point for statuswatch.
package main

import (
	"statuswatch/cmd/statuswatch/cmd"
)

func main() {
	cmd.Execute()
}
