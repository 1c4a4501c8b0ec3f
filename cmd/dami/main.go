// Package main is the entry point for the dami CLI.
package main

import (
	"context"
	"os"

	"github.com/adt-dummy/dami/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
