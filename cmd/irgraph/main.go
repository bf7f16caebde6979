package main

import (
	"context"
	"os"

	_ "irgraph/internal/foreign/llirmod"
	_ "irgraph/internal/foreign/llvmc"
)

func main() {
	os.Exit(runCLI(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}
