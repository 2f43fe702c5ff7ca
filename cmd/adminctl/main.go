package main

import (
	"os"

	"storefront-admin/internal/cli"
)

func main() {
	os.Exit(cli.Main(os.Args[1:]))
}
