package main

import (
	"os"

	"rpsgame-deployer/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
