package main

import (
	"github.com/pfrederiksen/conf-authors/internal/cli"
)

var version = "dev"

func main() {
	cli.Version = version
	cli.Execute()
}
