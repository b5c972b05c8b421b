package main

import (
	"github.com/medge/codewords/internal/cli"
)

func main() {
	cli.Execute()
}
