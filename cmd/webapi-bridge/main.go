package main

import (
	"os"

	"github.com/sensetecnic/webapi-bridge/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}
