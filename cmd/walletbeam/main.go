package main

import (
	"os"

	"github.com/walletbeam/walletbeam/internal/app"
)

func main() {
	os.Exit(app.NewRunner().Run(os.Args[1:]))
}
