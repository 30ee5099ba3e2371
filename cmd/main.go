package main

import (
	"os"

	"github.com/parsdesk/dana/cmd/dana"
)

func main() {
	if err := dana.Execute(); err != nil {
		os.Exit(1)
	}
}
