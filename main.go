package main

import (
	"os"

	"github.com/gvilla/kbase/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
