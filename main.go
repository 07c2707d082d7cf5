package main

import (
	"os"

	"github.com/Devanath2003/HR-Agent/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
