package main

import (
	"os"

	"github.com/TheRVAAccountant/resource-allocator/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
