package main

import (
	"fmt"
	"os"

	"github.com/ifbars/s1bridge/internal/bridge"
)

func main() {
	if err := bridge.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "s1bridge: %v\n", err)
		os.Exit(1)
	}
}
