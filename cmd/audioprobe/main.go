package main

import (
	"encoding/json"
	"fmt"
	"os"

	"audiostreamly-edge/internal/audioprobe"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: audioprobe <audio-file> [...]")
		os.Exit(2)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	exitCode := 0
	for _, path := range os.Args[1:] {
		result, err := audioprobe.Probe(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "audioprobe: %s: %v\n", path, err)
			exitCode = 1
			continue
		}
		if err := encoder.Encode(result); err != nil {
			fmt.Fprintf(os.Stderr, "audioprobe: encode %s: %v\n", path, err)
			exitCode = 1
		}
	}

	os.Exit(exitCode)
}
