//go:build ignore

package main

import (
	"fmt"
	"os"

	"github.com/ormasoftchile/fuzzpanel/pkg/schema"
)

func main() {
	if err := os.MkdirAll("schemas", 0755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir: %v\n", err)
		os.Exit(1)
	}

	for _, s := range []struct {
		path     string
		generate func() ([]byte, error)
	}{
		{"schemas/payload-v0.json", schema.GeneratePayloadSchema},
		{"schemas/results-v0.json", schema.GenerateResultsSchema},
	} {
		data, err := s.generate()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error generating %s: %v\n", s.path, err)
			os.Exit(1)
		}
		if err := os.WriteFile(s.path, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "write: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("wrote", s.path)
	}
}
