package main

import (
	"fmt"
	"os"
	"strings"

	"viksitkanpur/pkg/converter"
)

// to run: go run ./cmd/dictgen convert translations.txt internal/locale/dictionaries
func main() {
	if len(os.Args) < 4 {
		fmt.Println("Usage:")
		fmt.Println("  Convert: dictgen convert <table.txt> <output dir> [--fill]")
		fmt.Println("  Filter:  dictgen filter <table.txt> <output.txt> <prefix,prefix>")
		os.Exit(2)
	}

	command := os.Args[1]
	dc := &converter.DictionaryConverter{}

	switch command {
	case "convert":
		dc.Fill = len(os.Args) > 4 && os.Args[4] == "--fill"

		input, err := os.Open(os.Args[2])
		if err != nil {
			fmt.Printf("Error opening table: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			_ = input.Close()
		}()

		dicts, err := dc.ConvertTable(input)
		if err != nil {
			fmt.Printf("Error converting table: %v\n", err)
			os.Exit(1)
		}
		if err := dc.WriteDictionaries(os.Args[3], dicts); err != nil {
			fmt.Printf("Error writing dictionaries: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Dictionaries written to %s\n", os.Args[3])

	case "filter":
		if len(os.Args) < 5 {
			fmt.Println("Error: specify the key prefixes to keep")
			os.Exit(2)
		}

		input, err := os.Open(os.Args[2])
		if err != nil {
			fmt.Printf("Error opening table: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			_ = input.Close()
		}()

		output, err := os.Create(os.Args[3])
		if err != nil {
			fmt.Printf("Error creating output: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			_ = output.Close()
		}()

		kept, err := dc.FilterByPrefix(input, output, strings.Split(os.Args[4], ","))
		if err != nil {
			fmt.Printf("Error filtering table: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Filter applied, %d lines kept\n", kept)

	default:
		fmt.Println("Invalid command. Use 'convert' or 'filter'")
		os.Exit(2)
	}
}
