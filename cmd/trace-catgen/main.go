// Command trace-catgen generates the trace category table from YAML.
//
// Usage:
//
//	trace-catgen -input categories.yaml -output category_gen.go
//
// The input lists categories in id order; ANY must come first. Run it
// through go generate in pkg/trace.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/tools/imports"
)

func main() {
	input := flag.String("input", "", "Path to the category table YAML")
	output := flag.String("output", "", "Output path for the generated Go file")
	flag.Parse()

	if *input == "" || *output == "" {
		fmt.Fprintln(os.Stderr, "Usage: trace-catgen -input <categories.yaml> -output <category_gen.go>")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(*input, *output); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(input, output string) error {
	table, err := LoadCategoryTable(input)
	if err != nil {
		return err
	}

	code, err := GenerateCategories(table, filepath.Base(input))
	if err != nil {
		return err
	}
	if err := writeFormatted(output, code); err != nil {
		return err
	}
	fmt.Printf("  generated %s (%d categories)\n", output, len(table.Categories))
	return nil
}

// writeFormatted formats Go source code with goimports and writes it to a file.
func writeFormatted(path string, code string) error {
	formatted, err := imports.Process(path, []byte(code), nil)
	if err != nil {
		// Keep the unformatted output for debugging the template.
		_ = os.WriteFile(path+".broken", []byte(code), 0o644)
		return fmt.Errorf("goimports %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, formatted, 0o644)
}
