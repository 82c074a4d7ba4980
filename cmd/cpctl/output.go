package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// printOutput renders data in the format selected by --output.
// Table output uses the supplied headers and rows; json/yaml serialize data.
func printOutput(data any, headers []string, rows [][]string) error {
	switch strings.ToLower(outputFmt) {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(data)
	case "table", "":
		printTable(headers, rows)
		return nil
	default:
		return fmt.Errorf("unsupported output format %q (supported: table, json, yaml)", outputFmt)
	}
}

// printTable writes aligned columnar output to stdout.
func printTable(headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}
