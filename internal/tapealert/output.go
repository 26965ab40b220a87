package tapealert

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// PrintJSON outputs the flag table as JSON
func PrintJSON(w io.Writer, flags []Flag) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(flags)
}

// PrintTable outputs the flag table as formatted columns
func PrintTable(w io.Writer, flags []Flag) {
	fmt.Fprintf(w, "%-5s %-9s %-34s %s\n", "CODE", "SEVERITY", "NAME", "DESCRIPTION")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, f := range flags {
		fmt.Fprintf(w, "%-5d %-9s %-34s %s\n", f.Code, f.Severity, f.Name, f.Description)
	}
}
