package history

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// PrintJSON outputs checks as JSON
func PrintJSON(w io.Writer, checks []*Check) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(checks)
}

// PrintTable outputs checks as formatted columns
func PrintTable(w io.Writer, checks []*Check) {
	fmt.Fprintf(w, "%-20s %-8s %-30s %-12s %-7s %s\n",
		"TIME", "JOBID", "DEVICE", "SG NODE", "STATUS", "ALERTS")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for _, c := range checks {
		detail := "-"
		if len(c.Codes) > 0 {
			parts := make([]string, len(c.Codes))
			for i, code := range c.Codes {
				parts[i] = strconv.Itoa(code)
			}
			detail = strings.Join(parts, ",")
		} else if c.Status == StatusFailed && c.Failure != "" {
			detail = c.Failure
		}
		fmt.Fprintf(w, "%-20s %-8s %-30s %-12s %-7s %s\n",
			c.CreatedAt.Format("2006-01-02 15:04:05"),
			orDash(c.JobID), c.Device, orDash(c.SGNode), c.Status, detail)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
