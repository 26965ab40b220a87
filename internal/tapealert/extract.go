package tapealert

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// flagLineRe matches the lines tapeinfo emits for raised flags, e.g.
// `TapeAlert[13]:  Snapped Tape: The data cartridge contains a broken tape.`
var flagLineRe = regexp.MustCompile(`^TapeAlert\[(\d+)\]: +(.*)`)

// Alert is one detected flag paired with its reference table entry.
// Detail carries the text the utility printed after the flag number.
type Alert struct {
	Flag
	Detail string `json:"detail,omitempty"`
}

// SkippedLine records a flag line whose number falls outside the reference
// table. These are warnings, never fatal.
type SkippedLine struct {
	Code int
	Line string
}

// Report is the outcome of scanning one diagnostic text: the recognized
// alerts in ascending code order with duplicates removed, plus any flag
// lines that had to be skipped.
type Report struct {
	Alerts  []Alert
	Skipped []SkippedLine
}

// Extract scans diagnostic text line by line for TapeAlert flag lines.
// Lines that are not flag lines are ignored; flag numbers outside the
// table range are collected in Skipped and processing continues. An empty
// report is a valid result: the drive raised no flags.
func Extract(text string) Report {
	var rep Report
	byCode := make(map[int]Alert)

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		m := flagLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		code, err := strconv.Atoi(m[1])
		if err != nil || code < MinCode || code > MaxCode {
			rep.Skipped = append(rep.Skipped, SkippedLine{Code: code, Line: line})
			continue
		}
		if _, dup := byCode[code]; dup {
			continue
		}
		flag, _ := Lookup(code)
		byCode[code] = Alert{Flag: flag, Detail: strings.TrimSpace(m[2])}
	}

	codes := make([]int, 0, len(byCode))
	for code := range byCode {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	for _, code := range codes {
		rep.Alerts = append(rep.Alerts, byCode[code])
	}
	return rep
}

// Print writes the report in the form the storage daemon consumes: one
// `TapeAlert[<n>]` line per alert, ascending. The daemon matches this
// literal pattern and ignores everything after the flag number, so no
// other text may be written to the same stream.
func (r Report) Print(w io.Writer) {
	for _, a := range r.Alerts {
		fmt.Fprintf(w, "TapeAlert[%d]\n", a.Code)
	}
}
