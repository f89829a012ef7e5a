package printer

import (
	"regexp"
	"slices"
	"strings"
)

// Pure parsers over spooler CLI output. lpstat and lpoptions emit loosely
// structured text that differs between CUPS versions, so each parser tolerates
// malformed input and degrades to empty or "unknown" results.

var (
	jobIDRe     = regexp.MustCompile(`request id is (\S+)`)
	sizeTokenRe = regexp.MustCompile(`\*?([A-Za-z0-9]+)`)
)

// ParseJobID extracts the spooler job identifier from lp output, e.g.
// "request id is Office_Printer-42 (1 file(s))". Empty when absent.
func ParseJobID(output string) string {
	m := jobIDRe.FindStringSubmatch(output)
	if m == nil {
		return ""
	}
	return m[1]
}

const defaultDestPrefix = "system default destination: "

// ParseDefaultDestination reads the system default printer from
// "lpstat -d" output. Empty means no default is configured; that is not an
// error.
func ParseDefaultDestination(output string) string {
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(line, defaultDestPrefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, defaultDestPrefix))
		}
	}
	return ""
}

// ParsePrinterNames extracts printer names from "lpstat -p" output, one per
// line of the form "printer <name> ...".
func ParsePrinterNames(output string) []string {
	var names []string
	for _, line := range strings.Split(output, "\n") {
		if !strings.HasPrefix(line, "printer ") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 {
			names = append(names, fields[1])
		}
	}
	return names
}

// Printer status values.
const (
	StatusIdle     = "idle"
	StatusBusy     = "busy"
	StatusDisabled = "disabled"
	StatusUnknown  = "unknown"
)

// ClassifyStatus maps a printer's lpstat status text to one of the four
// status values.
func ClassifyStatus(output string) string {
	switch {
	case strings.Contains(output, "is idle"):
		return StatusIdle
	case strings.Contains(output, "is busy"):
		return StatusBusy
	case strings.Contains(output, "disabled"):
		return StatusDisabled
	default:
		return StatusUnknown
	}
}

// Capabilities are the printer attributes recovered from lpoptions -l.
type Capabilities struct {
	SupportsColor bool
	PaperSizes    []string
}

// DefaultPaperSizes is assumed when lpoptions reports none.
var DefaultPaperSizes = []string{"A4", "Letter"}

// ParseCapabilities reads color support and paper sizes from lpoptions -l
// output. Color support means a ColorModel option mentioning RGB or CMYK.
func ParseCapabilities(output string) Capabilities {
	supportsColor := strings.Contains(output, "ColorModel") &&
		(strings.Contains(output, "RGB") || strings.Contains(output, "CMYK"))

	return Capabilities{
		SupportsColor: supportsColor,
		PaperSizes:    extractPaperSizes(output),
	}
}

// extractPaperSizes collects size labels from lines like
// "PageSize/Media Size: *A4 Letter Legal Custom.WIDTHxHEIGHT". Tokens are
// alphanumeric runs after the option label, deduplicated in first-seen order.
func extractPaperSizes(output string) []string {
	var sizes []string
	for _, line := range strings.Split(output, "\n") {
		if !strings.HasPrefix(line, "PageSize/") {
			continue
		}
		// Skip past the "PageSize/Media Size:" label so its words are not
		// mistaken for size names.
		values := line
		if idx := strings.Index(line, ":"); idx >= 0 {
			values = line[idx+1:]
		}
		for _, m := range sizeTokenRe.FindAllStringSubmatch(values, -1) {
			if !slices.Contains(sizes, m[1]) {
				sizes = append(sizes, m[1])
			}
		}
	}

	if len(sizes) == 0 {
		sizes = slices.Clone(DefaultPaperSizes)
	}
	return sizes
}
