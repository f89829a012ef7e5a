package printer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const lpstatSample = `printer Office_Printer is idle.  enabled since Mon 01 Jan 2024 10:00:00 AM
printer Lab_Printer is busy.  printing Lab_Printer-3
printer Old_Printer disabled since Tue 02 Jan 2024 09:00:00 AM -
	reason unknown
system default destination: Office_Printer
`

const lpoptionsSample = `PageSize/Media Size: *A4 Letter Legal Executive
ColorModel/Color Model: *RGB Gray
Duplex/2-Sided Printing: *None DuplexNoTumble DuplexTumble
`

func TestParseJobID(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{"typical lp output", "request id is Office_Printer-42 (1 file(s))\n", "Office_Printer-42"},
		{"no job id", "lp: Error - no default destination available.\n", ""},
		{"empty", "", ""},
		{"id only", "request id is hp-7", "hp-7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseJobID(tt.output))
		})
	}
}

func TestParseDefaultDestination(t *testing.T) {
	assert.Equal(t, "Office_Printer", ParseDefaultDestination(lpstatSample))
	assert.Equal(t, "", ParseDefaultDestination("no system default destination\n"))
	assert.Equal(t, "", ParseDefaultDestination(""))
}

func TestParsePrinterNames(t *testing.T) {
	names := ParsePrinterNames(lpstatSample)
	assert.Equal(t, []string{"Office_Printer", "Lab_Printer", "Old_Printer"}, names)

	assert.Empty(t, ParsePrinterNames("system default destination: Office_Printer\n"))
	assert.Empty(t, ParsePrinterNames("printer\n")) // malformed line, no name field
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		output string
		want   string
	}{
		{"printer Office_Printer is idle.  enabled since Mon", StatusIdle},
		{"printer Lab_Printer is busy.  printing Lab_Printer-3", StatusBusy},
		{"printer Old_Printer disabled since Tue", StatusDisabled},
		{"printer Weird_Printer paused", StatusUnknown},
		{"", StatusUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyStatus(tt.output))
	}
}

func TestParseCapabilities(t *testing.T) {
	caps := ParseCapabilities(lpoptionsSample)
	assert.True(t, caps.SupportsColor)
	assert.Equal(t, []string{"A4", "Letter", "Legal", "Executive"}, caps.PaperSizes)
}

func TestParseCapabilitiesMonochrome(t *testing.T) {
	out := "PageSize/Media Size: *Letter A4\nColorModel/Color Model: *Gray\n"
	caps := ParseCapabilities(out)
	assert.False(t, caps.SupportsColor)
	assert.Equal(t, []string{"Letter", "A4"}, caps.PaperSizes)
}

func TestParseCapabilitiesCMYK(t *testing.T) {
	out := "ColorModel/Color Model: *CMYK\n"
	caps := ParseCapabilities(out)
	assert.True(t, caps.SupportsColor)
}

func TestExtractPaperSizesFallback(t *testing.T) {
	// No PageSize/ line at all: assume the two universal sizes.
	caps := ParseCapabilities("Duplex/2-Sided Printing: *None\n")
	assert.Equal(t, []string{"A4", "Letter"}, caps.PaperSizes)

	caps = ParseCapabilities("")
	assert.Equal(t, []string{"A4", "Letter"}, caps.PaperSizes)
}

func TestExtractPaperSizesDedup(t *testing.T) {
	out := "PageSize/Media Size: *A4 A4 Letter A4\n"
	caps := ParseCapabilities(out)
	assert.Equal(t, []string{"A4", "Letter"}, caps.PaperSizes)
}
