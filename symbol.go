package tradestats

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/tradestats/date"
)

// expiryPattern matches the DDMMMYY expiry embedded in F&O symbols.
var expiryPattern = regexp.MustCompile(`(\d{2})(JAN|FEB|MAR|APR|MAY|JUN|JUL|AUG|SEP|OCT|NOV|DEC)(\d{2})`)

var monthCodes = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// InferDateFromSymbol returns the expiry date embedded in an F&O symbol such
// as ADANIENT25JUL2400PE (25 July 2024). Two-digit years are in the 2000s.
// The first candidate that is a real calendar date wins.
func InferDateFromSymbol(symbol string) (date.Date, bool) {
	up := strings.ToUpper(symbol)
	for _, loc := range expiryPattern.FindAllStringSubmatchIndex(up, -1) {
		day, _ := strconv.Atoi(up[loc[2]:loc[3]])
		month := monthCodes[up[loc[4]:loc[5]]]
		year, _ := strconv.Atoi(up[loc[6]:loc[7]])
		d := date.New(2000+year, month, day)
		if d.Day() != day || d.Month() != month {
			continue
		}
		return d, true
	}
	return date.Date{}, false
}
