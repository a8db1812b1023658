package sheet

import (
	"math"
	"strings"
	"time"
)

// spreadsheet epoch used by Google Sheets and Excel date serials
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// IsDateColumn reports whether values in the column are treated as dates
func IsDateColumn(header string) bool {
	return strings.Contains(header, "Date")
}

// FromSerial converts a spreadsheet date serial (days since 1899-12-30) to a time
func FromSerial(serial float64) time.Time {
	days := math.Floor(serial)
	secs := math.Round((serial - days) * 86400)
	return serialEpoch.AddDate(0, 0, int(days)).Add(time.Duration(secs) * time.Second)
}

// ToSerial converts a time to a spreadsheet date serial
func ToSerial(t time.Time) float64 {
	d := t.UTC().Sub(serialEpoch)
	return d.Hours() / 24
}
