package utils

import (
	"strconv"
	"strings"
)

const (
	fileSizeStep          = 1024
	fileSizeFractionLimit = 10
	negativeFileSize      = "0b"
)

var fileSizeUnits = [...]string{"b", "kb", "mb", "gb", "tb", "pb"}

// FormatFileSize renders a byte count for the document summary line, e.g. "512b", "1.5kb", "10mb".
// Values below ten units keep one decimal place unless it is zero.
func FormatFileSize(byteCount int64) string {
	if byteCount < 0 {
		return negativeFileSize
	}
	if byteCount < fileSizeStep {
		return strconv.FormatInt(byteCount, 10) + fileSizeUnits[0]
	}
	scaled := float64(byteCount)
	unitIndex := 0
	for scaled >= fileSizeStep && unitIndex < len(fileSizeUnits)-1 {
		scaled /= fileSizeStep
		unitIndex++
	}
	precision := 0
	if scaled < fileSizeFractionLimit {
		precision = 1
	}
	formatted := strings.TrimSuffix(strconv.FormatFloat(scaled, 'f', precision, 64), ".0")
	return formatted + fileSizeUnits[unitIndex]
}
