// Package format renders currency, dates, and filenames the way the
// generated documents expect them. The output strings are consumed by
// downstream printing and archival, so they must stay byte-stable.
package format

import (
	"strconv"
	"strings"
	"time"
)

var monthNames = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// Rupiah formats an amount as Indonesian currency: thousands grouped with
// dots, zero decimal digits, "Rp" prefix. 1500000 renders as "Rp1.500.000".
func Rupiah(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}

	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString("Rp")

	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
		if len(digits) > lead {
			b.WriteByte('.')
		}
	}
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteByte('.')
		}
	}
	return b.String()
}

// Tanggal renders a time as a long-form Indonesian date: "2 Januari 2006".
func Tanggal(t time.Time) string {
	return strconv.Itoa(t.Day()) + " " + monthNames[t.Month()-1] + " " + strconv.Itoa(t.Year())
}

// TanggalString parses a stored "2006-01-02" date and renders it long-form.
// Values that do not parse are returned as entered.
func TanggalString(s string) string {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return s
	}
	return Tanggal(t)
}

// SanitizeFilename reduces a user-chosen filename to letters, digits, and
// underscores. Spaces become underscores; everything else is dropped. An
// empty result falls back to "dokumen".
func SanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "dokumen"
	}
	return b.String()
}
