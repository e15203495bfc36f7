package format

import (
	"testing"
	"time"
)

func TestRupiah(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "Rp0"},
		{1, "Rp1"},
		{999, "Rp999"},
		{1000, "Rp1.000"},
		{1500000, "Rp1.500.000"},
		{100000000, "Rp100.000.000"},
		{200000000, "Rp200.000.000"},
		{123456789, "Rp123.456.789"},
		{-2500, "-Rp2.500"},
	}

	for _, tt := range tests {
		got := Rupiah(tt.in)
		if got != tt.want {
			t.Errorf("Rupiah(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTanggal(t *testing.T) {
	got := Tanggal(time.Date(2024, time.August, 12, 0, 0, 0, 0, time.UTC))
	if got != "12 Agustus 2024" {
		t.Errorf("Tanggal = %q, want %q", got, "12 Agustus 2024")
	}

	got = Tanggal(time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC))
	if got != "2 Januari 2025" {
		t.Errorf("Tanggal = %q, want %q", got, "2 Januari 2025")
	}
}

func TestTanggalString(t *testing.T) {
	if got := TanggalString("2024-08-12"); got != "12 Agustus 2024" {
		t.Errorf("TanggalString = %q, want %q", got, "12 Agustus 2024")
	}

	// Unparseable input comes back as entered.
	if got := TanggalString("12/08/2024"); got != "12/08/2024" {
		t.Errorf("TanggalString fallback = %q, want input back", got)
	}
	if got := TanggalString(""); got != "" {
		t.Errorf("TanggalString empty = %q, want empty", got)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"SPK Honorer 2024", "SPK_Honorer_2024"},
		{"dok/umen:final?", "dokumenfinal"},
		{"laporan_akhir", "laporan_akhir"},
		{"///", "dokumen"},
		{"", "dokumen"},
	}

	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
