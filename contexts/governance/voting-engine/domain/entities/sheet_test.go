package entities

import (
	"testing"
	"time"
)

func TestCalculateSheetExpiresAtEstablishment(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	got := CalculateSheetExpiresAt(date, ProtocolTypeEstablishment)
	want := time.Date(2024, 3, 16, 23, 59, 59, 999_000_000, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expires at = %v, want %v", got, want)
	}
}

func TestCalculateSheetExpiresAtGeneral(t *testing.T) {
	date := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	got := CalculateSheetExpiresAt(date, ProtocolTypeGeneral)
	want := time.Date(2024, 4, 15, 23, 59, 59, 999_000_000, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expires at = %v, want %v", got, want)
	}
}

func TestCalculateSheetExpiresAtIgnoresTimeOfDayAndZone(t *testing.T) {
	kyiv := time.FixedZone("EET", 2*60*60)
	date := time.Date(2024, 3, 1, 22, 30, 0, 0, kyiv)
	got := CalculateSheetExpiresAt(date, ProtocolTypeEstablishment)
	want := time.Date(2024, 3, 16, 23, 59, 59, 999_000_000, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expires at = %v, want %v", got, want)
	}
}

func TestCalculateSheetExpiresAtCrossesMonthBoundary(t *testing.T) {
	date := time.Date(2024, 12, 25, 0, 0, 0, 0, time.UTC)
	got := CalculateSheetExpiresAt(date, ProtocolTypeEstablishment)
	want := time.Date(2025, 1, 9, 23, 59, 59, 999_000_000, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expires at = %v, want %v", got, want)
	}
}

func TestSheetOpenFor(t *testing.T) {
	expiry := time.Date(2024, 3, 16, 23, 59, 59, 999_000_000, time.UTC)
	sheet := Sheet{Status: SheetStatusOpen, ExpiresAt: expiry}

	if !sheet.OpenFor(expiry.Add(-time.Minute)) {
		t.Fatalf("expected sheet open before expiry")
	}
	if sheet.OpenFor(expiry) {
		t.Fatalf("expected sheet closed at expiry instant")
	}
	sheet.Status = SheetStatusClosed
	if sheet.OpenFor(expiry.Add(-time.Minute)) {
		t.Fatalf("expected closed sheet to reject votes")
	}
}
