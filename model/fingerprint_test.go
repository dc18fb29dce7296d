package model

import "testing"

func TestTitleFingerprint(t *testing.T) {
	if got := TitleFingerprint(""); got != 0 {
		t.Fatalf("TitleFingerprint(\"\") = %d, want 0", got)
	}
	a := TitleFingerprint("Artist - Song")
	b := TitleFingerprint("Artist - Song")
	if a != b {
		t.Fatal("fingerprint not deterministic")
	}
	if a == TitleFingerprint("Artist - Other") {
		t.Fatal("distinct titles collided")
	}
	// Order matters.
	if TitleFingerprint("ab") == TitleFingerprint("ba") {
		t.Fatal("fingerprint ignores byte order")
	}
}

func TestStatusFingerprint(t *testing.T) {
	base := StatusFingerprint(true, 12, 128)

	if base == StatusFingerprint(false, 12, 128) {
		t.Error("playing flag not observed")
	}
	if base == StatusFingerprint(true, 13, 128) {
		t.Error("volume not observed")
	}
	if base == StatusFingerprint(true, 12, 192) {
		t.Error("bitrate not observed")
	}
	if base != StatusFingerprint(true, 12, 128) {
		t.Error("fingerprint not deterministic")
	}
}

func TestFingerprintsFromSnapshot(t *testing.T) {
	s := StatusSnapshot{Playing: true, Title: "x", Volume: 5, Bitrate: 64}
	title, status := Fingerprints(s)
	if title != TitleFingerprint("x") {
		t.Error("title digest mismatch")
	}
	if status != StatusFingerprint(true, 5, 64) {
		t.Error("status digest mismatch")
	}
}
