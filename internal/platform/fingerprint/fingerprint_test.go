package fingerprint

import "testing"

func TestHash_OrderIndependent(t *testing.T) {
	t.Parallel()

	a := []Tuple{
		{ID: "s1", Quarter: 1, Position: "GS", ValueA: 5, ValueB: 3},
		{ID: "s2", Quarter: 1, Position: "GA", ValueA: 2, ValueB: 1},
		{ID: "s3", Quarter: 2, Position: "GS", ValueA: 4, ValueB: 2},
	}
	b := []Tuple{a[2], a[0], a[1]}

	if Hash(a) != Hash(b) {
		t.Fatal("same tuple set in different order must hash identically")
	}
}

func TestHash_ContentSensitive(t *testing.T) {
	t.Parallel()

	a := []Tuple{{ID: "s1", Quarter: 1, Position: "GS", ValueA: 5, ValueB: 3}}
	b := []Tuple{{ID: "s1", Quarter: 1, Position: "GS", ValueA: 6, ValueB: 3}}

	if Hash(a) == Hash(b) {
		t.Fatal("changed value must change the fingerprint")
	}
}

func TestHash_Empty(t *testing.T) {
	t.Parallel()

	if Hash(nil) != "empty" {
		t.Fatalf("empty input fingerprint = %q, want %q", Hash(nil), "empty")
	}
}
