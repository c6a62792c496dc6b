// scraper/address_parser_test.go
package scraper

import (
	"reflect"
	"testing"
)

func TestSplitAddressesEnDash(t *testing.T) {
	got := SplitAddresses("5800 Eastern Ave – 1900 Brady St.")
	want := []string{"5800 Eastern Ave", "1900 Brady St."}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSplitAddressesHyphenAndWord(t *testing.T) {
	got := SplitAddresses("5800 Eastern Ave - 1900 Brady St and 6700 Division St")
	want := []string{"5800 Eastern Ave", "1900 Brady St", "6700 Division St"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSplitAddressesAmpersand(t *testing.T) {
	got := SplitAddresses("5800 Eastern Ave & 1900 Brady St.")
	want := []string{"5800 Eastern Ave", "1900 Brady St."}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSplitAddressesNoDelimiterReturnsTrimmedInput(t *testing.T) {
	got := SplitAddresses("  123 Main St  ")
	want := []string{"123 Main St"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSplitAddressesHyphenatedNameNotSplit(t *testing.T) {
	got := SplitAddresses("1200 Forty-Second St")
	want := []string{"1200 Forty-Second St"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSplitAddressesDropsShortFragments(t *testing.T) {
	// "W 4" is a delimiter artifact, shorter than the minimum length.
	got := SplitAddresses("5800 Eastern Ave – W 4 – 1900 Brady St")
	want := []string{"5800 Eastern Ave", "1900 Brady St"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSplitAddressesEmptyInput(t *testing.T) {
	if got := SplitAddresses("   "); got != nil {
		t.Fatalf("expected nil for blank input, got %v", got)
	}
}

func TestNormalizeAddressExpandsAbbreviations(t *testing.T) {
	cases := map[string]string{
		"5800 Eastern Ave.":   "5800 eastern avenue",
		"5800 EASTERN AVENUE": "5800 eastern avenue",
		"1900  Brady   St":    "1900 brady street",
		"Kimberly Rd":         "kimberly road",
		"W Central Park Blvd": "w central park boulevard",
	}
	for input, want := range cases {
		if got := NormalizeAddress(input); got != want {
			t.Errorf("NormalizeAddress(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNormalizeAddressEquality(t *testing.T) {
	a := NormalizeAddress("5800 Eastern Ave.")
	b := NormalizeAddress("  5800 eastern AVENUE ")
	if a != b {
		t.Fatalf("expected %q and %q to normalize equal", a, b)
	}
}
