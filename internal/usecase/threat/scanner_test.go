package threat

import (
	"reflect"
	"testing"
)

func TestScan_CaseInsensitiveMultipleMatches(t *testing.T) {
	got := Scan("This is a BOMB threat")
	want := []string{"bomb", "threat"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Scan() = %v, want %v", got, want)
	}
}

func TestScan_KeywordListOrder(t *testing.T) {
	// "threat" appears before "bomb" in the text but after it in the
	// keyword list; the list order wins.
	got := Scan("a threat involving a bomb")
	want := []string{"bomb", "threat"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Scan() = %v, want %v", got, want)
	}
}

func TestScan_WholeWordOnly(t *testing.T) {
	if got := Scan("bombastic"); len(got) != 0 {
		t.Fatalf("Scan(\"bombastic\") = %v, want empty", got)
	}
	if got := Scan("the harmless diet"); len(got) != 0 {
		t.Fatalf("Scan(\"the harmless diet\") = %v, want empty", got)
	}
}

func TestScan_EmptyAndWhitespace(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n"} {
		if got := Scan(in); len(got) != 0 {
			t.Fatalf("Scan(%q) = %v, want empty", in, got)
		}
	}
}

func TestScan_Punctuation(t *testing.T) {
	got := Scan("He said: kill! Then... nothing.")
	want := []string{"kill"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Scan() = %v, want %v", got, want)
	}
}
