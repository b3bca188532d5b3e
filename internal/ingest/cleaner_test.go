package ingest

import "testing"

func TestCleanRemovesNonPrintable(t *testing.T) {
	got := Clean("Hello\x00\x01World")
	if got != "HelloWorld" {
		t.Errorf("Clean() = %q, want %q", got, "HelloWorld")
	}
}

func TestCleanExpandsLigatures(t *testing.T) {
	got := Clean("ﬁle ﬂight oﬀer eﬃcient baﬄe")
	want := "file flight offer efficient baffle"
	if got != want {
		t.Errorf("Clean() = %q, want %q", got, want)
	}
}

func TestCleanCollapsesWhitespace(t *testing.T) {
	got := Clean("This   is \t a\n\n  test")
	if got != "This is a test" {
		t.Errorf("Clean() = %q, want %q", got, "This is a test")
	}
}

func TestCleanRemovesHyphenation(t *testing.T) {
	got := Clean("exam-\nple")
	if got != "example" {
		t.Errorf("Clean() = %q, want %q", got, "example")
	}
}

func TestCleanTrims(t *testing.T) {
	got := Clean("  padded  ")
	if got != "padded" {
		t.Errorf("Clean() = %q, want %q", got, "padded")
	}
}

func TestCleanEmpty(t *testing.T) {
	if got := Clean(""); got != "" {
		t.Errorf("Clean(\"\") = %q, want empty", got)
	}
	if got := Clean("   \n\t  "); got != "" {
		t.Errorf("Clean(whitespace) = %q, want empty", got)
	}
}

func TestCleanDropsNonASCII(t *testing.T) {
	got := Clean("café menu")
	if got != "caf menu" {
		t.Errorf("Clean() = %q, want %q", got, "caf menu")
	}
}
