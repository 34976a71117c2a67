package termcolors

import (
	"testing"

	"github.com/muesli/termenv"
)

func TestColorToX11_ANSIColor(t *testing.T) {
	got := colorToX11(termenv.ANSIColor(0))
	if got != "rgb:0000/0000/0000" {
		t.Fatalf("colorToX11(ANSIColor(0)) = %q, want %q", got, "rgb:0000/0000/0000")
	}
}

func TestColorToX11_Nil(t *testing.T) {
	if got := colorToX11(nil); got != "" {
		t.Fatalf("colorToX11(nil) = %q, want empty", got)
	}
}

func TestResponder_AnswersKnownQueries(t *testing.T) {
	h := Hints{FG: "rgb:ffff/ffff/ffff", BG: "rgb:0000/0000/0000"}
	r := h.Responder()

	if resp, ok := r("10"); !ok || resp != h.FG {
		r10 := resp
		t.Fatalf("r(10) = (%q, %v), want (%q, true)", r10, ok, h.FG)
	}
	if resp, ok := r("11"); !ok || resp != h.BG {
		t.Fatalf("r(11) = (%q, %v), want (%q, true)", resp, ok, h.BG)
	}
	if _, ok := r("12"); ok {
		t.Fatal("r(12) should not be answered")
	}
}

func TestResponder_EmptyHintDeclines(t *testing.T) {
	r := Hints{}.Responder()
	if _, ok := r("10"); ok {
		t.Fatal("expected declined response for an undetected foreground")
	}
}
