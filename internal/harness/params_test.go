package harness

import (
	"errors"
	"testing"
)

func TestBuildParamsPrecedence(t *testing.T) {
	globals := Params{"options": "--global", "threads": 4}
	defaults := Params{"options": "--tool", "path": "daisy modify-string"}
	bound := InputSet{"data": PathNode("in.tsv")}

	p := BuildParams(globals, defaults, bound, "out.tsv")

	if got := p["options"]; got != "--tool" {
		t.Fatalf("options=%v want tool default to win over globals", got)
	}
	if got := p["threads"]; got != 4 {
		t.Fatalf("threads=%v want 4", got)
	}
	if got := p["data"]; got != "in.tsv" {
		t.Fatalf("data=%v want %q", got, "in.tsv")
	}
	if got := p["output_file"]; got != "out.tsv" {
		t.Fatalf("output_file=%v want %q", got, "out.tsv")
	}
}

func TestBuildParamsCollapsesSingleElementList(t *testing.T) {
	p := BuildParams(nil, nil, InputSet{"data": ListNode("only.tsv")}, "out")
	if got := p["data"]; got != "only.tsv" {
		t.Fatalf("data=%v want single path string", got)
	}
}

func TestExpandTemplate(t *testing.T) {
	p := Params{
		"path":    "daisy modify-string",
		"options": "--upper",
		"data":    "in.tsv",
	}
	got, err := ExpandTemplate("{path} {options} {data}", p)
	if err != nil {
		t.Fatalf("ExpandTemplate: %v", err)
	}
	if want := "daisy modify-string --upper in.tsv"; got != want {
		t.Fatalf("ExpandTemplate=%q want %q", got, want)
	}
}

func TestExpandTemplateJoinsLists(t *testing.T) {
	p := Params{"data": []string{"a.tsv", "b.tsv"}}
	got, err := ExpandTemplate("{data}", p)
	if err != nil {
		t.Fatalf("ExpandTemplate: %v", err)
	}
	if want := "a.tsv b.tsv"; got != want {
		t.Fatalf("ExpandTemplate=%q want %q", got, want)
	}
}

func TestExpandTemplateFailsFastOnUnboundSlot(t *testing.T) {
	_, err := ExpandTemplate("{path} {missing}", Params{"path": "cat"})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	var unbound *UnboundSlotError
	if !errors.As(err, &unbound) {
		t.Fatalf("err=%T want *UnboundSlotError", err)
	}
	if unbound.Slot != "missing" {
		t.Fatalf("unbound.Slot=%q want %q", unbound.Slot, "missing")
	}
}
