package harness

import (
	"errors"
	"reflect"
	"regexp"
	"testing"
)

func TestLeavesVisitsEveryLeafOnce(t *testing.T) {
	n := &InputNode{Map: map[string]*InputNode{
		"b": ListNode("x.bam", "y.bam"),
		"a": PathNode("z.bam"),
	}}
	got := n.Leaves()
	want := []string{"z.bam", "x.bam", "y.bam"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Leaves()=%v want %v", got, want)
	}
}

func TestRedirectRewritesMatchingLeaves(t *testing.T) {
	set := InputSet{
		"file": PathNode("/keep/abc123/reads.bam"),
		"ref":  PathNode("/data/ref.fa"),
		"nested": {Map: map[string]*InputNode{
			"idx": PathNode("/keep/abc123/reads.bam.bai"),
		}},
	}
	re := regexp.MustCompile(`^/keep/`)
	got := set.Redirect(re, "arv=")

	if p := got["file"].Path; p != "arv=abc123/reads.bam" {
		t.Fatalf("file=%q want %q", p, "arv=abc123/reads.bam")
	}
	if p := got["ref"].Path; p != "/data/ref.fa" {
		t.Fatalf("ref=%q want %q", p, "/data/ref.fa")
	}
	if p := got["nested"].Map["idx"].Path; p != "arv=abc123/reads.bam.bai" {
		t.Fatalf("nested idx=%q want %q", p, "arv=abc123/reads.bam.bai")
	}
}

func TestRedirectDoesNotMutateOriginal(t *testing.T) {
	set := InputSet{"file": PathNode("/keep/reads.bam")}
	_ = set.Redirect(regexp.MustCompile(`^/keep/`), "arv=")
	if p := set["file"].Path; p != "/keep/reads.bam" {
		t.Fatalf("original mutated: file=%q", p)
	}
}

func TestRedirectNilPatternIsNoop(t *testing.T) {
	set := InputSet{"file": PathNode("/keep/reads.bam")}
	got := set.Redirect(nil, "arv=")
	if p := got["file"].Path; p != "/keep/reads.bam" {
		t.Fatalf("file=%q want unchanged", p)
	}
}

func TestFlattenNamesNestedLeaves(t *testing.T) {
	set := InputSet{
		"reads": ListNode("a.fq", "b.fq"),
		"ref":   PathNode("ref.fa"),
	}
	got := set.Flatten()
	want := []NamedPath{
		{Name: "reads/0", Path: "a.fq"},
		{Name: "reads/1", Path: "b.fq"},
		{Name: "ref", Path: "ref.fa"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Flatten()=%v want %v", got, want)
	}
}

func TestFlattenCollapsesSingleElementList(t *testing.T) {
	set := InputSet{"file": ListNode("only.bam")}
	got := set.Flatten()
	want := []NamedPath{{Name: "file", Path: "only.bam"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Flatten()=%v want %v", got, want)
	}
}

func TestBindRejectsMissingInputs(t *testing.T) {
	d := Descriptor{Name: "identity", Expected: []string{"file"}}
	_, err := d.Bind(InputSet{"other": PathNode("x")})
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	var miss *MissingInputError
	if !errors.As(err, &miss) {
		t.Fatalf("err=%T want *MissingInputError", err)
	}
	if len(miss.Keys) != 1 || miss.Keys[0] != "file" {
		t.Fatalf("missing keys=%v want [file]", miss.Keys)
	}
}

func TestBindPassesThroughExtraInputs(t *testing.T) {
	d := Descriptor{Name: "modify", Expected: []string{"data"}}
	bound, err := d.Bind(InputSet{
		"data":  PathNode("in.tsv"),
		"extra": PathNode("aux.tsv"),
	})
	if err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if _, ok := bound["extra"]; !ok {
		t.Fatalf("extra input dropped during binding")
	}
}
