package harness

import (
	"errors"
	"testing"
)

func TestPrefixResolverIsMounted(t *testing.T) {
	r := &PrefixResolver{Root: "/keep"}

	cases := []struct {
		path string
		want bool
	}{
		{"/keep/abc/reads.bam", true},
		{"/keep", true},
		{"arv=abc/reads.bam", true},
		{"/tmp/work/arv=abc/reads.bam", true},
		{"/data/reads.bam", false},
		{"/keepsake/reads.bam", false},
	}
	for _, tc := range cases {
		if got := r.IsMounted(tc.path); got != tc.want {
			t.Fatalf("IsMounted(%q)=%v want %v", tc.path, got, tc.want)
		}
	}
}

func TestPrefixResolverMountedLocation(t *testing.T) {
	r := &PrefixResolver{Root: "/keep"}

	got, err := r.MountedLocation("arv=abc/reads.bam")
	if err != nil {
		t.Fatalf("MountedLocation: %v", err)
	}
	if want := "/keep/abc/reads.bam"; got != want {
		t.Fatalf("MountedLocation=%q want %q", got, want)
	}

	got, err = r.MountedLocation("/keep/abc/reads.bam")
	if err != nil {
		t.Fatalf("MountedLocation: %v", err)
	}
	if want := "/keep/abc/reads.bam"; got != want {
		t.Fatalf("MountedLocation=%q want %q", got, want)
	}
}

func TestPrefixResolverMountedLocationStripsWorkDirPrefix(t *testing.T) {
	r := &PrefixResolver{Root: "/keep"}
	got, err := r.MountedLocation("/tmp/work/arv=abc/reads.bam")
	if err != nil {
		t.Fatalf("MountedLocation: %v", err)
	}
	if want := "/keep/abc/reads.bam"; got != want {
		t.Fatalf("MountedLocation=%q want %q", got, want)
	}
}

func TestPrefixResolverResolutionError(t *testing.T) {
	r := &PrefixResolver{Root: "/keep"}
	_, err := r.MountedLocation("/data/reads.bam")
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
	var resErr *ResolutionError
	if !errors.As(err, &resErr) {
		t.Fatalf("err=%T want *ResolutionError", err)
	}
	if resErr.Path != "/data/reads.bam" {
		t.Fatalf("resErr.Path=%q want %q", resErr.Path, "/data/reads.bam")
	}
}

func TestPrefixResolverDefaultMarker(t *testing.T) {
	r := &PrefixResolver{}
	if !r.IsMounted("arv=abc/reads.bam") {
		t.Fatalf("marker path not recognized without explicit marker")
	}
	got, err := r.MountedLocation("arv=abc/reads.bam")
	if err != nil {
		t.Fatalf("MountedLocation: %v", err)
	}
	if want := "abc/reads.bam"; got != want {
		t.Fatalf("MountedLocation=%q want %q", got, want)
	}
}
