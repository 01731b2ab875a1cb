package idgen

import (
	"regexp"
	"testing"
)

func TestGenerators(t *testing.T) {
	for _, tc := range []struct {
		name   string
		gen    func() (string, error)
		prefix string
	}{
		{"Session", Session, SessionPrefix},
		{"Snapshot", Snapshot, SnapshotPrefix},
	} {
		t.Run(tc.name, func(t *testing.T) {
			pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(tc.prefix) + `[a-zA-Z0-9]+$`)
			for i := 0; i < 100; i++ {
				id, err := tc.gen()
				if err != nil {
					t.Fatalf("%s() error on iteration %d: %v", tc.name, i, err)
				}
				if len(id) != len(tc.prefix)+Length {
					t.Fatalf("%s() length = %d, want %d (id=%q)", tc.name, len(id), len(tc.prefix)+Length, id)
				}
				if !pattern.MatchString(id) {
					t.Fatalf("%s() = %q, does not match expected charset pattern", tc.name, id)
				}
			}
		})
	}
}

func TestSession_Uniqueness(t *testing.T) {
	const count = 10_000
	seen := make(map[string]struct{}, count)
	for i := 0; i < count; i++ {
		id, err := Session()
		if err != nil {
			t.Fatalf("Session() error on iteration %d: %v", i, err)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate ID after %d generations: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestGenerateWithPrefix(t *testing.T) {
	prefix := "test-"
	id, err := GenerateWithPrefix(prefix)
	if err != nil {
		t.Fatalf("GenerateWithPrefix(%q) error: %v", prefix, err)
	}
	if id[:len(prefix)] != prefix {
		t.Errorf("GenerateWithPrefix(%q) = %q, want prefix %q", prefix, id, prefix)
	}
}
