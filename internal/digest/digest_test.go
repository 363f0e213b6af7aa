package digest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestBytes_KnownVector(t *testing.T) {
	// sha256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := String("abc"); got != want {
		t.Fatalf("String(abc) = %s, want %s", got, want)
	}
}

func TestFile_MatchesBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.json")
	content := []byte(`{"A": []}`)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}
	got, err := File(path)
	if err != nil {
		t.Fatalf("File: %v", err)
	}
	if got != Bytes(content) {
		t.Errorf("File digest %s != Bytes digest %s", got, Bytes(content))
	}

	if _, err := File(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("File on missing path should fail")
	}
}

func TestReader_MatchesString(t *testing.T) {
	got, err := Reader(strings.NewReader("abc"))
	if err != nil {
		t.Fatalf("Reader: %v", err)
	}
	if got != String("abc") {
		t.Errorf("Reader digest %s != String digest %s", got, String("abc"))
	}
}

func TestDigest_Properties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("identical input yields identical digest", prop.ForAll(
		func(s string) bool {
			return String(s) == String(string([]byte(s)))
		},
		gen.AnyString(),
	))

	properties.Property("appending a character changes the digest", prop.ForAll(
		func(s string, r rune) bool {
			return String(s) != String(s+string(r))
		},
		gen.AnyString(),
		gen.Rune(),
	))

	properties.TestingRun(t)
}
