package index

import (
	"os"
	"testing"
	"time"

	"github.com/starford/mathlinks/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "mathlinks-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func upsert(t *testing.T, db *DB, path string, data string) {
	t.Helper()
	if err := IndexFile(db, path, []byte(data), time.Now()); err != nil {
		t.Fatalf("IndexFile %s: %v", path, err)
	}
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	for _, table := range []string{"files", "headings", "blocks"} {
		var count int
		if err := db.conn.QueryRow(`SELECT count(*) FROM ` + table).Scan(&count); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}
}

func TestFileCache_RoundTrip(t *testing.T) {
	db := testDB(t)
	upsert(t, db, "Note.md", "---\nmathLink: \"$X$\"\nmathLink-blocks:\n  abc: def\n---\n# Intro\ntext ^abc\n## Details\n")

	c, err := db.FileCache("Note.md")
	if err != nil {
		t.Fatalf("FileCache: %v", err)
	}
	if c == nil {
		t.Fatal("expected cache for Note.md")
	}
	md := c.Metadata()
	if md.MathLink == nil || *md.MathLink != "$X$" {
		t.Errorf("mathLink = %v", md.MathLink)
	}
	if md.MathLinkBlocks["abc"] != "def" {
		t.Errorf("blocks = %v", md.MathLinkBlocks)
	}
	if len(c.Headings) != 2 || c.Headings[0].Text != "Intro" || c.Headings[1].Level != 2 {
		t.Errorf("headings = %+v", c.Headings)
	}
	if _, ok := c.Blocks["abc"]; !ok {
		t.Errorf("blocks = %+v", c.Blocks)
	}
}

func TestFileCache_NumericBlockID(t *testing.T) {
	db := testDB(t)
	upsert(t, db, "N.md", "---\nmathLink: N\nmathLink-blocks:\n  123: one\n---\nline ^123\n")

	c, err := db.FileCache("N.md")
	if err != nil || c == nil {
		t.Fatalf("FileCache = %v, %v", c, err)
	}
	if got := c.Metadata().MathLinkBlocks["123"]; got != "one" {
		t.Errorf("block 123 = %q, want one", got)
	}
	if _, ok := c.Blocks["123"]; !ok {
		t.Errorf("blocks = %+v", c.Blocks)
	}
}

func TestFileCache_Missing(t *testing.T) {
	db := testDB(t)
	c, err := db.FileCache("nope.md")
	if err != nil || c != nil {
		t.Errorf("FileCache(nope.md) = %v, %v; want nil, nil", c, err)
	}
}

func TestUpsertReplacesStructure(t *testing.T) {
	db := testDB(t)
	upsert(t, db, "up.md", "# Old\nline ^old\n")
	upsert(t, db, "up.md", "# New\n")

	c, _ := db.FileCache("up.md")
	if len(c.Headings) != 1 || c.Headings[0].Text != "New" {
		t.Errorf("headings = %+v", c.Headings)
	}
	if len(c.Blocks) != 0 {
		t.Errorf("stale blocks kept: %+v", c.Blocks)
	}
}

func TestDeleteFile(t *testing.T) {
	db := testDB(t)
	upsert(t, db, "del.md", "# Gone\n")
	if err := db.DeleteFile("del.md"); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	cs, _ := db.GetChecksum("del.md")
	if cs != "" {
		t.Errorf("deleted file still has checksum %q", cs)
	}
	var n int
	_ = db.conn.QueryRow(`SELECT count(*) FROM headings WHERE path = 'del.md'`).Scan(&n)
	if n != 0 {
		t.Errorf("headings left behind: %d", n)
	}
}

func TestGetChecksum_NotFound(t *testing.T) {
	db := testDB(t)
	cs, err := db.GetChecksum("nonexistent.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cs != "" {
		t.Errorf("expected empty checksum, got %q", cs)
	}
}

func TestResolveLinkpath(t *testing.T) {
	db := testDB(t)
	upsert(t, db, "Note.md", "root note")
	upsert(t, db, "Math/Algebra.md", "a")
	upsert(t, db, "Math/Note.md", "nested note")
	upsert(t, db, "Physics/Deep/Algebra.md", "b")

	cases := []struct {
		link, source, want string
		ok                 bool
	}{
		{"Note", "Other.md", "Note.md", true},
		{"Note.md", "Other.md", "Note.md", true},
		{"Note", "Math/Calc.md", "Note.md", true},
		{"Note", "Physics/x.md", "Note.md", true},
		{"Math/Note", "Other.md", "Math/Note.md", true},
		{"algebra", "Other.md", "Math/Algebra.md", true},
		{"Algebra", "Physics/Deep/x.md", "Physics/Deep/Algebra.md", true},
		{"Deep/Algebra", "Other.md", "Physics/Deep/Algebra.md", true},
		{"", "Math/Calc.md", "Math/Calc.md", true},
		{"Missing", "Other.md", "", false},
	}
	for _, tc := range cases {
		got, ok, err := db.ResolveLinkpath(tc.link, tc.source)
		if err != nil {
			t.Fatalf("ResolveLinkpath(%q): %v", tc.link, err)
		}
		if ok != tc.ok || got.Path != tc.want {
			t.Errorf("ResolveLinkpath(%q, %q) = %q, %v; want %q, %v", tc.link, tc.source, got.Path, ok, tc.want, tc.ok)
		}
	}
}

func TestListFiles(t *testing.T) {
	db := testDB(t)
	upsert(t, db, "b.md", "b")
	upsert(t, db, "a.md", "a")
	files, err := db.ListFiles()
	if err != nil {
		t.Fatalf("ListFiles: %v", err)
	}
	if len(files) != 2 || files[0] != (models.File{Path: "a.md"}) {
		t.Errorf("files = %+v", files)
	}
}
