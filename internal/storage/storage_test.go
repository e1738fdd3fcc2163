package storage

import (
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"
)

func TestLocalRoundTrip(t *testing.T) {
	c := NewWithProvider(NewLocalProvider(t.TempDir()), "imports", "exports")

	keys, err := c.ListImportFiles()
	if err != nil {
		t.Fatalf("List on a missing bucket: %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("List() = %v; want empty", keys)
	}

	for _, k := range []string{"friday.csv", "crates/sunday.optimize.csv"} {
		if err := c.UploadImportFile(k, strings.NewReader("title,artist\n")); err != nil {
			t.Fatalf("Upload %s: %v", k, err)
		}
	}

	keys, _ = c.ListImportFiles()
	if want := []string{"crates/sunday.optimize.csv", "friday.csv"}; !reflect.DeepEqual(keys, want) {
		t.Errorf("List() = %v; want %v", keys, want)
	}

	obj, err := c.DownloadImportFile("friday.csv")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	body, _ := io.ReadAll(obj.Body)
	obj.Body.Close()
	if string(body) != "title,artist\n" {
		t.Errorf("body = %q", body)
	}

	if err := c.DeleteImportFile("friday.csv"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := c.DownloadImportFile("friday.csv"); !errors.Is(err, ErrNotExist) {
		t.Errorf("Download after delete err = %v; want ErrNotExist", err)
	}
}

func TestExportsAreSeparateBucket(t *testing.T) {
	c := NewWithProvider(NewLocalProvider(t.TempDir()), "imports", "exports")

	if err := c.UploadExportFile("abc.csv", strings.NewReader("x")); err != nil {
		t.Fatalf("UploadExport: %v", err)
	}

	ok, err := c.ExportExists("abc.csv")
	if err != nil || !ok {
		t.Errorf("ExportExists() = %v, %v; want true", ok, err)
	}
	ok, _ = c.ExportExists("missing.csv")
	if ok {
		t.Error("ExportExists(missing) = true")
	}

	imports, _ := c.ListImportFiles()
	if len(imports) != 0 {
		t.Errorf("export leaked into imports: %v", imports)
	}
}
