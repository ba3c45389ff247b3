package upload

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestMoveFileIntoNewDirectory(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src.csv")
	if err := os.WriteFile(src, []byte("data"), 0o644); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(base, "nested", "deep", "dst.csv")

	if err := moveFile(src, dst); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Error("source should be gone after move")
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "data" {
		t.Errorf("dst content = %q", got)
	}
}

func buildUploadRequest(t *testing.T, fields map[string]string, fileName, fileBody string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	if fileName != "" {
		fw, err := w.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(fileBody)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, w.FormDataContentType()
}

func TestParseUploadForm(t *testing.T) {
	body, contentType := buildUploadRequest(t, map[string]string{
		"portfolio":   "Alder",
		"funder":      "Kings",
		"report_date": "07/15/2026",
	}, "kings.csv", "Advance ID\nK1\n")

	req := httptest.NewRequest("POST", "/upload/funder", body)
	req.Header.Set("Content-Type", contentType)

	form, err := parseUploadForm(req, true)
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(form.tempPath)

	if form.portfolio != "Alder" || form.funderName != "Kings" || form.fileName != "kings.csv" {
		t.Errorf("form = %+v", form)
	}
	if !strings.HasSuffix(form.tempPath, ".csv") {
		t.Errorf("temp path %q should keep the extension", form.tempPath)
	}
	data, err := os.ReadFile(form.tempPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "K1") {
		t.Error("temp copy should hold the uploaded bytes")
	}
}

func TestParseUploadFormRejectsBadInput(t *testing.T) {
	cases := []struct {
		name   string
		fields map[string]string
		file   string
	}{
		{"unknown portfolio", map[string]string{"portfolio": "Nope", "funder": "Kings", "report_date": "07/15/2026"}, "a.csv"},
		{"missing funder", map[string]string{"portfolio": "Alder", "report_date": "07/15/2026"}, "a.csv"},
		{"missing date", map[string]string{"portfolio": "Alder", "funder": "Kings"}, "a.csv"},
		{"missing file", map[string]string{"portfolio": "Alder", "funder": "Kings", "report_date": "07/15/2026"}, ""},
	}
	for _, c := range cases {
		body, contentType := buildUploadRequest(t, c.fields, c.file, "x")
		req := httptest.NewRequest("POST", "/upload/funder", body)
		req.Header.Set("Content-Type", contentType)
		if form, err := parseUploadForm(req, true); err == nil {
			os.Remove(form.tempPath)
			t.Errorf("%s: expected error", c.name)
		}
	}
}
