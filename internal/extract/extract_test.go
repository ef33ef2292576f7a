package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(body)); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestExtractTextFromBytes_ZipDocxNormalizes(t *testing.T) {
	doc := `<?xml version="1.0"?><w:document xmlns:w="ns"><w:body><w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p><w:p><w:r><w:t>React developer</w:t></w:r></w:p></w:body></w:document>`
	data := buildDocx(t, doc)

	text, err := ExtractTextFromBytes(context.Background(), data, "application/zip", "resume.docx")
	if err != nil {
		t.Fatalf("expected docx to extract from zip mime, got error: %v", err)
	}
	if !strings.Contains(text, "Jane Doe") {
		t.Fatalf("expected extracted text to contain name, got %q", text)
	}
	if !strings.Contains(text, "\n") {
		t.Fatalf("expected paragraph breaks in %q", text)
	}
}

func TestExtractTextFromBytes_RealZipRejected(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("notes.txt")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	_, err = ExtractTextFromBytes(context.Background(), buf.Bytes(), "application/zip", "notes.zip")
	if err == nil {
		t.Fatal("expected unsupported mime error for zip")
	}
	if !strings.Contains(err.Error(), "unsupported mime type: application/zip") {
		t.Fatalf("unexpected error: %v", err)
	}
}

type memObjectStore struct {
	objects map[string][]byte
}

func newMemObjectStore() *memObjectStore {
	return &memObjectStore{objects: map[string][]byte{}}
}

func (m *memObjectStore) Save(ctx context.Context, namespace string, fileName string, r io.Reader) (string, int64, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, "", err
	}
	key := namespace + "/" + fileName
	m.objects[key] = data
	return key, int64(len(data)), "application/octet-stream", nil
}

func (m *memObjectStore) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	data, ok := m.objects[storageKey]
	if !ok {
		return nil, errors.New("object not found: " + storageKey)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memObjectStore) SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	m.objects[storageKey] = data
	return int64(len(data)), nil
}

func TestExtractTextPersistsDerivedCopy(t *testing.T) {
	doc := `<?xml version="1.0"?><w:document xmlns:w="ns"><w:body><w:p><w:r><w:t>React developer</w:t></w:r></w:p></w:body></w:document>`
	store := newMemObjectStore()
	store.objects["resumes/abc_resume.docx"] = buildDocx(t, doc)

	text, err := ExtractText(context.Background(), store, "resumes/abc_resume.docx", mimeDOCX, "resume.docx")
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	if !strings.Contains(text, "React developer") {
		t.Fatalf("unexpected extracted text: %q", text)
	}

	derived, ok := store.objects["resumes/abc_resume.docx.extracted.txt"]
	if !ok {
		t.Fatal("expected derived .extracted.txt object")
	}
	if string(derived) != text {
		t.Fatalf("derived copy must match extracted text, got %q", derived)
	}
}

func TestExtractTextMissingObject(t *testing.T) {
	_, err := ExtractText(context.Background(), newMemObjectStore(), "resumes/missing.docx", mimeDOCX, "missing.docx")
	if err == nil {
		t.Fatal("expected error for missing object")
	}
}
