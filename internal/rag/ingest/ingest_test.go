package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/skandula/ragserve/internal/domain/docmodel"
	"github.com/skandula/ragserve/internal/rag/vectorDB"
)

// --- Mocks for BatchIngest ---

type mockEmbedder struct {
	batchFunc func(ctx context.Context, chunks []string) ([][]float32, error)
}

func (m *mockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	return nil, nil
}
func (m *mockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	return m.batchFunc(ctx, chunks)
}

type mockVectorDB struct {
	upsertFunc func(ctx context.Context, chunks []docmodel.DocChunk, vectors [][]float32) error
}

func (m *mockVectorDB) Search(ctx context.Context, v []float32, k int) ([]docmodel.SearchHit, error) {
	return nil, nil
}
func (m *mockVectorDB) GetCachedAnswer(ctx context.Context, v []float32) (string, bool, error) {
	return "", false, nil
}
func (m *mockVectorDB) SaveToCache(ctx context.Context, id string, v []float32, a string) error {
	return nil
}
func (m *mockVectorDB) EnsureCollection(ctx context.Context) error { return nil }
func (m *mockVectorDB) UpsertBatch(ctx context.Context, chunks []docmodel.DocChunk, vectors [][]float32) error {
	return m.upsertFunc(ctx, chunks, vectors)
}
func (m *mockVectorDB) DeleteCollection(ctx context.Context) error { return nil }
func (m *mockVectorDB) CollectionInfo(ctx context.Context) (vectorDB.CollectionInfo, error) {
	return vectorDB.CollectionInfo{}, nil
}
func (m *mockVectorDB) HealthCheck(ctx context.Context) bool { return true }

// --- Unit Tests ---

func TestGetDocType(t *testing.T) {
	tests := []struct {
		path     string
		expected docmodel.DocType
	}{
		{"test.pdf", docmodel.PDF},
		{"REPORT.PDF", docmodel.PDF},
		{"notes.txt", docmodel.TXT},
		{"data.csv", docmodel.CSV},
		{"doc.docx", docmodel.ERR},
		{"image.png", docmodel.ERR},
		{"noextension", docmodel.ERR},
	}

	for _, tt := range tests {
		if got := getDocType(tt.path); got != tt.expected {
			t.Errorf("getDocType(%s) = %v; want %v", tt.path, got, tt.expected)
		}
	}
}

func TestSplitTextIntoChunks(t *testing.T) {
	text := "This is a long sentence. This is another sentence that will be split."
	limit := 30
	overlap := 5

	chunks := splitTextIntoChunks(text, limit, overlap)

	if len(chunks) < 2 {
		t.Errorf("Expected multiple chunks, got %d", len(chunks))
	}

	for i, c := range chunks {
		if len(c) > limit+overlap+2 {
			t.Errorf("Chunk %d exceeds limit: %d chars", i, len(c))
		}
	}
}

func TestSplitTextIntoChunks_ShortText(t *testing.T) {
	text := "short"
	chunks := splitTextIntoChunks(text, 1000, 200)
	if len(chunks) != 1 || chunks[0] != text {
		t.Errorf("Short text should come back unchanged, got %v", chunks)
	}
}

func TestBatchIngest(t *testing.T) {
	ctx := context.Background()
	chunks := make([]docmodel.DocChunk, 150) // Should trigger 2 batches (100 + 50)
	for i := range chunks {
		chunks[i] = docmodel.DocChunk{Chunk: "test content"}
	}

	callCount := 0
	vDB := &mockVectorDB{
		upsertFunc: func(ctx context.Context, c []docmodel.DocChunk, v [][]float32) error {
			callCount++
			return nil
		},
	}

	emb := &mockEmbedder{
		batchFunc: func(ctx context.Context, ch []string) ([][]float32, error) {
			return make([][]float32, len(ch)), nil
		},
	}

	err := BatchIngest(ctx, chunks, vDB, emb)

	if err != nil {
		t.Fatalf("BatchIngest failed: %v", err)
	}

	if callCount != 2 {
		t.Errorf("Expected 2 batches to be upserted, got %d", callCount)
	}
}

func TestBatchIngest_Error(t *testing.T) {
	vDB := &mockVectorDB{
		upsertFunc: func(ctx context.Context, c []docmodel.DocChunk, v [][]float32) error {
			return errors.New("upsert failed")
		},
	}
	emb := &mockEmbedder{
		batchFunc: func(ctx context.Context, ch []string) ([][]float32, error) {
			return make([][]float32, len(ch)), nil
		},
	}

	err := BatchIngest(context.Background(), []docmodel.DocChunk{{Chunk: "hi"}}, vDB, emb)
	if err == nil {
		t.Error("Expected error from BatchIngest, got nil")
	}
}

func TestPrepareChunks(t *testing.T) {
	pages := []rawPage{
		{Number: 1, Content: "Page one content."},
		{Number: 2, Content: "Page two content."},
		{Number: 3, Content: "   "},
	}
	doc := docmodel.Document{Id: "doc-1"}

	chunks := PrepareChunks(pages, doc, 1000, 200, "text-embedding-3-small")

	if len(chunks) != 2 {
		t.Errorf("Expected 2 chunks (blank page skipped), got %d", len(chunks))
	}

	if chunks[0].Doc.Id != "doc-1" || chunks[0].PageNum != 1 {
		t.Errorf("Metadata mismatch in chunk 0: %+v", chunks[0])
	}
	if chunks[0].ChunkId == chunks[1].ChunkId {
		t.Error("Chunk ids must be unique")
	}
}

func TestExtractCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "people.csv")
	content := "name,role\nada,engineer\ngrace,admiral\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing csv: %v", err)
	}

	pages, err := extractCSV(path)
	if err != nil {
		t.Fatalf("extractCSV failed: %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("Expected one page per data row, got %d", len(pages))
	}
	if !strings.Contains(pages[0].Content, "name: ada") || !strings.Contains(pages[0].Content, "role: engineer") {
		t.Errorf("Row was not rendered as header: value lines: %q", pages[0].Content)
	}
	if pages[1].Number != 2 {
		t.Errorf("Row number got %d, want 2", pages[1].Number)
	}
}

func TestExtractCSV_RaggedRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ragged.csv")
	content := "a,b\n1,2,3\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing csv: %v", err)
	}

	pages, err := extractCSV(path)
	if err != nil {
		t.Fatalf("extractCSV failed on ragged rows: %v", err)
	}
	if !strings.Contains(pages[0].Content, "column_3: 3") {
		t.Errorf("Extra field should get a positional name: %q", pages[0].Content)
	}
}

func TestIsEmptyContent(t *testing.T) {
	if !isEmptyContent([]rawPage{{Number: 1, Content: " \n\t "}}) {
		t.Error("Whitespace-only pages should count as empty")
	}
	if isEmptyContent([]rawPage{{Number: 1, Content: "x"}}) {
		t.Error("Non-blank page should not count as empty")
	}
}

func TestProcessDocument_UnsupportedExtension(t *testing.T) {
	_, err := ProcessDocument(context.Background(), "id-1", "virus.exe", "does-not-matter",
		&mockEmbedder{}, &mockVectorDB{})
	if !errors.Is(err, ErrUnsupportedExtension) {
		t.Errorf("got %v, want ErrUnsupportedExtension", err)
	}
}
