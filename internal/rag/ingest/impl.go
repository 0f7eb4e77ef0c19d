package ingest

import (
	"path/filepath"
	"strings"

	"github.com/skandula/ragserve/internal/adapter/utils"
	"github.com/skandula/ragserve/internal/domain/docmodel"
)

//splitter

func splitTextIntoChunks(text string, limit int, overlap int) []string {
	var chunks []string

	// If text is already small enough, just return it
	if len(text) <= limit {
		return []string{text}
	}

	// Separators ordered from "best" to "worst" for semantic meaning
	separators := []string{"\n\n", "\n", ". ", " ", ""}

	var splitChar string
	found := false
	for _, s := range separators {
		if strings.Contains(text, s) {
			splitChar = s
			found = true
			break
		}
	}

	if !found {
		// Hard cut if no separator found (rare)
		return []string{text[:limit]}
	}

	parts := strings.Split(text, splitChar)
	var currentChunk strings.Builder

	for _, part := range parts {
		// If adding the part exceeds the limit
		if currentChunk.Len()+len(part)+len(splitChar) > limit {
			if currentChunk.Len() > 0 {
				chunks = append(chunks, currentChunk.String())
			}

			// Handle overlap: start the next chunk with the end of the previous one
			overlapContent := ""
			if currentChunk.Len() > overlap {
				overlapContent = currentChunk.String()[currentChunk.Len()-overlap:]
			}

			currentChunk.Reset()
			currentChunk.WriteString(overlapContent)
		}

		if currentChunk.Len() > 0 && splitChar != "" {
			currentChunk.WriteString(splitChar)
		}
		currentChunk.WriteString(part)
	}

	if currentChunk.Len() > 0 {
		chunks = append(chunks, currentChunk.String())
	}

	return chunks
}

func getDocType(docPath string) docmodel.DocType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".pdf":
		return docmodel.PDF
	case ".txt":
		return docmodel.TXT
	case ".csv":
		return docmodel.CSV
	default:
		return docmodel.ERR
	}
}

// PrepareChunks splits each page and tags every chunk with its source metadata.
func PrepareChunks(pages []rawPage, doc docmodel.Document, chunkSize int, overlap int, embeddingModel string) []docmodel.DocChunk {
	var allChunks []docmodel.DocChunk

	for _, page := range pages {
		if strings.TrimSpace(page.Content) == "" {
			continue
		}
		stringChunks := splitTextIntoChunks(page.Content, chunkSize, overlap)

		for i, text := range stringChunks {
			allChunks = append(allChunks, docmodel.DocChunk{
				Doc:            doc,
				ChunkId:        utils.GetNewUUID(),
				Chunk:          text,
				PageNum:        page.Number,
				ChunkPageOrder: i,
				EmbeddingModel: embeddingModel,
			})
		}
	}

	return allChunks
}
