package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/skandula/ragserve/internal/adapter"
	"github.com/skandula/ragserve/internal/api"
	"github.com/skandula/ragserve/internal/config"
	"github.com/skandula/ragserve/internal/rag/ingest"
)

// UploadDocumentHandler godoc
// @Summary      Upload and ingest a document
// @Description  Receives a pdf, txt or csv file via multipart/form-data, chunks it, embeds the chunks and stores them in the vector collection.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "The document to ingest"
// @Success      200  {object}  api.DocumentUploadResponse
// @Failure      400  {object}  api.ErrorResponse "Unsupported or empty file"
// @Failure      500  {object}  api.ErrorResponse "Processing error"
// @Router       /documents/upload [post]
func UploadDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		logRH.Warn("Invalid Context by request ", "remote", r.RemoteAddr)
		return
	}

	if err := r.ParseMultipartForm(config.MaxUploadSizeBytes); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "File too large or bad request")
		return
	}

	fileReader, fileMetadata, err := r.FormFile("file")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	if fileMetadata.Filename == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "Filename is required")
		return
	}

	targetDir, errString := getTargetDirectory()
	if errString != "" {
		logRH.Error("Couldn't get target directory", "err", errString)
		WriteErrorResponse(w, http.StatusInternalServerError, errString)
		return
	}

	stagedName := fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(fileMetadata.Filename))
	stagedPath := filepath.Join(targetDir, stagedName)
	destinationFileWriter, err := os.Create(stagedPath)
	if err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "Storage error")
		return
	}
	defer destinationFileWriter.Close()

	if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
		WriteErrorResponse(w, http.StatusInternalServerError, "Write error")
		return
	}

	result, err := ragService.IngestDocument(r.Context(), fileMetadata.Filename, stagedPath)
	if err != nil {
		_ = os.Remove(stagedPath)
		if errors.Is(err, ingest.ErrUnsupportedExtension) || errors.Is(err, ingest.ErrEmptyDocument) {
			logRH.Warn("Rejected upload", "filename", fileMetadata.Filename, "error", err)
			WriteErrorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		logRH.Error("Error processing document", "filename", fileMetadata.Filename, "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Internal server error during document upload")
		return
	}

	logRH.Info("Document ingested", "filename", fileMetadata.Filename, "chunks", result.ChunksCreated)
	writeJsonResponse(w, http.StatusOK,
		adapter.ToUploadResponse(fileMetadata.Filename, result.ChunksCreated, result.DocumentIds))
}

// CollectionInfoHandler godoc
// @Summary      Get collection information
// @Description  Reports the collection name, stored vector count and status.
// @Tags         Documents
// @Produce      json
// @Success      200  {object}  api.DocumentInfoResponse
// @Failure      500  {object}  api.ErrorResponse
// @Router       /documents/info [get]
func CollectionInfoHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	info, err := ragService.CollectionInfo(r.Context())
	if err != nil {
		logRH.Error("Error getting collection info", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Error getting collection info")
		return
	}

	writeJsonResponse(w, http.StatusOK, api.DocumentInfoResponse{
		CollectionName: info.Name,
		TotalDocuments: info.PointsCount,
		Status:         info.Status,
	})
}

// DeleteCollectionHandler godoc
// @Summary      Delete the entire collection
// @Description  Removes every stored document vector. Use with caution!
// @Tags         Documents
// @Produce      json
// @Success      200  {object}  api.DeleteCollectionResponse
// @Failure      500  {object}  api.ErrorResponse
// @Router       /documents/collection [delete]
func DeleteCollectionHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}

	logRH.Warn("Collection deletion requested", "remote", r.RemoteAddr)
	if err := ragService.DeleteCollection(r.Context()); err != nil {
		logRH.Error("Error deleting collection", "error", err)
		WriteErrorResponse(w, http.StatusInternalServerError, "Error deleting collection")
		return
	}

	writeJsonResponse(w, http.StatusOK, api.DeleteCollectionResponse{
		Message: "Collection deleted successfully",
	})
}
