// backend/src/handlers/import_export_handler.go
package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/username/expensetracker/backend/src/exporter"
	"github.com/username/expensetracker/backend/src/importer"
	"github.com/username/expensetracker/backend/src/logger"
	"github.com/username/expensetracker/backend/src/security/validation"
	"github.com/username/expensetracker/backend/src/services"
)

// multipartOverhead leaves room for boundaries and headers around the file part.
const multipartOverhead = 1 << 20

type ImportExportHandler struct {
	service            services.ImportExportService
	maxUploadSizeBytes int64
}

func NewImportExportHandler(service services.ImportExportService, maxUploadSizeBytes int64) *ImportExportHandler {
	return &ImportExportHandler{service: service, maxUploadSizeBytes: maxUploadSizeBytes}
}

func (h *ImportExportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	format, err := importer.ParseSourceFormat(chi.URLParam(r, "format"))
	if err != nil {
		sendJSONError(w, err.Error(), http.StatusNotFound)
		return
	}
	filter, err := parsePurchaseFilter(r)
	if err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.service.Export(r.Context(), userID, format, filter)
	if err != nil {
		if errors.Is(err, exporter.ErrNothingToExport) {
			sendJSONError(w, err.Error(), http.StatusNotFound)
			return
		}
		logger.FromContext(r.Context()).Error("Export failed", "format", format, "error", err)
		sendJSONError(w, "Failed to export data", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, result.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Data); err != nil {
		logger.FromContext(r.Context()).Error("Error writing export response", "error", err)
	}
}

func (h *ImportExportHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		sendJSONError(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	format, err := importer.ParseSourceFormat(chi.URLParam(r, "format"))
	if err != nil {
		sendJSONError(w, err.Error(), http.StatusNotFound)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSizeBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUploadSizeBytes); err != nil {
		log.Warn("Failed to parse multipart form or request too large", "error", err, "limit", h.maxUploadSizeBytes)
		sendJSONError(w, fmt.Sprintf("Failed to read upload or file too large (max %d bytes)", h.maxUploadSizeBytes), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		log.Warn("Failed to retrieve file from request", "error", err)
		sendJSONError(w, "No file uploaded. Use the 'file' field.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if fileHeader.Size > h.maxUploadSizeBytes {
		log.Warn("Uploaded file too large", "fileSize", fileHeader.Size, "limit", h.maxUploadSizeBytes)
		sendJSONError(w, fmt.Sprintf("File too large (max %d bytes)", h.maxUploadSizeBytes), http.StatusBadRequest)
		return
	}

	extFormat, err := validation.ValidateUploadExtension(fileHeader.Filename)
	if err != nil {
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if extFormat != string(format) {
		sendJSONError(w, fmt.Sprintf("File extension does not match the %s import", format), http.StatusBadRequest)
		return
	}
	if err := validation.ValidateFileContent(file, string(format)); err != nil {
		log.Warn("File content validation failed", "filename", fileHeader.Filename, "error", err)
		sendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.Info("Processing import request", "filename", fileHeader.Filename, "format", format)
	outcome, err := h.service.Import(r.Context(), userID, format, file)
	if err != nil {
		if errors.Is(err, importer.ErrContainer) {
			sendJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Error("Import failed", "error", err)
		sendJSONError(w, "Failed to import data", http.StatusInternalServerError)
		return
	}

	if outcome.AllFailed() {
		sendJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":    "No records were imported",
			"summary":  outcome.Summary,
			"imported": outcome.Imported,
			"errors":   outcome.Errors,
		})
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"message":  fmt.Sprintf("Imported %d of %d records", outcome.Summary.Imported, outcome.Summary.TotalRows),
		"summary":  outcome.Summary,
		"imported": outcome.Imported,
		"errors":   outcome.Errors,
	})
}
