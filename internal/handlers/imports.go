package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"lectura-dashboard/internal/app"
	"lectura-dashboard/internal/models"
	"lectura-dashboard/internal/services"
)

const multipartMemory = 32 << 20

type ImportHandler struct {
	ctrl           *app.Controller
	maxUploadBytes int64
}

func NewImportHandler(ctrl *app.Controller, maxUploadBytes int64) *ImportHandler {
	return &ImportHandler{ctrl: ctrl, maxUploadBytes: maxUploadBytes}
}

func uploadMeta(r *http.Request) models.UploadMetadata {
	return models.UploadMetadata{
		ClassName: r.FormValue("class_name"),
		Lecturer:  r.FormValue("lecturer"),
		Date:      r.FormValue("date"),
		Duration:  r.FormValue("duration"),
	}
}

// readFormFile parses the multipart body and returns the "file" part.
func (h *ImportHandler) readFormFile(w http.ResponseWriter, r *http.Request) (data []byte, filename, mimeType string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResp("FILE_TOO_LARGE", "File exceeds the upload limit", r))
			return nil, "", "", false
		}
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid multipart form", r))
		return nil, "", "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "No file provided", map[string]string{"file": "file is required"}, r))
		return nil, "", "", false
	}
	defer file.Close()

	data, err = io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Failed to read file", r))
		return nil, "", "", false
	}

	mimeType = header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	return data, header.Filename, mimeType, true
}

// Upload adds a recorded lecture. The assistant transcribes and summarises it.
func (h *ImportHandler) Upload(w http.ResponseWriter, r *http.Request) {
	data, filename, mimeType, ok := h.readFormFile(w, r)
	if !ok {
		return
	}
	if !strings.HasPrefix(mimeType, "video/") && !strings.HasPrefix(mimeType, "audio/") {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Unsupported file type",
			map[string]string{"file": "must be an audio or video file"}, r))
		return
	}

	lecture, err := h.ctrl.Upload(r.Context(), app.MediaUpload{
		Meta:     uploadMeta(r),
		Filename: filename,
		MIMEType: mimeType,
		Data:     data,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, lecture)
}

func (h *ImportHandler) ImportTranscript(w http.ResponseWriter, r *http.Request) {
	data, filename, _, ok := h.readFormFile(w, r)
	if !ok {
		return
	}
	if !services.SupportedTranscriptExt(filename) {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Unsupported file type",
			map[string]string{"file": "must be .txt, .pdf or .docx"}, r))
		return
	}

	lecture, err := h.ctrl.ImportTranscript(r.Context(), app.TranscriptUpload{
		Meta:     uploadMeta(r),
		Subject:  r.FormValue("subject"),
		Filename: filename,
		Data:     data,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, lecture)
}

func (h *ImportHandler) ImportYouTube(w http.ResponseWriter, r *http.Request) {
	var req models.ImportYouTubeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	lecture, created, err := h.ctrl.ImportYouTube(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	writeJSON(w, status, lecture)
}
