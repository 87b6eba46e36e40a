package http

import (
	"context"
	"io"
	"net/http"

	"finbook/internal/ai"
)

// handleScanReceipt accepts a multipart image upload under the "receipt"
// field, runs it through the collaborator and records the extracted expense.
// Whatever goes wrong behind the boundary, the client sees one fixed
// message.
func (s *Server) handleScanReceipt(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	if err := r.ParseMultipartForm(s.maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}
	file, header, err := r.FormFile("receipt")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing receipt file")
		return
	}
	defer file.Close()

	image, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unreadable receipt file")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(image)
	}

	// The extraction is never cancelled once issued: if the client goes
	// away mid-request the result is still recorded when it arrives.
	expense, err := s.tracker.ScanReceipt(context.WithoutCancel(r.Context()), image, mimeType)
	if err != nil {
		writeError(w, http.StatusBadGateway, ai.ReceiptFailureMessage)
		return
	}
	writeJSON(w, http.StatusCreated, expense)
}
