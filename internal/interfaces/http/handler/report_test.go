package handler

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newReportRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := gin.New()
	r.POST("/v1/reports/generate", NewReportHandler(newHandlerService(t), 1<<20, log).Generate)
	return r
}

func multipartBody(t *testing.T, fields map[string]string, files map[string][2]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			t.Fatalf("WriteField(%s): %v", name, err)
		}
	}
	for field, nameAndContent := range files {
		fw, err := w.CreateFormFile(field, nameAndContent[0])
		if err != nil {
			t.Fatalf("CreateFormFile(%s): %v", field, err)
		}
		if _, err := fw.Write([]byte(nameAndContent[1])); err != nil {
			t.Fatalf("write file %s: %v", field, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestReportGenerateMarkdown(t *testing.T) {
	router := newReportRouter(t)

	body, contentType := multipartBody(t, map[string]string{
		"project_name":  "Neubau Campus",
		"location":      "Dresden",
		"project_type":  "office",
		"federal_state": "Sachsen",
		"export_format": "markdown",
	}, map[string][2]string{
		"room_book": {"raumbuch.csv", "room_type,area_m2\nBüro,850\nBesprechung,850\n"},
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/reports/generate", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Disposition"); !strings.Contains(got, "Erlaeuterungsbericht_Neubau_Campus.md") {
		t.Errorf("Content-Disposition = %q", got)
	}

	md := w.Body.String()
	for _, want := range []string{
		"# Neubau Campus",
		"## Inhaltsverzeichnis",
		"## A.1 Allgemeines",
		"## B. Kostenschätzung",
		"**Kostenschätzung nach DIN 276 (KG 400)**",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestReportGenerateDefaultsToDocx(t *testing.T) {
	router := newReportRouter(t)

	body, contentType := multipartBody(t, map[string]string{
		"project_name":  "Neubau Campus",
		"location":      "Dresden",
		"project_type":  "office",
		"federal_state": "Sachsen",
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/reports/generate", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Disposition"); !strings.Contains(got, ".docx") {
		t.Errorf("Content-Disposition = %q", got)
	}
	data := w.Body.Bytes()
	if len(data) < 4 || data[0] != 'P' || data[1] != 'K' {
		t.Error("default export is not a docx (zip) file")
	}
}

func TestReportGenerateRejectsUnknownFormat(t *testing.T) {
	router := newReportRouter(t)

	body, contentType := multipartBody(t, map[string]string{
		"project_name":  "Neubau Campus",
		"location":      "Dresden",
		"project_type":  "office",
		"federal_state": "Sachsen",
		"export_format": "pdf",
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/reports/generate", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "4004") {
		t.Errorf("body missing export error code: %s", w.Body.String())
	}
}

func TestReportGenerateRejectsUnparsableUpload(t *testing.T) {
	router := newReportRouter(t)

	body, contentType := multipartBody(t, map[string]string{
		"project_name":  "Neubau Campus",
		"location":      "Dresden",
		"project_type":  "office",
		"federal_state": "Sachsen",
		"export_format": "markdown",
	}, map[string][2]string{
		"room_book": {"raumbuch.pdf", "%PDF-1.4 nicht lesbar"},
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/reports/generate", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "2002") {
		t.Errorf("body missing upload error code: %s", w.Body.String())
	}
}

func TestReportGenerateInvalidContext(t *testing.T) {
	router := newReportRouter(t)

	body, contentType := multipartBody(t, map[string]string{
		"project_name": "Neubau Campus",
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/reports/generate", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "2001") {
		t.Errorf("body missing context error code: %s", w.Body.String())
	}
}
