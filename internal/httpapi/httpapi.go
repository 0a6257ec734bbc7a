// Package httpapi exposes the server's two HTTP surfaces: /play (the live
// ad-replacement stream) and /admin/ads (CRUD over the ad library), grounded
// on the plain http.ServeMux + Deps-struct pattern used across the pack's
// route packages.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/streamshift/adrestreamer/internal/adlibrary"
	"github.com/streamshift/adrestreamer/internal/classifier"
	"github.com/streamshift/adrestreamer/internal/codec"
	"github.com/streamshift/adrestreamer/internal/configs"
	"github.com/streamshift/adrestreamer/internal/pipeline"
	"github.com/streamshift/adrestreamer/internal/recording"
	"github.com/streamshift/adrestreamer/internal/types"
	"github.com/streamshift/adrestreamer/utils/slogx"
)

// Deps bundles the collaborators route handlers need. Safe for concurrent
// use across simultaneous requests.
type Deps struct {
	Config       *configs.Config
	Classifier   classifier.Classifier
	Library      *adlibrary.Library
	Provider     adlibrary.Provider
	RecordingDir string // empty disables the diagnostic PCM tee
}

// NewMux builds the server's route table.
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /play", d.handlePlay)

	mux.HandleFunc("GET /admin/ads", d.handleListAds)
	mux.HandleFunc("POST /admin/ads", d.handleUploadAd)
	mux.HandleFunc("DELETE /admin/ads/{id}", d.handleDeleteAd)

	mux.Handle("GET /", http.FileServer(http.Dir("static")))

	return mux
}

// acceptsAAC reports whether header (an HTTP Accept header value) admits
// audio/aac, either directly, via audio/*, or via a bare */*.
func acceptsAAC(header string) bool {
	if header == "" {
		return true
	}
	for _, part := range strings.Split(header, ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		switch mediaType {
		case "*/*", "audio/*", types.OutputMimeType:
			return true
		}
	}
	return false
}

func (d Deps) handlePlay(w http.ResponseWriter, r *http.Request) {
	if !acceptsAAC(r.Header.Get("Accept")) {
		http.Error(w, "cannot satisfy Accept header with "+types.OutputMimeType, http.StatusNotAcceptable)
		return
	}

	source := r.URL.Query().Get("source")
	if source == "" {
		http.Error(w, "missing required query parameter: source", http.StatusBadRequest)
		return
	}

	action, err := pipeline.ParseAction(r.URL.Query().Get("action"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	requestID := uuid.NewString()

	headersSent := false
	ready := func(params codec.CodecParams) error {
		w.Header().Set("Content-Type", types.OutputMimeType)
		w.Header().Set("Transfer-Encoding", "chunked")
		w.WriteHeader(http.StatusOK)
		headersSent = true
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		return nil
	}

	var newRecorder pipeline.RecorderFactory
	if d.RecordingDir != "" {
		newRecorder = func(params codec.CodecParams) (*recording.Recorder, error) {
			return recording.New(filepath.Join(d.RecordingDir, requestID[:8]), requestID, params)
		}
	}

	err = pipeline.Run(r.Context(), pipeline.Request{
		ID:     requestID,
		Source: source,
		Action: action,
		Config: d.Config,
	}, pipeline.Deps{
		Classifier: d.Classifier,
		AdProvider: d.Provider,
	}, newRecorder, w, ready)
	if err != nil && !headersSent {
		http.Error(w, errors.Cause(err).Error(), http.StatusBadGateway)
		return
	}
	if err != nil {
		slog.Error("play request failed", slogx.Error(err), "source", source, "requestId", requestID)
	}
}

func (d Deps) handleListAds(w http.ResponseWriter, r *http.Request) {
	items, err := d.Library.List()
	if err != nil {
		http.Error(w, errors.Cause(err).Error(), http.StatusInternalServerError)
		return
	}

	type adJSON struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	out := make([]adJSON, len(items))
	for i, item := range items {
		out[i] = adJSON{ID: item.ID.String(), Name: item.Name}
	}

	writeJSON(w, out)
}

func (d Deps) handleUploadAd(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "bad multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}

	name := r.FormValue("name")
	if name == "" {
		http.Error(w, "missing required form field: name", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing required form field: file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	content := make([]byte, 0, 1<<20)
	buf := make([]byte, 32*1024)
	for {
		n, err := file.Read(buf)
		if n > 0 {
			content = append(content, buf[:n]...)
		}
		if err != nil {
			break
		}
	}

	id, err := d.Library.Insert(name, content)
	if err != nil {
		http.Error(w, errors.Cause(err).Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}{ID: id.String(), Name: name})
}

func (d Deps) handleDeleteAd(w http.ResponseWriter, r *http.Request) {
	id, err := adlibrary.ParseAdId(r.PathValue("id"))
	if err != nil {
		http.Error(w, "bad ad id: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := d.Library.Delete(id); err != nil {
		http.Error(w, errors.Cause(err).Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
