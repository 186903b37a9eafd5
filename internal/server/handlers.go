package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/guitartube/internal/models"
	"github.com/desertthunder/guitartube/internal/shared"
	"github.com/desertthunder/guitartube/internal/tasks"
	"github.com/desertthunder/guitartube/internal/variants"
)

const (
	immutableCache = "public, max-age=31536000, immutable"
	suggestLimit   = 10
)

// DiagramHandler draws diagrams on demand from their variant key, e.g.
// GET /diagrams/C%23m_barre_4_dark.svg. Keys fully determine the output, so responses are
// cached forever and revalidated by checksum.
type DiagramHandler struct {
	engine *tasks.RenderEngine
	logger *log.Logger
}

// NewDiagramHandler creates a DiagramHandler over engine.
func NewDiagramHandler(engine *tasks.RenderEngine, logger *log.Logger) *DiagramHandler {
	return &DiagramHandler{engine: engine, logger: logger}
}

// Routes implements [Handler].
func (h *DiagramHandler) Routes() []string {
	return []string{"GET /diagrams/{file}"}
}

// ServeHTTP implements [http.Handler].
func (h *DiagramHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key, ok := strings.CutSuffix(url.PathEscape(r.PathValue("file")), variants.Extension)
	if !ok {
		writeError(w, http.StatusNotFound, "diagrams are served as "+variants.Extension)
		return
	}

	_, svg, err := h.engine.DrawKey(key)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("failed to draw diagram", "key", key, "error", err)
		}
		writeError(w, status, err.Error())
		return
	}

	data := []byte(svg)
	etag := strconv.Quote(shared.Checksum(data))
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", immutableCache)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", tasks.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		w.Write(data)
	}
}

// ChordHandler serves the chord table as JSON.
//
//	GET /chords         every chord name, or fuzzy suggestions for ?q=
//	GET /chords/{name}  voicings of name, with diagram keys for ?theme= (default light)
type ChordHandler struct {
	engine *tasks.RenderEngine
}

// NewChordHandler creates a ChordHandler over the engine's resolver.
func NewChordHandler(engine *tasks.RenderEngine) *ChordHandler {
	return &ChordHandler{engine: engine}
}

// Routes implements [Handler].
func (h *ChordHandler) Routes() []string {
	return []string{"GET /chords", "GET /chords/{name}"}
}

// VoicingResponse is one voicing of a chord with the key of its diagram.
type VoicingResponse struct {
	Shape models.ChordShape `json:"shape"`
	Key   string            `json:"key"`
	URL   string            `json:"url"`
}

// ChordResponse is the body of GET /chords/{name}.
type ChordResponse struct {
	Name     string            `json:"name"`
	Voicings []VoicingResponse `json:"voicings"`
}

// ServeHTTP implements [http.Handler].
func (h *ChordHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "" {
		h.list(w, r)
		return
	}

	theme := models.ThemeLight
	if q := r.URL.Query().Get("theme"); q != "" {
		t, err := models.ParseTheme(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		theme = t
	}

	voicings, err := h.engine.Resolver().Voicings(name)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	resp := ChordResponse{Name: name, Voicings: make([]VoicingResponse, 0, len(voicings))}
	for _, v := range voicings {
		key, err := variants.BuildKey(name, v.PositionType(), v.BaseFret(), theme)
		if err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}
		resp.Voicings = append(resp.Voicings, VoicingResponse{
			Shape: v,
			Key:   key,
			URL:   "/diagrams/" + key + variants.Extension,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ChordHandler) list(w http.ResponseWriter, r *http.Request) {
	resolver := h.engine.Resolver()
	if q := r.URL.Query().Get("q"); q != "" {
		names := resolver.Suggest(q, suggestLimit)
		if names == nil {
			names = []string{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"query": q, "chords": names})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"chords": resolver.Names()})
}

// HealthHandler reports liveness.
type HealthHandler struct {
	version string
}

// NewHealthHandler creates a HealthHandler reporting version.
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{version: version}
}

// Routes implements [Handler].
func (h *HealthHandler) Routes() []string { return []string{"GET /health"} }

// ServeHTTP implements [http.Handler].
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": h.version})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidKeyComponent), errors.Is(err, shared.ErrInvalidTheme):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// New builds a router serving diagrams, chords and health with logging and recovery
// middleware. Extra handlers, such as the web gallery, are registered after the built-ins.
func New(engine *tasks.RenderEngine, logger *log.Logger, version string, extra ...Handler) *BasicRouter {
	router := NewBasicRouter()
	router.Use(Recover(logger), Logging(logger))
	router.Handler(NewHealthHandler(version))
	router.Handler(NewDiagramHandler(engine, logger))
	router.Handler(NewChordHandler(engine))
	for _, h := range extra {
		router.Handler(h)
	}
	return router
}
