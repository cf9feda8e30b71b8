package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/fredcamaral/slideforge/internal/adapters/secondary/state"
	"github.com/fredcamaral/slideforge/internal/domain/entities"
	"github.com/fredcamaral/slideforge/internal/domain/services"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string    `json:"error"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// SlideCreatedResponse is returned by the add and duplicate endpoints
type SlideCreatedResponse struct {
	ID   string        `json:"id"`
	Deck entities.Deck `json:"deck"`
}

// TemplateResponse describes one slide variant
type TemplateResponse struct {
	Name           entities.TemplateName `json:"name"`
	DisplayName    string                `json:"displayName"`
	Fields         []string              `json:"fields"`
	DefaultContent entities.Content      `json:"defaultContent"`
}

// ThemeResponse describes one built-in palette
type ThemeResponse struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Background  string `json:"background"`
	Text        string `json:"text"`
	Accent      string `json:"accent"`
}

type addSlideRequest struct {
	Template string `json:"template"`
}

type reorderRequest struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

type setActiveRequest struct {
	ID string `json:"id"`
}

type updateContentRequest struct {
	Fields entities.Content `json:"fields"`
}

type setTemplateRequest struct {
	Template string `json:"template"`
}

type setThemeRequest struct {
	Theme string `json:"theme"`
}

type setNameRequest struct {
	Name string `json:"name"`
}

// liveReloadScript refreshes the index page whenever the deck changes
const liveReloadScript = `<script>
(function () {
  var ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
  ws.onmessage = function (e) {
    if (JSON.parse(e.data).type === "deck_updated") { location.reload(); }
  };
})();
</script>
`

func (s *Server) store() *services.DeckStore {
	return s.deck.Store()
}

// handleIndex serves the exported document of the current deck with live reload
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	doc, err := s.deck.Export()
	if err != nil {
		s.handleError(w, err)
		return
	}

	page := strings.Replace(string(doc), "</body>", liveReloadScript+"</body>", 1)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, page); err != nil {
		s.log.Error("failed to write index", zap.Error(err))
	}
}

// handleExport downloads the standalone document
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	doc, err := s.deck.Export()
	if err != nil {
		s.handleError(w, err)
		return
	}
	s.monitor.RecordExport(time.Since(start))

	name := s.downloadName(s.store().GetState().Name)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc); err != nil {
		s.log.Error("failed to write export", zap.Error(err))
	}
}

// handleImport replaces the deck with an uploaded HTML document, or a markdown
// outline when the body is sent as text/markdown
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	var err error
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "text/markdown" || mediaType == "text/x-markdown" {
		err = s.deck.ImportMarkdown(r.Context(), body)
	} else {
		err = s.deck.ImportHTML(r.Context(), body)
	}
	s.monitor.RecordImport(err)
	if err != nil {
		s.handleError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, s.store().GetState())
}

func (s *Server) handleGetDeck(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.store().GetState())
}

// handleLoadDeck replaces the deck with a saved-state document
func (s *Server) handleLoadDeck(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	deck, err := state.Decode(body, state.FormatJSON)
	if err != nil {
		s.handleError(w, err)
		return
	}
	if err := s.store().LoadState(deck); err != nil {
		s.handleError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, s.store().GetState())
}

func (s *Server) handleGetSlide(w http.ResponseWriter, r *http.Request) {
	slide, ok := s.store().Slide(mux.Vars(r)["id"])
	if !ok {
		s.writeError(w, http.StatusNotFound, "slide not found")
		return
	}
	s.writeJSON(w, http.StatusOK, slide)
}

func (s *Server) handleAddSlide(w http.ResponseWriter, r *http.Request) {
	var req addSlideRequest
	if !s.decodeOptional(w, r, &req) {
		return
	}

	var id string
	if req.Template == "" {
		id = s.store().AddSlide()
	} else {
		t, err := entities.ParseTemplateName(req.Template)
		if err != nil {
			s.handleError(w, err)
			return
		}
		id = s.store().AddSlide(t)
	}

	s.writeJSON(w, http.StatusCreated, SlideCreatedResponse{ID: id, Deck: s.store().GetState()})
}

func (s *Server) handleDuplicateSlide(w http.ResponseWriter, r *http.Request) {
	id, ok := s.store().DuplicateSlide(mux.Vars(r)["id"])
	if !ok {
		s.writeError(w, http.StatusNotFound, "slide not found")
		return
	}
	s.writeJSON(w, http.StatusCreated, SlideCreatedResponse{ID: id, Deck: s.store().GetState()})
}

func (s *Server) handleDeleteSlide(w http.ResponseWriter, r *http.Request) {
	if !s.store().DeleteSlide(mux.Vars(r)["id"]) {
		s.writeError(w, http.StatusNotFound, "slide not found")
		return
	}
	s.writeJSON(w, http.StatusOK, s.store().GetState())
}

func (s *Server) handleReorderSlides(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.From == nil || req.To == nil {
		s.writeError(w, http.StatusBadRequest, "from and to are required")
		return
	}

	if !s.store().ReorderSlides(*req.From, *req.To) {
		s.writeError(w, http.StatusBadRequest, "slide index out of range")
		return
	}
	s.writeJSON(w, http.StatusOK, s.store().GetState())
}

func (s *Server) handleSetActive(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if !s.decode(w, r, &req) {
		return
	}

	if !s.store().SetActiveSlide(req.ID) {
		s.writeError(w, http.StatusNotFound, "slide not found")
		return
	}
	s.writeJSON(w, http.StatusOK, s.store().GetState())
}

func (s *Server) handleUpdateContent(w http.ResponseWriter, r *http.Request) {
	var req updateContentRequest
	if !s.decode(w, r, &req) {
		return
	}

	if !s.store().UpdateSlideContent(mux.Vars(r)["id"], req.Fields) {
		s.writeError(w, http.StatusNotFound, "slide not found")
		return
	}
	s.writeJSON(w, http.StatusOK, s.store().GetState())
}

func (s *Server) handleSetTemplate(w http.ResponseWriter, r *http.Request) {
	var req setTemplateRequest
	if !s.decode(w, r, &req) {
		return
	}

	t, err := entities.ParseTemplateName(req.Template)
	if err != nil {
		s.handleError(w, err)
		return
	}
	if !s.store().SetTemplate(mux.Vars(r)["id"], t) {
		s.writeError(w, http.StatusNotFound, "slide not found")
		return
	}
	s.writeJSON(w, http.StatusOK, s.store().GetState())
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req setThemeRequest
	if !s.decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Theme) == "" {
		s.writeError(w, http.StatusBadRequest, "theme is required")
		return
	}

	s.store().SetTheme(req.Theme)
	s.writeJSON(w, http.StatusOK, s.store().GetState())
}

func (s *Server) handleSetName(w http.ResponseWriter, r *http.Request) {
	var req setNameRequest
	if !s.decode(w, r, &req) {
		return
	}

	s.store().SetDeckName(req.Name)
	s.writeJSON(w, http.StatusOK, s.store().GetState())
}

// handlePreviewSlide returns the rendered fragment of one slide
func (s *Server) handlePreviewSlide(w http.ResponseWriter, r *http.Request) {
	slide, ok := s.store().Slide(mux.Vars(r)["id"])
	if !ok {
		s.writeError(w, http.StatusNotFound, "slide not found")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, s.registry.RenderSlide(&slide)); err != nil {
		s.log.Error("failed to write preview", zap.Error(err))
	}
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	variants := s.registry.Variants()
	out := make([]TemplateResponse, 0, len(variants))
	for _, v := range variants {
		out = append(out, TemplateResponse{
			Name:           v.Name,
			DisplayName:    v.DisplayName(),
			Fields:         v.Schema(),
			DefaultContent: v.DefaultContent(),
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleThemes(w http.ResponseWriter, r *http.Request) {
	palettes := entities.BuiltInPalettes()
	out := make([]ThemeResponse, 0, len(palettes))
	for _, p := range palettes {
		out = append(out, ThemeResponse{
			Name:        p.Name,
			DisplayName: p.DisplayName(),
			Background:  p.Background,
			Text:        p.Text,
			Accent:      p.Accent,
		})
	}
	s.writeJSON(w, http.StatusOK, out)
}

// handleHealth reports process health and editor counters
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.monitor.HealthStatus()
	deck := s.store().GetState()
	status["slides"] = deck.SlideCount()
	status["clients"] = s.connMgr.Count()
	s.writeJSON(w, http.StatusOK, status)
}

// readBody reads a whole request body, writing a 413 or 400 on failure
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxDocumentSize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "document too large")
		} else {
			s.writeError(w, http.StatusBadRequest, "invalid request body")
		}
		return nil, false
	}
	return body, true
}

// decode reads a required JSON body into v, writing a 400 on failure
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDocumentSize))
	if err := dec.Decode(v); err != nil {
		s.log.Debug("invalid request body", zap.String("path", r.URL.Path), zap.Error(err))
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// decodeOptional is decode for endpoints whose body may be empty
func (s *Server) decodeOptional(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxDocumentSize))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		s.log.Debug("invalid request body", zap.String("path", r.URL.Path), zap.Error(err))
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// handleError maps domain errors to responses. Parse and snapshot failures
// carry a client-facing reason; anything else is reported without detail.
func (s *Server) handleError(w http.ResponseWriter, err error) {
	var (
		parseErr    *entities.ParseError
		snapshotErr *entities.SnapshotError
	)

	switch {
	case errors.As(err, &parseErr):
		s.log.Warn("document rejected", zap.Error(err))
		s.writeError(w, http.StatusUnprocessableEntity, parseErr.Error())
	case errors.As(err, &snapshotErr):
		s.log.Warn("state rejected", zap.Error(err))
		s.writeError(w, http.StatusUnprocessableEntity, snapshotErr.Error())
	case errors.Is(err, entities.ErrUnknownTemplate):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error("request failed", zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Time:    time.Now(),
	})
}

// writeJSON writes a JSON response
func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		s.log.Error("failed to encode JSON response", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := fmt.Fprintf(w, "%s\n", body); err != nil {
		s.log.Error("failed to write JSON response", zap.Error(err))
	}
}
