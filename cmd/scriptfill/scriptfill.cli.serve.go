package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/itsatony/go-scriptfill"
)

// ErrorResponse is the JSON body of every failed API request
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

type generateBody struct {
	scriptfill.GenerateRequest
	Mark bool `json:"mark,omitempty"`
}

type markBody struct {
	Text  string            `json:"text"`
	Spans []scriptfill.Span `json:"spans"`
}

type templateBody struct {
	Template string `json:"template"`
}

type presetBody struct {
	Name     string `json:"name"`
	Template string `json:"template"`
}

type modeBody struct {
	Mode string `json:"mode"`
}

type toggleBody struct {
	Enabled bool `json:"enabled"`
}

type overrideBody struct {
	Value string `json:"value"`
}

type healthResponse struct {
	Status      string `json:"status"`
	StateLoaded bool   `json:"state_loaded"`
}

type templateResponse struct {
	Template     string `json:"template"`
	ActivePreset string `json:"active_preset"`
}

type libraryResponse struct {
	Summary        string   `json:"summary"`
	Fields         []string `json:"fields"`
	ProductColumns []string `json:"product_columns"`
	DefaultActions bool     `json:"default_actions"`
}

// server exposes one Engine over HTTP; mu serializes every engine call
type server struct {
	mu     sync.Mutex
	engine *scriptfill.Engine
	logger *zap.Logger
}

func newServer(engine *scriptfill.Engine, logger *zap.Logger) *server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &server{engine: engine, logger: logger}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/generate", s.generate)
		r.Post("/preview", s.preview)
		r.Post("/mark", s.markUsed)
		r.Post("/markers", s.markers)
		r.Post("/library", s.uploadLibrary)

		r.Get("/template", s.getTemplate)
		r.Put("/template", s.putTemplate)
		r.Get("/mode", s.getMode)
		r.Put("/mode", s.putMode)

		r.Get("/fields", s.listFields)
		r.Delete("/fields/used", s.clearAllUsed)
		r.Post("/state/reset", s.resetState)
		r.Get("/fields/{field}", s.getField)
		r.Delete("/fields/{field}/used", s.clearUsed)
		r.Put("/fields/{field}/delete-on-use", s.putDeleteOnUse)
		r.Put("/fields/{field}/override", s.putOverride)
		r.Delete("/fields/{field}/override", s.deleteOverride)

		r.Get("/presets", s.listPresets)
		r.Post("/presets", s.createPreset)
		r.Get("/presets/{name}", s.getPreset)
		r.Put("/presets/{name}", s.updatePreset)
		r.Delete("/presets/{name}", s.deletePreset)
		r.Post("/presets/{name}/use", s.usePreset)
	})

	return r
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug(LogMsgRequestServed,
			zap.String(LogFieldMethod, r.Method),
			zap.String(LogFieldURLPath, r.URL.Path),
			zap.Int(LogFieldStatus, ww.Status()),
			zap.String(LogFieldRequestID, middleware.GetReqID(r.Context())))
	})
}

func (s *server) health(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	loaded := s.engine.StateLoaded()
	s.mu.Unlock()

	respondJSON(w, http.StatusOK, healthResponse{Status: HealthStatusOK, StateLoaded: loaded})
}

func (s *server) generate(w http.ResponseWriter, r *http.Request) {
	s.runGeneration(w, r, false)
}

func (s *server) preview(w http.ResponseWriter, r *http.Request) {
	s.runGeneration(w, r, true)
}

func (s *server) runGeneration(w http.ResponseWriter, r *http.Request, preview bool) {
	var body generateBody
	if !s.decode(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		result *scriptfill.GenerationResult
		err    error
	)
	if preview {
		result, err = s.engine.Preview(r.Context(), body.GenerateRequest)
	} else {
		result, err = s.engine.Generate(r.Context(), body.GenerateRequest)
	}
	if !s.tolerate(w, r, err) {
		return
	}
	if body.Mark && !preview {
		if !s.tolerate(w, r, s.engine.Commit(r.Context(), result)) {
			return
		}
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *server) markUsed(w http.ResponseWriter, r *http.Request) {
	var body markBody
	if !s.decode(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.tolerate(w, r, s.engine.MarkUsed(r.Context(), body.Text, body.Spans)) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) markers(w http.ResponseWriter, r *http.Request) {
	var body templateBody
	if !s.decode(w, r, &body) {
		return
	}
	names := scriptfill.ExtractMarkers(body.Template)
	if names == nil {
		names = []string{}
	}
	respondJSON(w, http.StatusOK, names)
}

func (s *server) uploadLibrary(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get(QueryParamFormat))
	ext := "." + strings.TrimPrefix(format, ".")
	body := http.MaxBytesReader(w, r.Body, ServeMaxUploadBytes)

	var (
		result *scriptfill.LoadResult
		err    error
	)
	switch ext {
	case scriptfill.ExtCSV:
		result, err = scriptfill.ReadLibraryCSV(body)
	case scriptfill.ExtXLSX, scriptfill.ExtXLSM:
		result, err = scriptfill.ReadLibraryXLSX(body)
	default:
		err = scriptfill.NewUnsupportedFormatError("", ext)
	}
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadRequest
		}
		s.respondError(w, r, err, status)
		return
	}

	s.mu.Lock()
	s.engine.SetLibrary(result.Library)
	s.engine.SetActionLibrary(result.Actions)
	s.mu.Unlock()

	productColumns := result.ProductColumns
	if productColumns == nil {
		productColumns = []string{}
	}
	respondJSON(w, http.StatusOK, libraryResponse{
		Summary:        result.Summary(),
		Fields:         result.Library.Fields(),
		ProductColumns: productColumns,
		DefaultActions: result.DefaultActions,
	})
}

func (s *server) getTemplate(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	respondJSON(w, http.StatusOK, s.templateState())
}

// templateState must be called with mu held
func (s *server) templateState() templateResponse {
	return templateResponse{Template: s.engine.Template(), ActivePreset: s.engine.ActivePreset()}
}

func (s *server) putTemplate(w http.ResponseWriter, r *http.Request) {
	var body templateBody
	if !s.decode(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.tolerate(w, r, s.engine.SetTemplate(r.Context(), body.Template)) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) getMode(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	respondJSON(w, http.StatusOK, modeBody{Mode: s.engine.MatchingMode().String()})
}

func (s *server) putMode(w http.ResponseWriter, r *http.Request) {
	var body modeBody
	if !s.decode(w, r, &body) {
		return
	}
	mode, err := scriptfill.ParseMatchingMode(body.Mode)
	if err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.tolerate(w, r, s.engine.SetMatchingMode(r.Context(), mode)) {
		return
	}
	respondJSON(w, http.StatusOK, modeBody{Mode: mode.String()})
}

func (s *server) listFields(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := s.engine.FieldStatuses()
	if statuses == nil {
		statuses = []scriptfill.FieldStatus{}
	}
	respondJSON(w, http.StatusOK, statuses)
}

func (s *server) getField(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	respondJSON(w, http.StatusOK, s.engine.FieldStatus(urlParam(r, URLParamField)))
}

func (s *server) clearUsed(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.tolerate(w, r, s.engine.ClearUsed(r.Context(), urlParam(r, URLParamField))) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) clearAllUsed(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.tolerate(w, r, s.engine.ClearAllUsed(r.Context())) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) resetState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.tolerate(w, r, s.engine.ResetState(r.Context())) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) putDeleteOnUse(w http.ResponseWriter, r *http.Request) {
	var body toggleBody
	if !s.decode(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	field := urlParam(r, URLParamField)
	if !s.tolerate(w, r, s.engine.SetDeleteOnUse(r.Context(), field, body.Enabled)) {
		return
	}
	respondJSON(w, http.StatusOK, s.engine.FieldStatus(field))
}

func (s *server) putOverride(w http.ResponseWriter, r *http.Request) {
	var body overrideBody
	if !s.decode(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.tolerate(w, r, s.engine.SetOverride(r.Context(), urlParam(r, URLParamField), body.Value)) {
		return
	}
	respondJSON(w, http.StatusOK, s.engine.Overrides())
}

func (s *server) deleteOverride(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.tolerate(w, r, s.engine.RemoveOverride(r.Context(), urlParam(r, URLParamField))) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) listPresets(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	presets := s.engine.ListPresets()
	if presets == nil {
		presets = []*scriptfill.Preset{}
	}
	respondJSON(w, http.StatusOK, presets)
}

func (s *server) createPreset(w http.ResponseWriter, r *http.Request) {
	var body presetBody
	if !s.decode(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	preset, err := s.engine.SavePreset(r.Context(), body.Name, body.Template)
	if !s.tolerate(w, r, err) {
		return
	}
	respondJSON(w, http.StatusCreated, preset)
}

func (s *server) getPreset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	preset, err := s.engine.GetPreset(urlParam(r, URLParamName))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	respondJSON(w, http.StatusOK, preset)
}

func (s *server) updatePreset(w http.ResponseWriter, r *http.Request) {
	var body templateBody
	if !s.decode(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	preset, err := s.engine.UpdatePreset(r.Context(), urlParam(r, URLParamName), body.Template)
	if !s.tolerate(w, r, err) {
		return
	}
	respondJSON(w, http.StatusOK, preset)
}

func (s *server) deletePreset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.tolerate(w, r, s.engine.DeletePreset(r.Context(), urlParam(r, URLParamName))) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) usePreset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.tolerate(w, r, s.engine.UsePreset(r.Context(), urlParam(r, URLParamName))) {
		return
	}
	respondJSON(w, http.StatusOK, s.templateState())
}

// decode reads a JSON request body, responding 400 on failure
func (s *server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.respondError(w, r, fmt.Errorf(FmtDetail, ErrMsgInvalidRequestBody, err), http.StatusBadRequest)
		return false
	}
	return true
}

// tolerate lets persistence failures through with a warning header and
// responds with an error for anything else. It reports whether to continue.
func (s *server) tolerate(w http.ResponseWriter, r *http.Request, err error) bool {
	if err == nil {
		return true
	}
	if scriptfill.IsPersistenceError(err) {
		s.logger.Warn(LogMsgNotPersisted,
			zap.String(LogFieldRequestID, middleware.GetReqID(r.Context())),
			zap.Error(err))
		w.Header().Set(HeaderWarning, err.Error())
		return true
	}
	s.respondError(w, r, err, statusFor(err))
	return false
}

func (s *server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	s.logger.Debug(LogMsgRequestFailed,
		zap.String(LogFieldRequestID, middleware.GetReqID(r.Context())),
		zap.String(LogFieldURLPath, r.URL.Path),
		zap.Int(LogFieldStatus, status),
		zap.Error(err))

	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = ErrMsgInternalServerError
	}
	respondJSON(w, status, ErrorResponse{Error: message, Code: status})
}

// statusFor maps engine errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, scriptfill.ErrPresetNotFound):
		return http.StatusNotFound
	case errors.Is(err, scriptfill.ErrPresetExists):
		return http.StatusConflict
	case errors.Is(err, scriptfill.ErrEmptyPresetName),
		errors.Is(err, scriptfill.ErrInvalidMatchingMode),
		errors.Is(err, scriptfill.ErrInvalidSpan),
		errors.Is(err, scriptfill.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusInternalServerError
}

// urlParam returns a decoded route parameter
func urlParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(HeaderContentType, ContentTypeJSON)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// serveUntilDone serves on ln until ctx is cancelled, then shuts down gracefully
func serveUntilDone(ctx context.Context, srv *http.Server, ln net.Listener, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info(LogMsgServerStopping)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ServeShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func runServe(args []string, stdout, stderr io.Writer) int {
	var (
		global globalConfig
		addr   string
	)
	fs := newFlagSet(CmdNameServe)
	global.register(fs)
	fs.StringVar(&addr, FlagAddr, FlagDefaultAddr, "")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, err)
		return ExitCodeUsageError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, code := openSession(ctx, &global, stderr)
	if sess == nil {
		return code
	}
	defer sess.Close()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgServeFailed, err)
		return ExitCodeError
	}

	srv := &http.Server{
		Handler:           newServer(sess.engine, sess.logger).routes(),
		ReadHeaderTimeout: ServeReadHeaderTimeout,
	}
	sess.logger.Info(LogMsgServerStarting, zap.String(LogFieldAddr, ln.Addr().String()))
	fmt.Fprintf(stdout, ServeListeningFormat, ln.Addr().String())

	if err := serveUntilDone(ctx, srv, ln, sess.logger); err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgServeFailed, err)
		return ExitCodeError
	}
	return ExitCodeSuccess
}
