package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/example/go-chartok/internal/config"
	"github.com/example/go-chartok/internal/tokenizer"
	"github.com/example/go-chartok/internal/vocab"
)

// ParseLogLevel converts a case-insensitive level string to slog.Level.
// An empty string returns slog.LevelInfo. Unknown strings return an error.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (want debug|info|warn|error)", s)
	}
}

// Codec encodes text to token IDs and decodes them back.
type Codec interface {
	Encode(text string, opts tokenizer.EncodeOptions) []int
	Decode(ids []int, opts tokenizer.DecodeOptions) string
}

// VocabLister summarizes the loaded vocabulary.
type VocabLister interface {
	Len() int
	Sample(n int) []vocab.Entry
}

// Error messages returned for malformed request bodies.
const (
	errTextRequired = "text (string) is required in body"
	errIDsRequired  = "ids (array of integers) is required in body"
)

// ---------------------------------------------------------------------------
// Functional options
// ---------------------------------------------------------------------------

type options struct {
	maxBodyBytes int64
	sampleSize   int
	logger       *slog.Logger
}

func defaultOptions() options {
	return options{
		maxBodyBytes: 1 << 20,
		sampleSize:   50,
		logger:       slog.Default(),
	}
}

// Option configures the HTTP handler.
type Option func(*options)

// WithMaxBodyBytes sets the maximum accepted request body size.
func WithMaxBodyBytes(n int64) Option {
	return func(o *options) { o.maxBodyBytes = n }
}

// WithSampleSize sets how many tokenToId entries GET /vocab returns.
func WithSampleSize(n int) Option {
	return func(o *options) { o.sampleSize = n }
}

// WithLogger sets the slog.Logger used for request logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// ---------------------------------------------------------------------------
// handler
// ---------------------------------------------------------------------------

// handler holds the dependencies needed to serve HTTP requests.
type handler struct {
	codec Codec
	vocab VocabLister
	opts  options
	log   *slog.Logger
}

// NewHandler returns an http.Handler that serves /, /health, GET /vocab,
// POST /encode and POST /decode.
func NewHandler(codec Codec, vl VocabLister, optFns ...Option) http.Handler {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	h := &handler{
		codec: codec,
		vocab: vl,
		opts:  opts,
		log:   opts.logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", h.handleRoot)
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/vocab", h.handleVocab)
	mux.HandleFunc("/encode", h.handleEncode)
	mux.HandleFunc("/decode", h.handleDecode)
	return mux
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func (h *handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildVersion(),
	})
}

type vocabResponse struct {
	VocabSize       int         `json:"vocabSize"`
	TokenToIDSample orderedPair `json:"tokenToIdSample"`
}

func (h *handler) handleVocab(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, vocabResponse{
		VocabSize:       h.vocab.Len(),
		TokenToIDSample: orderedPair(h.vocab.Sample(h.opts.sampleSize)),
	})
}

type encodeRequest struct {
	Text   json.RawMessage `json:"text"`
	AddBos json.RawMessage `json:"addBos"`
	AddEos json.RawMessage `json:"addEos"`
}

type encodeResponse struct {
	IDs []int `json:"ids"`
}

func (h *handler) handleEncode(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req encodeRequest
	if !h.readBody(w, r, &req) {
		return
	}

	text, ok := rawString(req.Text)
	if !ok {
		h.reject(w, r, "/encode", errTextRequired)
		return
	}
	addBos, ok := rawBool(req.AddBos, false)
	if !ok {
		h.reject(w, r, "/encode", "addBos must be a boolean")
		return
	}
	addEos, ok := rawBool(req.AddEos, false)
	if !ok {
		h.reject(w, r, "/encode", "addEos must be a boolean")
		return
	}

	start := time.Now()
	ids := h.codec.Encode(text, tokenizer.EncodeOptions{AddBOS: addBos, AddEOS: addEos})
	if ids == nil {
		ids = []int{}
	}

	h.log.InfoContext(r.Context(), "encode complete",
		slog.String("route", "/encode"),
		slog.Int("text_len", len(text)),
		slog.Int("id_count", len(ids)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	writeJSON(w, http.StatusOK, encodeResponse{IDs: ids})
}

type decodeRequest struct {
	IDs          json.RawMessage `json:"ids"`
	StripSpecial json.RawMessage `json:"stripSpecial"`
}

type decodeResponse struct {
	Text string `json:"text"`
}

func (h *handler) handleDecode(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req decodeRequest
	if !h.readBody(w, r, &req) {
		return
	}

	ids, ok := rawIDs(req.IDs)
	if !ok {
		h.reject(w, r, "/decode", errIDsRequired)
		return
	}
	strip, ok := rawBool(req.StripSpecial, true)
	if !ok {
		h.reject(w, r, "/decode", "stripSpecial must be a boolean")
		return
	}

	start := time.Now()
	text := h.codec.Decode(ids, tokenizer.DecodeOptions{StripSpecial: strip})

	h.log.InfoContext(r.Context(), "decode complete",
		slog.String("route", "/decode"),
		slog.Int("id_count", len(ids)),
		slog.Int("text_len", len(text)),
		slog.Int64("duration_ms", time.Since(start).Milliseconds()),
	)

	writeJSON(w, http.StatusOK, decodeResponse{Text: text})
}

// readBody reads a size-limited JSON body into dst. A missing, empty or
// malformed body leaves dst zero so that field validation reports it; only an
// oversized body is rejected here.
func (h *handler) readBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Body == nil {
		return true
	}

	body := r.Body
	if h.opts.maxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.opts.maxBodyBytes)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds maximum size of %d bytes", h.opts.maxBodyBytes))
			return false
		}
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil && len(bytes.TrimSpace(data)) > 0 {
		h.log.DebugContext(r.Context(), "request body is not a JSON object",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
	}
	return true
}

func (h *handler) reject(w http.ResponseWriter, r *http.Request, route, msg string) {
	h.log.WarnContext(r.Context(), "request rejected",
		slog.String("route", route),
		slog.String("error", msg),
	)
	writeError(w, http.StatusBadRequest, msg)
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method || (method == http.MethodGet && r.Method == http.MethodHead) {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

// rawString reports the value of a JSON string field; absent, null and
// non-string values are not ok.
func rawString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// rawBool returns def for an absent or null field, the value of a JSON
// boolean, and not ok for anything else.
func rawBool(raw json.RawMessage, def bool) (bool, bool) {
	switch string(raw) {
	case "", "null":
		return def, true
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

// rawIDs accepts a JSON array whose elements are all integral numbers.
// Integral floats such as 1.0 are accepted, as in vocabulary files.
func rawIDs(raw json.RawMessage) ([]int, bool) {
	if len(raw) == 0 || raw[0] != '[' {
		return nil, false
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return nil, false
	}
	ids := make([]int, len(elems))
	for i, e := range elems {
		if len(e) == 0 || (e[0] != '-' && (e[0] < '0' || e[0] > '9')) {
			return nil, false
		}
		id, err := vocab.ParseInteger(string(e))
		if err != nil {
			return nil, false
		}
		ids[i] = id
	}
	return ids, true
}

// orderedPair marshals vocabulary entries as a JSON object, keeping entry order.
type orderedPair []vocab.Entry

func (p orderedPair) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range p {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalNoEscape(e.Token)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", e.ID)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// ---------------------------------------------------------------------------
// Server: wires handler into net/http.Server with graceful shutdown
// ---------------------------------------------------------------------------

// Server wires the HTTP handler into a net/http.Server with graceful shutdown.
type Server struct {
	cfg             config.Config
	codec           Codec
	vocab           VocabLister
	shutdownTimeout time.Duration
	logger          *slog.Logger
}

func New(cfg config.Config, codec Codec, vl VocabLister) *Server {
	return &Server{
		cfg:             cfg,
		codec:           codec,
		vocab:           vl,
		shutdownTimeout: 30 * time.Second,
		logger:          slog.Default(),
	}
}

// WithShutdownTimeout overrides the graceful-shutdown drain period.
func (s *Server) WithShutdownTimeout(d time.Duration) *Server {
	s.shutdownTimeout = d
	return s
}

func (s *Server) Start(ctx context.Context) error {
	if s.codec == nil || s.vocab == nil {
		return errors.New("server: tokenizer and vocabulary are required")
	}

	h := NewHandler(s.codec, s.vocab,
		WithMaxBodyBytes(s.cfg.Server.MaxBodyBytes),
		WithSampleSize(s.cfg.Server.SampleSize),
		WithLogger(s.logger),
	)

	httpServer := &http.Server{
		Addr:              s.cfg.Server.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	s.logger.Info("tokenizer API listening",
		slog.String("addr", s.cfg.Server.ListenAddr),
		slog.Int("vocab_size", s.vocab.Len()),
	)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http listen: %w", err)
	}
}

func ProbeHTTP(addr string) error {
	resp, err := http.Get("http://" + addr + "/health") //nolint:noctx
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected health status: %s", resp.Status)
	}
	return nil
}
