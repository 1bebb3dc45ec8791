// Package relay serves the high-priority check endpoint in front of an
// upstream language model.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mikey/llm-inbox-prioritizer/internal/ports"
	"github.com/mikey/llm-inbox-prioritizer/internal/utils"
	"go.uber.org/zap"
)

// CheckPath is the route of the high-priority check
const CheckPath = "/check-high-priority"

// Options configures the relay server
type Options struct {
	ListenAddress   string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	UpstreamTimeout time.Duration
	MaxPreviewSize  int
}

type checkRequest struct {
	HighPriorityKeywords []any `json:"highPriorityKeywords"`
	PreviewText          string `json:"previewText"`
}

type checkResponse struct {
	IsHighPriority bool     `json:"isHighPriority"`
	Keywords       []string `json:"keywords"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Raw     string `json:"raw,omitempty"`
	Details string `json:"details,omitempty"`
}

// Server answers high-priority checks by asking the upstream model
type Server struct {
	model         ports.ChatModel
	textProcessor *utils.TextProcessor
	logger        *zap.Logger
	opts          Options
	server        *http.Server
}

// NewServer creates a new relay server
func NewServer(model ports.ChatModel, textProcessor *utils.TextProcessor, logger *zap.Logger, opts Options) *Server {
	s := &Server{
		model:         model,
		textProcessor: textProcessor,
		logger:        logger,
		opts:          opts,
	}
	s.server = &http.Server{
		Addr:         opts.ListenAddress,
		Handler:      s.Handler(),
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}
	return s
}

// Handler returns the HTTP routes of the relay
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(CheckPath, s.handleCheck)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return withCORS(mux)
}

// Start listens on the configured address and serves in the background
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.opts.ListenAddress)
	if err != nil {
		return err
	}

	s.logger.Info("Relay server starting",
		zap.String("address", ln.Addr().String()),
		zap.String("model", s.model.Name()))

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Relay server error", zap.Error(err))
		}
	}()
	return nil
}

// Stop shuts the server down, letting in-flight checks finish
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
		return
	}

	var req checkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid JSON body", Details: err.Error()})
		return
	}
	if req.HighPriorityKeywords == nil || req.PreviewText == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Missing highPriorityKeywords or previewText"})
		return
	}

	ctx := r.Context()
	if s.opts.UpstreamTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.UpstreamTimeout)
		defer cancel()
	}

	preview := s.textProcessor.ProcessText(req.PreviewText, s.opts.MaxPreviewSize)
	raw, err := s.model.Chat(ctx, exampleHistory, BuildPrompt(keywordStrings(req.HighPriorityKeywords), preview))
	if err != nil {
		s.logger.Error("Upstream model call failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Error processing request", Details: err.Error()})
		return
	}

	raw = strings.TrimSpace(raw)
	s.logger.Debug("Raw upstream reply", zap.String("raw", raw))
	verdict, keywordsOK, err := ParseVerdict(raw)
	if err != nil {
		s.logger.Warn("Unexpected upstream reply", zap.String("raw", raw))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Unexpected response format", Raw: raw})
		return
	}
	if !keywordsOK {
		s.logger.Warn("Could not parse keyword array", zap.String("raw", raw))
	}

	s.logger.Info("High-priority check answered",
		zap.Bool("high_priority", verdict.IsHighPriority),
		zap.Strings("keywords", verdict.Keywords))
	writeJSON(w, http.StatusOK, checkResponse{
		IsHighPriority: verdict.IsHighPriority,
		Keywords:       verdict.Keywords,
	})
}

// keywordStrings renders every keyword as text; null becomes empty
func keywordStrings(values []any) []string {
	out := make([]string, len(values))
	for i, v := range values {
		switch k := v.(type) {
		case nil:
		case string:
			out[i] = k
		default:
			out[i] = fmt.Sprint(k)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// withCORS lets the browser-side client call the relay from any origin
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
