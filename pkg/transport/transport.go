// Package transport wires registered handlers onto an HTTP mux.
//
// The transport owns request-scoped environment construction: for each
// inbound request it merges the configured base environment with
// request-scoped entries (RequestToken), builds a fresh program from the
// handler definition, and invokes one interpreter run. The resolved value
// or propagated failure is mapped onto a JSON wire response.
package transport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"slices"

	"github.com/weftlabs/weft/internal/driver"
	"github.com/weftlabs/weft/internal/registry"
	"github.com/weftlabs/weft/pkg/api"
)

// RequestToken resolves to the inbound *http.Request of the current run.
// The transport binds it per request; handler programs may request it like
// any other capability.
var RequestToken = api.NewToken[*http.Request]("http.request")

// HandlerError is a failure a handler declares in its error set. The
// transport maps declared names to 400 responses; everything else is a 500.
type HandlerError struct {
	Name    string
	Message string
}

func (e *HandlerError) Error() string {
	return e.Name + ": " + e.Message
}

// Config describes a transport Server.
type Config struct {
	Driver   *driver.Driver
	Registry *registry.Registry

	// Base is the environment shared by all requests. Request-scoped
	// entries are merged over it, so they win on collision.
	Base api.Environment

	// StatusFor overrides the failure-to-status mapping. Optional.
	StatusFor func(def api.HandlerDefinition, err error) int
}

// Server mounts handler definitions as HTTP endpoints.
type Server struct {
	cfg Config
}

// NewServer validates cfg and creates a Server.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Driver == nil {
		return nil, errors.New("transport: driver is required")
	}
	if cfg.Registry == nil {
		return nil, errors.New("transport: registry is required")
	}
	if cfg.StatusFor == nil {
		cfg.StatusFor = DefaultStatusFor
	}
	return &Server{cfg: cfg}, nil
}

// Mount registers one POST route per handler definition, named after the
// operation: POST /<name>.
func (s *Server) Mount(mux *http.ServeMux) {
	for _, def := range s.cfg.Registry.List() {
		mux.Handle("POST /"+def.Name, s.endpoint(def))
	}
}

func (s *Server) endpoint(def api.HandlerDefinition) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		input, err := decodeInput(r)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}

		env := api.MergeEnvironments(s.cfg.Base, api.Provide(RequestToken, r))

		out, err := s.cfg.Driver.Run(r.Context(), def.New(input), env)
		if err != nil {
			writeJSON(w, s.cfg.StatusFor(def, err), map[string]any{"error": err.Error()})
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{"result": out})
	})
}

// DefaultStatusFor maps run failures to HTTP statuses: declared handler
// errors become 400, everything else - including wiring defects
// (ServiceNotProvidedError) - becomes 500. Wiring defects are deliberately
// indistinct on the wire; the run journal and logs carry the detail.
func DefaultStatusFor(def api.HandlerDefinition, err error) int {
	var he *HandlerError
	if errors.As(err, &he) && slices.Contains(def.ErrorNames, he.Name) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func decodeInput(r *http.Request) (any, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, nil
	}
	var input any
	if err := json.Unmarshal(body, &input); err != nil {
		return nil, err
	}
	return input, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
