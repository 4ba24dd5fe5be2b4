package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/seamsql/seamsql/pkg/dialect"
	"github.com/seamsql/seamsql/pkg/format"
	"github.com/seamsql/seamsql/pkg/parser"
)

// formatRequest is the body of POST /v1/format. Mode and indent fall
// back to suffixed and the formatter default when omitted.
type formatRequest struct {
	SQL     string `json:"sql"`
	Mode    string `json:"mode,omitempty"`
	Indent  int    `json:"indent,omitempty"`
	Dialect string `json:"dialect,omitempty"`
}

type formatResponse struct {
	SQL string `json:"sql"`
}

// parseRequest is the body of POST /v1/parse.
type parseRequest struct {
	SQL     string `json:"sql"`
	Dialect string `json:"dialect,omitempty"`
}

type parseResponse struct {
	Dialect    string            `json:"dialect"`
	Count      int               `json:"count"`
	Statements []parsedStatement `json:"statements"`
}

// parsedStatement summarizes one top-level statement. Statements
// counts the statement itself plus everything it owns, so a SELECT
// with one subquery reports 2.
type parsedStatement struct {
	Kind       string   `json:"kind"`
	SQL        string   `json:"sql"`
	Clauses    []string `json:"clauses"`
	Statements int      `json:"statements"`
}

// errorResponse is the body of every non-2xx response. Line and
// column are set for parse errors only.
type errorResponse struct {
	Error  string `json:"error"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	var req formatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if strings.TrimSpace(req.SQL) == "" {
		s.respondError(w, http.StatusBadRequest, errors.New("missing sql"))
		return
	}

	syn, err := s.resolveDialect(req.Dialect)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err)
		return
	}

	opts := format.Options{Mode: format.Suffixed, Indent: req.Indent}
	if req.Mode != "" {
		mode, err := format.ParseMode(req.Mode)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, err)
			return
		}
		opts.Mode = mode
	}

	if _, err := parser.ParseScript(req.SQL, syn); err != nil {
		s.respondParseError(w, err)
		return
	}

	s.respondJSON(w, http.StatusOK, formatResponse{SQL: format.Format(req.SQL, syn, opts)})
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if strings.TrimSpace(req.SQL) == "" {
		s.respondError(w, http.StatusBadRequest, errors.New("missing sql"))
		return
	}

	syn, err := s.resolveDialect(req.Dialect)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err)
		return
	}

	queries, err := parser.ParseScript(req.SQL, syn)
	if err != nil {
		s.respondParseError(w, err)
		return
	}

	resp := parseResponse{
		Dialect:    syn.Name(),
		Count:      len(queries),
		Statements: make([]parsedStatement, 0, len(queries)),
	}
	for _, q := range queries {
		resp.Statements = append(resp.Statements, parsedStatement{
			Kind:       q.Root.Kind(),
			SQL:        q.SQL(),
			Clauses:    clauseNames(q.Root),
			Statements: len(q.Statements()),
		})
	}

	s.respondJSON(w, http.StatusOK, resp)
}

// clauseNames lists the present clause names in grammar order.
func clauseNames(stmt parser.Statement) []string {
	segs := stmt.Segments()
	names := make([]string, 0, len(segs))
	for _, seg := range segs {
		if seg.IsEmpty() {
			continue
		}
		names = append(names, seg.Name)
	}
	return names
}

// resolveDialect returns the named dialect, or the server default
// when name is empty.
func (s *Server) resolveDialect(name string) (*dialect.Syntax, error) {
	if name == "" {
		return s.syn, nil
	}
	syn, ok := dialect.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown dialect %q (available: %v)", name, dialect.List())
	}
	return syn, nil
}

// respondParseError maps a parse failure to 422 with the failing
// position.
func (s *Server) respondParseError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}
	var pe *parser.ParseError
	if errors.As(err, &pe) {
		resp.Line = pe.Pos.Line
		resp.Column = pe.Pos.Column
	}
	s.respondJSON(w, http.StatusUnprocessableEntity, resp)
}

func (s *Server) respondError(w http.ResponseWriter, status int, err error) {
	s.respondJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}
