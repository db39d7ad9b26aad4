// Package server exposes the engine over a msgpack IPC protocol on
// stdin/stdout, for editor integrations that keep a wikitalk process
// alive per session.
package server

import (
	"context"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/feldtn/wikitalk/pkg/autocomplete"
	"github.com/feldtn/wikitalk/pkg/config"
	"github.com/feldtn/wikitalk/pkg/page"
	"github.com/feldtn/wikitalk/pkg/timestamp"
)

// Request is one incoming IPC message.
type Request struct {
	ID      string `msgpack:"id"`
	Command string `msgpack:"cmd"`

	Trigger string `msgpack:"trigger,omitempty"`
	Prefix  string `msgpack:"p,omitempty"`

	Code      string `msgpack:"code,omitempty"`
	Comment   string `msgpack:"comment,omitempty"`
	Title     string `msgpack:"title,omitempty"`
	Namespace int    `msgpack:"ns,omitempty"`
}

// Response is one outgoing IPC message. Suggest queries may produce two
// responses for one id: the synchronous local pass and a later remote
// pass; Final marks the last one.
type Response struct {
	ID          string   `msgpack:"id"`
	Status      string   `msgpack:"status,omitempty"`
	Error       string   `msgpack:"error,omitempty"`
	Suggestions []string `msgpack:"s,omitempty"`
	Final       bool     `msgpack:"final,omitempty"`

	NewCode   string `msgpack:"new_code,omitempty"`
	OnTop     *bool  `msgpack:"on_top,omitempty"`
	FirstSect int    `msgpack:"first_sect,omitempty"`
}

// Server handles the IPC for suggestion and page-code requests.
type Server struct {
	engine *autocomplete.Engine
	parser *timestamp.Parser
	cfg    *config.Config

	dec *msgpack.Decoder
	enc *msgpack.Encoder
	mu  sync.Mutex // serializes encoder writes across remote deliveries
}

// NewServer creates a new IPC server using stdin/stdout.
func NewServer(engine *autocomplete.Engine, parser *timestamp.Parser, cfg *config.Config) *Server {
	return &Server{
		engine: engine,
		parser: parser,
		cfg:    cfg,
		dec:    msgpack.NewDecoder(os.Stdin),
		enc:    msgpack.NewEncoder(os.Stdout),
	}
}

// Start begins listening for IPC requests.
func (s *Server) Start() error {
	log.Debug("Starting IPC server.")
	s.send(&Response{Status: "ready"})

	for {
		var req Request
		if err := s.dec.Decode(&req); err != nil {
			if err == io.EOF {
				s.engine.Wait()
				return nil
			}
			log.Errorf("Decoding request: %v", err)
			return err
		}
		s.handleRequest(&req)
	}
}

func (s *Server) handleRequest(req *Request) {
	switch req.Command {
	case "suggest":
		s.handleSuggest(req)
	case "placement":
		s.handlePlacement(req)
	case "insert":
		s.handleInsert(req)
	case "health":
		s.send(&Response{ID: req.ID, Status: "ok"})
	default:
		s.sendError(req.ID, "unknown command: "+req.Command)
	}
}

// handleSuggest runs one autocomplete query. The local pass answers
// immediately; when a remote pass follows, a second response with the
// same id settles the request, repeating the local list if the pass
// failed or went stale. Exactly one response per id carries Final.
func (s *Server) handleSuggest(req *Request) {
	if req.Prefix == "" {
		s.sendError(req.ID, "missing 'p' parameter")
		return
	}
	if len(req.Prefix) < s.cfg.Server.MinPrefix || len(req.Prefix) > s.cfg.Server.MaxPrefix {
		s.sendError(req.ID, "prefix length out of bounds")
		return
	}

	var delivered atomic.Bool
	s.engine.Query(context.Background(), req.Trigger, req.Prefix, func(items []string, final bool) {
		delivered.Store(true)
		s.send(&Response{ID: req.ID, Suggestions: items, Final: final})
	})
	// a suppressed duplicate query delivers nothing; the client still
	// needs its id answered
	if !delivered.Load() {
		s.send(&Response{ID: req.ID, Status: "unchanged", Final: true})
	}
}

func (s *Server) handlePlacement(req *Request) {
	if req.Code == "" {
		s.sendError(req.ID, "missing 'code' parameter")
		return
	}
	pc, err := page.New(nonEmpty(req.Title, "Talk:IPC"))
	if err != nil {
		s.sendError(req.ID, err.Error())
		return
	}
	pc.Namespace = req.Namespace
	pc.SeedLocal(req.Code)

	onTop, err := pc.AnalyzePlacement(s.parser, page.ConfigOverride(s.cfg.Placement))
	if err != nil {
		s.sendError(req.ID, err.Error())
		return
	}
	s.send(&Response{ID: req.ID, OnTop: &onTop, FirstSect: pc.FirstSectionStart(), Final: true})
}

func (s *Server) handleInsert(req *Request) {
	if req.Comment == "" {
		s.sendError(req.ID, "missing 'comment' parameter")
		return
	}
	pc, err := page.New(nonEmpty(req.Title, "Talk:IPC"))
	if err != nil {
		s.sendError(req.ID, err.Error())
		return
	}
	pc.Namespace = req.Namespace
	pc.SeedLocal(req.Code)

	if _, err := pc.AnalyzePlacement(s.parser, page.ConfigOverride(s.cfg.Placement)); err != nil {
		s.sendError(req.ID, err.Error())
		return
	}
	m, err := pc.InsertComment(req.Comment)
	if err != nil {
		s.sendError(req.ID, err.Error())
		return
	}
	if !page.VerifyInsertOnly(req.Code, m.NewCode) {
		s.sendError(req.ID, "mutation would remove existing content")
		return
	}
	s.send(&Response{ID: req.ID, NewCode: m.NewCode, Final: true})
}

func (s *Server) send(resp *Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enc.Encode(resp); err != nil {
		log.Errorf("Encoding response: %v", err)
	}
}

func (s *Server) sendError(id, message string) {
	s.send(&Response{ID: id, Error: message, Final: true})
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
