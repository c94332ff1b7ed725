// Package serve implements the JSON-RPC server the editor extension drives
// the fuzz panel through. It communicates over stdio (stdin/stdout) using
// newline-delimited JSON messages.
package serve

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/ormasoftchile/fuzzpanel/pkg/overrides"
	"github.com/ormasoftchile/fuzzpanel/pkg/panel"
	"github.com/ormasoftchile/fuzzpanel/pkg/results"
)

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeUnknownMethod  = -32601
	codeInvalidParams  = -32602
	codeLoadFailed     = -32603
	codeDeclareFailed  = -32604
	codeControlFailed  = -32605
	codeStartFailed    = -32606
	codeFuzzerIsBusy   = -32607
	maxMessageBytes    = 4 * 1024 * 1024
	notifyGridsUpdated = "event/gridsUpdated"
)

// Message is a JSON-RPC 2.0 message (request or notification).
type Message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int            `json:"id,omitempty"` // nil for notifications
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is a JSON-RPC error.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// LoadParams are the parameters for panel/load: the two embedded blocks as
// they appear in the page, still entity-escaped.
type LoadParams struct {
	ResultsHTML string `json:"resultsHtml"`
	StateHTML   string `json:"stateHtml"`
}

// DeclareParams are the parameters for panel/declare.
type DeclareParams struct {
	Globals  []string            `json:"globals,omitempty"`
	Args     []overrides.ArgSpec `json:"args,omitempty"`
	Controls []overrides.Control `json:"controls,omitempty"`
}

// SetControlParams are the parameters for panel/setControl. Value nil
// clears the current value; Checked nil leaves the checked state alone.
type SetControlParams struct {
	ID      string  `json:"id"`
	Value   *string `json:"value,omitempty"`
	Clear   bool    `json:"clear,omitempty"`
	Checked *bool   `json:"checked,omitempty"`
}

// Server is the JSON-RPC server that wraps one fuzz panel.
type Server struct {
	reader io.Reader
	writer io.Writer
	mu     sync.Mutex
	log    *zap.Logger
	panel  *panel.Panel
	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a server reading from stdin and writing to stdout.
func New(p *panel.Panel, log *zap.Logger) *Server {
	return NewWithIO(p, log, os.Stdin, os.Stdout)
}

// NewWithIO creates a server over the given streams.
func NewWithIO(p *panel.Panel, log *zap.Logger, r io.Reader, w io.Writer) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		reader: r,
		writer: w,
		log:    log,
		panel:  p,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Run reads messages until the input closes or shutdown is requested.
func (s *Server) Run() error {
	defer s.cancel()

	scanner := bufio.NewScanner(s.reader)
	// Embedded results can be large
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageBytes)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var msg Message
		if err := json.Unmarshal(line, &msg); err != nil {
			s.sendError(nil, codeParseError, fmt.Sprintf("parse error: %v", err))
			continue
		}

		s.dispatch(&msg)
		if s.ctx.Err() != nil {
			return nil
		}
	}

	return scanner.Err()
}

// dispatch routes a message to the appropriate handler.
func (s *Server) dispatch(msg *Message) {
	s.log.Debug("dispatch", zap.String("method", msg.Method))
	switch msg.Method {
	case "panel/load":
		s.handleLoad(msg)
	case "panel/declare":
		s.handleDeclare(msg)
	case "panel/setControl":
		s.handleSetControl(msg)
	case "panel/start":
		s.handleStart(msg)
	case "panel/release":
		s.handleRelease(msg)
	case "panel/toggleOptions":
		s.handleToggleOptions(msg)
	case "panel/getGrids":
		s.sendResult(msg.ID, s.panel.Grids())
	case "panel/getState":
		s.handleGetState(msg)
	case "panel/getControls":
		s.sendResult(msg.ID, map[string]interface{}{"controls": s.panel.Form().Controls()})
	case "shutdown":
		s.cancel()
		s.sendResult(msg.ID, map[string]string{"status": "shutting down"})
	default:
		s.sendError(msg.ID, codeUnknownMethod, fmt.Sprintf("unknown method: %s", msg.Method))
	}
}

// handleLoad classifies the embedded results and binds the grids.
func (s *Server) handleLoad(msg *Message) {
	var params LoadParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendError(msg.ID, codeInvalidParams, fmt.Sprintf("invalid params: %v", err))
		return
	}

	res, err := s.panel.Load(params.ResultsHTML, params.StateHTML)
	if err != nil {
		s.log.Warn("panel/load failed", zap.Error(err))
		s.sendError(msg.ID, codeLoadFailed, fmt.Sprintf("load: %v", err))
		return
	}

	counts := res.Grids.Counts()
	s.log.Info("results classified",
		zap.Int("timeout", counts[results.Timeout]),
		zap.Int("exception", counts[results.Exception]),
		zap.Int("badOutput", counts[results.BadOutput]),
		zap.Int("passed", counts[results.Passed]),
	)

	if len(res.Bound) > 0 {
		s.sendEvent(notifyGridsUpdated, map[string]interface{}{
			"categories": res.Bound,
			"grids":      s.panel.Grids(),
		})
	}
	s.sendResult(msg.ID, map[string]interface{}{
		"counts":         counts,
		"bound":          res.Bound,
		"state":          s.panel.State(),
		"optionsVisible": s.panel.OptionsVisible(),
		"optionsLabel":   s.panel.OptionsLabel(),
	})
}

// handleDeclare replaces the override controls from argument declarations.
func (s *Server) handleDeclare(msg *Message) {
	var params DeclareParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendError(msg.ID, codeInvalidParams, fmt.Sprintf("invalid params: %v", err))
		return
	}

	pf := overrides.PanelFile{Globals: params.Globals, Args: params.Args, Controls: params.Controls}
	form, err := pf.Build()
	if err == nil {
		err = s.panel.SetForm(form)
	}
	if err != nil {
		s.sendError(msg.ID, codeDeclareFailed, fmt.Sprintf("declare: %v", err))
		return
	}
	s.log.Info("controls declared", zap.Int("args", len(params.Args)), zap.Int("controls", form.Len()))
	s.sendResult(msg.ID, map[string]interface{}{"controls": form.Controls()})
}

// handleSetControl records a user edit of one control.
func (s *Server) handleSetControl(msg *Message) {
	var params SetControlParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.sendError(msg.ID, codeInvalidParams, fmt.Sprintf("invalid params: %v", err))
		return
	}

	form := s.panel.Form()
	if _, ok := form.Lookup(params.ID); !ok {
		s.sendError(msg.ID, codeControlFailed, fmt.Sprintf("unknown control %q", params.ID))
		return
	}
	var err error
	switch {
	case params.Clear:
		err = form.Clear(params.ID)
	case params.Value != nil:
		err = form.Set(params.ID, *params.Value)
	}
	if err == nil && params.Checked != nil {
		err = form.SetChecked(params.ID, *params.Checked)
	}
	if err != nil {
		s.sendError(msg.ID, codeControlFailed, err.Error())
		return
	}
	c, _ := form.Lookup(params.ID)
	s.sendResult(msg.ID, c)
}

// handleStart extracts the overrides and posts fuzz.start to the host.
func (s *Server) handleStart(msg *Message) {
	res, err := s.panel.Start(panel.SenderFunc(func(m panel.Message) error {
		s.sendEvent(m.Command, m)
		return nil
	}))
	if err != nil {
		code := codeStartFailed
		if errors.Is(err, panel.ErrBusy) {
			code = codeFuzzerIsBusy
		}
		s.log.Warn("panel/start failed", zap.Error(err))
		s.sendError(msg.ID, code, err.Error())
		return
	}
	s.log.Info("fuzzer started", zap.Int("args", len(res.Payload.Args)), zap.Int("disabled", len(res.Disabled)))
	s.sendResult(msg.ID, map[string]interface{}{
		"status":   "started",
		"disabled": res.Disabled,
	})
}

// handleRelease re-enables the controls once the host reports the run done.
func (s *Server) handleRelease(msg *Message) {
	enabled := s.panel.Release()
	s.sendResult(msg.ID, map[string]interface{}{"enabled": enabled})
}

func (s *Server) handleToggleOptions(msg *Message) {
	visible, label := s.panel.ToggleOptions()
	s.sendResult(msg.ID, map[string]interface{}{"visible": visible, "label": label})
}

func (s *Server) handleGetState(msg *Message) {
	state := s.panel.State()
	if state == nil {
		state = json.RawMessage("null")
	}
	s.sendResult(msg.ID, state)
}

// --- Message sending ---

func (s *Server) sendResult(id *int, result interface{}) {
	data, err := json.Marshal(result)
	if err != nil {
		s.sendError(id, codeStartFailed, fmt.Sprintf("marshal result: %v", err))
		return
	}
	msg := Message{
		JSONRPC: "2.0",
		ID:      id,
		Result:  json.RawMessage(data),
	}
	s.send(&msg)
}

func (s *Server) sendError(id *int, code int, message string) {
	msg := Message{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &RPCError{Code: code, Message: message},
	}
	s.send(&msg)
}

func (s *Server) sendEvent(method string, params interface{}) {
	data, _ := json.Marshal(params)
	msg := Message{
		JSONRPC: "2.0",
		Method:  method,
		Params:  json.RawMessage(data),
	}
	s.send(&msg)
}

func (s *Server) send(msg *Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, _ := json.Marshal(msg)
	if _, err := fmt.Fprintf(s.writer, "%s\n", data); err != nil {
		s.log.Error("write message", zap.Error(err))
	}
}
