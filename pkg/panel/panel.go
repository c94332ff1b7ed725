// Package panel holds the state of one fuzz panel: the bound result grids,
// the opaque host state, the override controls and the busy flag. It wires
// the classifier and the extractor to the page events that trigger them.
package panel

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ormasoftchile/fuzzpanel/pkg/entity"
	"github.com/ormasoftchile/fuzzpanel/pkg/overrides"
	"github.com/ormasoftchile/fuzzpanel/pkg/results"
	"github.com/ormasoftchile/fuzzpanel/pkg/schema"
)

// ErrBusy is returned by Start while a previous run has not been released.
var ErrBusy = errors.New("fuzzer is already running")

// Options labels of the toggle button.
const (
	MoreOptionsLabel  = "More options"
	FewerOptionsLabel = "Fewer options"
)

// Message is the command posted to the host to start the fuzzer.
type Message struct {
	Command string `json:"command"`
	JSON    string `json:"json"`
}

// Sender delivers messages to the host process.
type Sender interface {
	Post(msg Message) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(msg Message) error

// Post implements Sender.
func (f SenderFunc) Post(msg Message) error { return f(msg) }

// Options configures a Panel.
type Options struct {
	// ClearStaleGrids empties grids that a later load has no rows for.
	ClearStaleGrids bool
	// OptionsVisible is the initial visibility of the options section.
	OptionsVisible bool
}

// Panel is a single fuzz panel instance. It is not safe for concurrent use;
// callers serialise events the way a page event loop would.
type Panel struct {
	opts           Options
	form           *overrides.Form
	grids          map[results.Category][]results.Row
	state          json.RawMessage
	optionsVisible bool
	busy           bool
	disabled       []string
}

// New creates a panel over form. A nil form is replaced by a form holding
// only the start button.
func New(form *overrides.Form, opts Options) *Panel {
	if form == nil {
		form, _ = overrides.DeclareForm(nil, nil)
	}
	return &Panel{
		opts:           opts,
		form:           form,
		grids:          make(map[results.Category][]results.Row),
		optionsVisible: opts.OptionsVisible,
	}
}

// Form returns the override controls.
func (p *Panel) Form() *overrides.Form { return p.form }

// SetForm replaces the override controls. It fails while a run is active.
func (p *Panel) SetForm(f *overrides.Form) error {
	if p.busy {
		return ErrBusy
	}
	p.form = f
	return nil
}

// LoadResult summarises a page load.
type LoadResult struct {
	Grids *results.Grids
	Bound []results.Category
}

// Load handles the page-load event: it restores the host state and fills
// the grids from the embedded results. Both blocks arrive entity-escaped.
// Any parse or validation failure is returned and nothing is bound.
func (p *Panel) Load(resultsHTML, stateHTML string) (*LoadResult, error) {
	state, err := parseState(entity.Unescape(stateHTML))
	if err != nil {
		return nil, err
	}

	data := []byte(entity.Unescape(resultsHTML))
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("results data is empty")
	}
	if errs := schema.ValidateResults(data); schema.HasErrors(errs) {
		return nil, fmt.Errorf("invalid results data: %w", schema.First(errs))
	}
	doc, err := results.Decode(data)
	if err != nil {
		return nil, err
	}
	g, err := results.Classify(doc.Results)
	if err != nil {
		return nil, fmt.Errorf("classify results: %w", err)
	}

	p.state = state
	return &LoadResult{Grids: g, Bound: p.Bind(g)}, nil
}

func parseState(s string) (json.RawMessage, error) {
	b := bytes.TrimSpace([]byte(s))
	if len(b) == 0 {
		return nil, nil
	}
	if !json.Valid(b) {
		return nil, fmt.Errorf("parse panel state: invalid JSON")
	}
	return json.RawMessage(b), nil
}

// Bind assigns the non-empty categories of g to their grids and returns
// them. Empty categories keep their previous rows unless ClearStaleGrids
// is set.
func (p *Panel) Bind(g *results.Grids) []results.Category {
	var bound []results.Category
	for _, c := range results.Categories {
		rows := g.Rows(c)
		switch {
		case len(rows) > 0:
			p.grids[c] = rows
			bound = append(bound, c)
		case p.opts.ClearStaleGrids:
			delete(p.grids, c)
		}
	}
	return bound
}

// Grid returns the rows currently bound to category c.
func (p *Panel) Grid(c results.Category) []results.Row {
	return p.grids[c]
}

// Grids returns a snapshot of all bound grids.
func (p *Panel) Grids() *results.Grids {
	return &results.Grids{
		Timeout:   p.grids[results.Timeout],
		Exception: p.grids[results.Exception],
		BadOutput: p.grids[results.BadOutput],
		Passed:    p.grids[results.Passed],
	}
}

// State returns the host state exactly as it was received.
func (p *Panel) State() json.RawMessage { return p.state }

// ToggleOptions flips the visibility of the options section and returns
// the new visibility and the label the toggle button should show.
func (p *Panel) ToggleOptions() (bool, string) {
	p.optionsVisible = !p.optionsVisible
	return p.optionsVisible, p.OptionsLabel()
}

// OptionsVisible reports whether the options section is shown.
func (p *Panel) OptionsVisible() bool { return p.optionsVisible }

// OptionsLabel is the label of the toggle button in the current state.
func (p *Panel) OptionsLabel() string {
	if p.optionsVisible {
		return FewerOptionsLabel
	}
	return MoreOptionsLabel
}

// Busy reports whether a run is in flight.
func (p *Panel) Busy() bool { return p.busy }

// StartResult describes a started run.
type StartResult struct {
	Message  Message
	Payload  overrides.Payload
	Disabled []string
}

// Start handles the start click: extract, validate and serialize the
// overrides, disable every consulted control and post fuzz.start. Controls
// are only disabled once the payload exists; if posting fails they are
// enabled again.
func (p *Panel) Start(sender Sender) (*StartResult, error) {
	if p.busy {
		return nil, ErrBusy
	}

	x, err := overrides.Extract(p.form)
	if err != nil {
		return nil, fmt.Errorf("extract overrides: %w", err)
	}
	if err := x.Overrides.Validate(); err != nil {
		return nil, fmt.Errorf("invalid overrides: %w", err)
	}
	payload := x.Payload()
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal overrides: %w", err)
	}
	if errs := schema.ValidatePayload(data); schema.HasErrors(errs) {
		return nil, fmt.Errorf("invalid payload: %w", schema.First(errs))
	}

	disable := append([]string{overrides.StartButtonID}, x.Touched...)
	p.form.Disable(disable)
	p.busy = true
	p.disabled = disable

	msg := Message{Command: overrides.StartCommand, JSON: string(data)}
	if err := sender.Post(msg); err != nil {
		p.Release()
		return nil, fmt.Errorf("post %s: %w", msg.Command, err)
	}
	return &StartResult{Message: msg, Payload: payload, Disabled: disable}, nil
}

// Release ends the current run and re-enables the controls Start disabled.
// It returns the ids that were enabled.
func (p *Panel) Release() []string {
	ids := p.disabled
	p.form.Enable(ids)
	p.busy = false
	p.disabled = nil
	return ids
}
