package dialog

import (
	"fmt"
	"strings"
)

// Reserved keywords. Cancel words are exact matches after lowercasing and
// abort a flow from any step; skip bypasses optional steps; yes/y accept at
// a confirmation step.
const skipWord = "skip"

var cancelWords = map[string]struct{}{
	"cancel":     {},
	"start over": {},
	"restart":    {},
}

var acceptWords = map[string]struct{}{
	"yes": {},
	"y":   {},
}

const (
	cancelledText = "Okay, I've cancelled that. Nothing was saved."
	declinedText  = "No problem, I won't save it. Say the word whenever you'd like to start again."
)

// Result is the outcome of advancing a session by one utterance: the
// assistant messages to append, the successor session, and at most one
// persistence effect for the shell to carry out.
type Result struct {
	Messages []string
	Next     Session
	Effect   *Effect
}

// Machine drives guided dialog sessions. It is pure data transformation:
// Advance performs no I/O and never mutates its input session.
type Machine struct {
	source FlowSource
}

// NewMachine creates a state machine over the given flow source.
func NewMachine(source FlowSource) *Machine {
	return &Machine{source: source}
}

// Advance processes one user utterance. The utterance must be trimmed and
// non-empty; dispatching empty input is the caller's responsibility.
//
// The error return is reserved for configuration faults (a session pointing
// at an unknown flow or step); user input never produces an error.
func (m *Machine) Advance(session Session, utterance string) (Result, error) {
	text := strings.TrimSpace(utterance)
	lowered := strings.ToLower(text)

	// Global commands outrank everything: a flow must be abandonable from
	// any step.
	if _, ok := cancelWords[lowered]; ok {
		return Result{
			Messages: []string{cancelledText},
			Next:     session.reset(lowered),
		}, nil
	}

	if session.Idle() {
		return m.advanceIdle(session, text)
	}

	flow, ok := m.source.Get(session.Flow)
	if !ok {
		return Result{}, fmt.Errorf("session %q: flow %q not found", session.ID, session.Flow)
	}
	idx := flow.StepIndex(session.Step)
	if idx < 0 {
		return Result{}, fmt.Errorf("session %q: step %q not in flow %q", session.ID, session.Step, flow.Name)
	}

	step := flow.Steps[idx]
	if step.Terminal {
		return m.advanceConfirm(session, flow, lowered), nil
	}
	return m.advanceCollect(session, flow, idx, text, lowered)
}

// advanceIdle scans the utterance for flow entry keywords. No match leaves
// the session untouched and re-prompts with guidance.
func (m *Machine) advanceIdle(session Session, text string) (Result, error) {
	flow, ok := m.source.MatchIntent(text)
	if !ok {
		return Result{Messages: []string{m.helpText()}, Next: session}, nil
	}

	next := session.clone()
	next.Mode = flow.Mode
	next.Flow = flow.Name
	next.Step = flow.Steps[0].Key
	next = session.withRecord(next, text)

	prompt, err := RenderPrompt(flow.Steps[0].Prompt, next.Draft)
	if err != nil {
		return Result{}, fmt.Errorf("flow %q step %q: render prompt: %w", flow.Name, flow.Steps[0].Key, err)
	}
	return Result{Messages: []string{prompt}, Next: next}, nil
}

// advanceCollect accepts the utterance as the current field's value and
// moves to the next step. Any non-empty text is accepted; only optional
// steps honor the skip word, storing an empty value instead.
func (m *Machine) advanceCollect(session Session, flow *Flow, idx int, text, lowered string) (Result, error) {
	value := text
	if flow.Steps[idx].Optional && lowered == skipWord {
		value = ""
	}

	nextStep := flow.Steps[idx+1]

	next := session.clone()
	next.Draft[flow.Steps[idx].Key] = value
	next.Step = nextStep.Key
	next = session.withRecord(next, text)

	prompt, err := RenderPrompt(nextStep.Prompt, next.Draft)
	if err != nil {
		return Result{}, fmt.Errorf("flow %q step %q: render prompt: %w", flow.Name, nextStep.Key, err)
	}
	return Result{Messages: []string{prompt}, Next: next}, nil
}

// advanceConfirm resolves the terminal confirmation step. Acceptance yields
// the persistence effect and no immediate message; the shell reports the
// outcome once the effect has been carried out. Anything other than yes/y
// is a rejection, not an error.
func (m *Machine) advanceConfirm(session Session, flow *Flow, lowered string) Result {
	if _, ok := acceptWords[lowered]; ok {
		keys := flow.FieldKeys()
		payload := make(map[string]string, len(keys))
		for _, k := range keys {
			payload[k] = session.Draft[k]
		}
		return Result{
			Next: session.reset(lowered),
			Effect: &Effect{
				Kind:    flow.Effect,
				Flow:    flow.Name,
				Payload: payload,
			},
		}
	}
	return Result{
		Messages: []string{declinedText},
		Next:     session.reset(lowered),
	}
}

func (m *Machine) helpText() string {
	var hints []string
	for _, f := range m.source.All() {
		if f.Hint != "" {
			hints = append(hints, f.Hint)
		}
	}
	if len(hints) == 0 {
		return "Sorry, I didn't catch that."
	}
	return "Sorry, I didn't catch that. You can " + strings.Join(hints, ", or ") + "."
}
