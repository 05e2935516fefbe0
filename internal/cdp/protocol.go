package cdp

import "fmt"

// Outcome is what a Protocol delivers to its result callback, exactly once.
type Outcome struct {
	Value any
	Err   error
}

// State carries protocol-local data between steps. Steps agree on keys by
// convention; the engine never inspects it.
type State map[string]any

func (s State) clone() State {
	n := make(State, len(s)+1)
	for k, v := range s {
		n[k] = v
	}
	return n
}

// Dispatcher lets a call step submit a JSON-RPC call on behalf of the
// session running the protocol.
type Dispatcher interface {
	Dispatch(method string, params any) (int64, error)
}

// CallFunc runs synchronously to completion: it may dispatch calls and
// returns the state to carry forward. It never blocks on a response.
type CallFunc func(state State, d Dispatcher) (State, error)

// MatchResult reports how an await step handled one inbound message.
type MatchResult int

const (
	// NoMatch means the message is unrelated to this await; try the next
	// await in the unordered prefix, or discard it if none match.
	NoMatch MatchResult = iota
	// Matched means the message satisfied this await; it is consumed.
	Matched
	// MatchError means the message was for this await but signals failure
	// (an RPC error object, or a shape the step couldn't parse).
	MatchError
)

// MatchFunc tests one inbound message against a paused await step.
type MatchFunc func(state State, msg Message) (MatchResult, State, error)

// OutputFunc computes the value delivered as a successful Outcome.
type OutputFunc func(state State) any

type stepKind int

const (
	stepCall stepKind = iota
	stepAwait
	stepOutput
)

type step struct {
	kind   stepKind
	label  string
	call   CallFunc
	match  MatchFunc
	output OutputFunc
}

// Call returns a step that dispatches work and never suspends.
func Call(label string, fn CallFunc) step {
	return step{kind: stepCall, label: label, call: fn}
}

// Await returns a step that suspends the protocol until fn reports Matched
// (or MatchError) for some inbound message.
func Await(label string, fn MatchFunc) step {
	return step{kind: stepAwait, label: label, match: fn}
}

// Output returns a step that computes the protocol's result and removes
// itself. Well-formed protocols have exactly one. The protocol finishes at
// the first Output step it reaches, so steps after it never run; a protocol
// with no Output step finishes with an empty Outcome when its steps run out.
func Output(label string, fn OutputFunc) step {
	return step{kind: stepOutput, label: label, output: fn}
}

// Protocol is one client request's state machine: a list of steps that
// shrinks strictly from the head, except that a run of consecutive awaits
// at the head is matched as an unordered set (see deliver) rather than
// strict FIFO, because the browser does not guarantee response/event
// ordering across independent in-flight operations.
type Protocol struct {
	Name   string
	Counts bool // whether a completed run counts toward a session's use budget

	steps        []step
	state        State
	result       func(Outcome)
	done         bool
	emittedFinal bool
}

// NewProtocol builds a Protocol from an ordered step list.
func NewProtocol(name string, counts bool, steps []step) *Protocol {
	return &Protocol{Name: name, Counts: counts, steps: steps, state: State{}}
}

func (p *Protocol) finish(o Outcome) {
	if p.emittedFinal {
		return
	}
	p.emittedFinal = true
	p.done = true
	if p.result != nil {
		p.result(o)
	}
}

// advance runs the head of the step list until it hits an await (pauses) or
// runs out of steps (completes). Callers must serialize calls to advance
// and deliver for one Protocol; Session does this with its own mutex.
func (p *Protocol) advance(d Dispatcher) {
	for {
		if p.done {
			return
		}
		if len(p.steps) == 0 {
			if !p.emittedFinal {
				p.finish(Outcome{})
			}
			p.done = true
			return
		}

		head := p.steps[0]
		switch head.kind {
		case stepCall:
			newState, err := head.call(p.state, d)
			if err != nil {
				p.finish(Outcome{Err: fmt.Errorf("%s: %w", head.label, err)})
				return
			}
			p.state = newState
			p.steps = p.steps[1:]
		case stepOutput:
			value := head.output(p.state)
			p.steps = p.steps[1:]
			p.finish(Outcome{Value: value})
		case stepAwait:
			return
		}
	}
}

// deliver feeds one inbound message to the maximal prefix of consecutive
// await steps at the head, first-match-wins, and reports whether the
// message was consumed. Order within the prefix is only a tie-break: it is
// tried top to bottom, but a message that matches the second await while
// the first is still pending is accepted immediately.
func (p *Protocol) deliver(msg Message, d Dispatcher) bool {
	if p.done {
		return false
	}

	end := 0
	for end < len(p.steps) && p.steps[end].kind == stepAwait {
		end++
	}
	if end == 0 {
		return false
	}

	for i := 0; i < end; i++ {
		result, newState, err := p.steps[i].match(p.state, msg)
		if err != nil || result == MatchError {
			p.finish(Outcome{Err: fmt.Errorf("%w: %s: %v", ErrProtocolError, p.steps[i].label, err)})
			return true
		}
		if result == Matched {
			p.state = newState
			remaining := make([]step, 0, len(p.steps)-1)
			remaining = append(remaining, p.steps[:i]...)
			remaining = append(remaining, p.steps[i+1:]...)
			p.steps = remaining
			p.advance(d)
			return true
		}
	}
	return false
}
