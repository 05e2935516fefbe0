package cdp

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// BootstrapConfig controls the browser-context and target-attach sequence
// run once when a Session starts.
type BootstrapConfig struct {
	Offline                 bool
	IgnoreCertificateErrors bool
}

type bootstrapResult struct {
	BrowserContextID string
	TargetID         string
	SessionID        string
}

// awaitCallResult builds a MatchFunc that fires when an inbound response's
// id matches the call id stashed at idStateKey, decoding the result payload
// on success and turning an RPC error object into MatchError.
func awaitCallResult(idStateKey string, onResult func(state State, result json.RawMessage) (State, error)) MatchFunc {
	return func(state State, msg Message) (MatchResult, State, error) {
		wantID, _ := state[idStateKey].(int64)
		if msg.ID == 0 || msg.ID != wantID {
			return NoMatch, state, nil
		}
		if msg.Error != nil {
			return MatchError, state, fmt.Errorf("%s (code %d)", msg.Error.Message, msg.Error.Code)
		}
		newState, err := onResult(state, msg.Result)
		if err != nil {
			return MatchError, state, err
		}
		return Matched, newState, nil
	}
}

// awaitEvent builds a MatchFunc that fires on the first inbound event with
// the given method name. Fine within one Session because Connection already
// routes messages per-target; there is only ever one page's worth of events
// in play here.
func awaitEvent(method string) MatchFunc {
	return func(state State, msg Message) (MatchResult, State, error) {
		if msg.Method != method {
			return NoMatch, state, nil
		}
		return Matched, state, nil
	}
}

func fireAndForgetCall(label, method string, params func(State) any) step {
	idKey := label + "CallID"
	return Call(label, func(state State, d Dispatcher) (State, error) {
		var p any
		if params != nil {
			p = params(state)
		}
		id, err := d.Dispatch(method, p)
		if err != nil {
			return state, err
		}
		state = state.clone()
		state[idKey] = id
		return state, nil
	})
}

func awaitAck(label string) step {
	idKey := label + "CallID"
	return Await(label+"-ack", awaitCallResult(idKey, func(state State, _ json.RawMessage) (State, error) {
		return state, nil
	}))
}

// buildBootstrapProtocol assembles the create-context/create-target/attach
// sequence, plus any per-session network or TLS overrides.
func buildBootstrapProtocol(cfg BootstrapConfig) *Protocol {
	steps := []step{
		fireAndForgetCall("createContext", "Target.createBrowserContext", nil),
		Await("browserContextId", awaitCallResult("createContextCallID", func(state State, result json.RawMessage) (State, error) {
			var r struct {
				BrowserContextID string `json:"browserContextId"`
			}
			if err := json.Unmarshal(result, &r); err != nil {
				return state, err
			}
			state = state.clone()
			state["browserContextId"] = r.BrowserContextID
			return state, nil
		})),
		fireAndForgetCall("createTarget", "Target.createTarget", func(state State) any {
			return map[string]any{
				"url":              "about:blank",
				"browserContextId": state["browserContextId"],
			}
		}),
		Await("targetId", awaitCallResult("createTargetCallID", func(state State, result json.RawMessage) (State, error) {
			var r struct {
				TargetID string `json:"targetId"`
			}
			if err := json.Unmarshal(result, &r); err != nil {
				return state, err
			}
			state = state.clone()
			state["targetId"] = r.TargetID
			return state, nil
		})),
		fireAndForgetCall("attach", "Target.attachToTarget", func(state State) any {
			return map[string]any{"targetId": state["targetId"], "flatten": true}
		}),
		Await("sessionId", awaitCallResult("attachCallID", func(state State, result json.RawMessage) (State, error) {
			var r struct {
				SessionID string `json:"sessionId"`
			}
			if err := json.Unmarshal(result, &r); err != nil {
				return state, err
			}
			state = state.clone()
			state["sessionId"] = r.SessionID
			return state, nil
		})),
	}

	if cfg.Offline {
		steps = append(steps,
			fireAndForgetCall("offline", "Network.emulateNetworkConditions", func(State) any {
				return map[string]any{"offline": true, "latency": 0, "downloadThroughput": -1, "uploadThroughput": -1}
			}),
			awaitAck("offline"),
		)
	}
	if cfg.IgnoreCertificateErrors {
		steps = append(steps,
			fireAndForgetCall("ignoreCert", "Security.setIgnoreCertificateErrors", func(State) any {
				return map[string]any{"ignore": true}
			}),
			awaitAck("ignoreCert"),
		)
	}

	steps = append(steps, Output("attached", func(state State) any {
		return bootstrapResult{
			BrowserContextID: state["browserContextId"].(string),
			TargetID:         state["targetId"].(string),
			SessionID:        state["sessionId"].(string),
		}
	}))

	return NewProtocol("bootstrap", false, steps)
}

// PrintOptions mirrors the subset of Page.printToPDF parameters exposed to
// callers of this package.
type PrintOptions struct {
	Landscape           bool
	PrintBackground     bool
	PaperWidth          float64
	PaperHeight         float64
	MarginTop           float64
	MarginBottom        float64
	MarginLeft          float64
	MarginRight         float64
	DisplayHeaderFooter bool
	HeaderTemplate      string
	FooterTemplate      string
	Scale               float64
	PreferCSSPageSize   bool
}

func printToPDFParams(o PrintOptions) map[string]any {
	p := map[string]any{
		"landscape":           o.Landscape,
		"printBackground":     o.PrintBackground,
		"displayHeaderFooter": o.DisplayHeaderFooter,
		"preferCSSPageSize":   o.PreferCSSPageSize,
		"transferMode":        "ReturnAsBase64",
	}
	if o.PaperWidth > 0 {
		p["paperWidth"] = o.PaperWidth
	}
	if o.PaperHeight > 0 {
		p["paperHeight"] = o.PaperHeight
	}
	p["marginTop"] = o.MarginTop
	p["marginBottom"] = o.MarginBottom
	p["marginLeft"] = o.MarginLeft
	p["marginRight"] = o.MarginRight
	if o.HeaderTemplate != "" {
		p["headerTemplate"] = o.HeaderTemplate
	}
	if o.FooterTemplate != "" {
		p["footerTemplate"] = o.FooterTemplate
	}
	if o.Scale > 0 {
		p["scale"] = o.Scale
	}
	return p
}

// buildPrintProtocol is the canonical print sequence: enable the Page
// domain, navigate, wait for the navigated frame to stop loading, then
// print. The navigate-reply and frame-stopped-loading awaits form a
// two-element unordered set: the browser may emit the frameStoppedLoading
// event before or after delivering navigate's own response.
func buildPrintProtocol(url string, opts PrintOptions) *Protocol {
	steps := []step{
		fireAndForgetCall("enable", "Page.enable", nil),
		awaitAck("enable"),

		fireAndForgetCall("navigate", "Page.navigate", func(State) any {
			return map[string]any{"url": url}
		}),
		Await("navigate-reply", awaitCallResult("navigateCallID", func(state State, result json.RawMessage) (State, error) {
			var r struct {
				FrameID   string `json:"frameId"`
				ErrorText string `json:"errorText"`
			}
			if err := json.Unmarshal(result, &r); err != nil {
				return state, err
			}
			if r.ErrorText != "" {
				return state, fmt.Errorf("navigation failed: %s", r.ErrorText)
			}
			state = state.clone()
			state["frameId"] = r.FrameID
			return state, nil
		})),
		Await("frame-stopped-loading", awaitEvent("Page.frameStoppedLoading")),

		fireAndForgetCall("print", "Page.printToPDF", func(state State) any {
			return printToPDFParams(opts)
		}),
		Await("printed", awaitCallResult("printCallID", func(state State, result json.RawMessage) (State, error) {
			var r struct {
				Data string `json:"data"`
			}
			if err := json.Unmarshal(result, &r); err != nil {
				return state, err
			}
			decoded, err := base64.StdEncoding.DecodeString(r.Data)
			if err != nil {
				return state, fmt.Errorf("decoding printToPDF data: %w", err)
			}
			state = state.clone()
			state["pdf"] = decoded
			return state, nil
		})),
		Output("pdf-bytes", func(state State) any {
			return state["pdf"].([]byte)
		}),
	}
	return NewProtocol("print", true, steps)
}

// NewPrintProtocol builds the canonical navigate-then-print protocol for
// url. Exported so callers outside this package can drive Session.Run
// without reaching into engine internals.
func NewPrintProtocol(url string, opts PrintOptions) *Protocol {
	return buildPrintProtocol(url, opts)
}

// buildPingProtocol is a minimal liveness check: it round-trips
// Target.getTargets without touching any session-specific state, and does
// not count against a session's use budget. SessionPool does not run it.
func buildPingProtocol() *Protocol {
	steps := []step{
		fireAndForgetCall("ping", "Target.getTargets", nil),
		awaitAck("ping"),
		Output("pong", func(State) any { return true }),
	}
	return NewProtocol("ping", false, steps)
}
