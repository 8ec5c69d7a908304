package domain

import "time"

// Intent is the branch a turn is routed to.
type Intent string

// Intents.
const (
	IntentStatistics    Intent = "statistics"
	IntentContent       Intent = "content"
	IntentVisualization Intent = "visualization"
)

// DefaultPrecedence is the tie-break order for multi-intent input.
func DefaultPrecedence() []Intent {
	return []Intent{IntentVisualization, IntentContent, IntentStatistics}
}

// IsValid returns true if the intent is recognised.
func (i Intent) IsValid() bool {
	switch i {
	case IntentStatistics, IntentContent, IntentVisualization:
		return true
	default:
		return false
	}
}

// Capability tags a delegate in the orchestrator registry.
type Capability string

// Capabilities.
const (
	CapabilityStatistics    Capability = "statistics"
	CapabilityRetrieval     Capability = "retrieval"
	CapabilityVisualization Capability = "visualization"
	CapabilitySummary       Capability = "summary"
)

// TurnState is a step of the per-turn state machine.
type TurnState string

// Turn states.
const (
	StateReceived             TurnState = "RECEIVED"
	StateClassified           TurnState = "CLASSIFIED"
	StateAnsweredFromSnapshot TurnState = "ANSWERED_FROM_SNAPSHOT"
	StateDelegated            TurnState = "DELEGATED"
	StateDirectResponse       TurnState = "DIRECT_RESPONSE"
	StateAwaitingSpecialist   TurnState = "AWAITING_SPECIALIST"
	StateTerminal             TurnState = "TERMINAL"
)

// Role identifies who produced a message.
type Role string

// Roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one prior turn passed as history.
type Message struct {
	Role      Role
	Text      string
	ImagePath string
	At        time.Time
}

// TurnRequest is the input to a single turn.
type TurnRequest struct {
	SessionID string
	Text      string
	History   []Message
}

// ResponseKind distinguishes answer variants.
type ResponseKind string

// Response kinds.
const (
	ResponseText          ResponseKind = "text"
	ResponseTextWithImage ResponseKind = "text_with_image"
	ResponseNoResults     ResponseKind = "no_results"
	ResponseNotReady      ResponseKind = "not_ready"
	ResponseError         ResponseKind = "error"
)

// Response is the structured outcome of a turn.
type Response struct {
	Kind   ResponseKind
	Intent Intent

	// Text is the user-facing answer.
	Text string

	// ImagePath is set only for ResponseTextWithImage.
	ImagePath string

	// Segments holds Text split in generation order.
	Segments []string

	// Suggestions are relaxations or alternative chart kinds.
	Suggestions []string

	// Retryable marks transient failures the user may retry.
	Retryable bool

	// Handler names the delegate that produced the answer.
	Handler Capability

	// States is the state-machine trail of the turn.
	States []TurnState

	// Result carries the retrieval result when one was produced.
	Result *RetrievalResult
}

// HasImage reports whether the response carries an image reference.
func (r *Response) HasImage() bool {
	return r.Kind == ResponseTextWithImage && r.ImagePath != ""
}
