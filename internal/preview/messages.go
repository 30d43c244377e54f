package preview

import (
	"encoding/json"

	"github.com/frikeldon/openscad/foundation/scad"
	"github.com/frikeldon/openscad/foundation/scad/csg"
	"github.com/frikeldon/openscad/internal/service"
)

// Message types
const (
	TypeInterpret  = "interpret"  // client: run a source
	TypePing       = "ping"       // client: application level ping
	TypeHello      = "hello"      // server: session established
	TypeResult     = "result"     // server: CSG of a successful run
	TypeDiagnostic = "diagnostic" // server: positioned error of a failed run
	TypePong       = "pong"       // server: reply to ping
	TypeError      = "error"      // server: protocol error
)

// WSMessage represents a client message
type WSMessage struct {
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// InterpretPayload is the payload of an interpret message
type InterpretPayload struct {
	Name   string `json:"name,omitempty"`
	Source string `json:"source"`
}

// WSResponse represents a server message. ID echoes the request ID.
type WSResponse struct {
	Type    string      `json:"type"`
	ID      string      `json:"id,omitempty"`
	Payload interface{} `json:"payload"`
}

// HelloPayload is sent once per connection
type HelloPayload struct {
	Session string `json:"session"`
	Version string `json:"version"`
}

// ResultPayload carries the cleaned CSG tree
type ResultPayload struct {
	Name       string     `json:"name,omitempty"`
	RunID      string     `json:"runId"`
	Objects    []csg.Node `json:"objects"`
	Steps      int        `json:"steps"`
	Cached     bool       `json:"cached"`
	DurationMS float64    `json:"durationMs"`
}

// DiagnosticPayload carries the error span editors underline
type DiagnosticPayload struct {
	Name string `json:"name,omitempty"`
	scad.Diagnostic
}

// WSErrorPayload represents a protocol error payload
type WSErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// outcomeResponse converts an interpretation outcome into a response
func outcomeResponse(id string, out *service.Outcome) WSResponse {
	if out.Failed() {
		return WSResponse{
			Type:    TypeDiagnostic,
			ID:      id,
			Payload: DiagnosticPayload{Name: out.Name, Diagnostic: *out.Diagnostic},
		}
	}

	objects := out.Result.Objects
	if objects == nil {
		objects = []csg.Node{}
	}
	return WSResponse{
		Type: TypeResult,
		ID:   id,
		Payload: ResultPayload{
			Name:       out.Name,
			RunID:      out.Result.RunID,
			Objects:    objects,
			Steps:      out.Result.Steps,
			Cached:     out.Cached,
			DurationMS: float64(out.Result.Duration.Microseconds()) / 1000,
		},
	}
}
