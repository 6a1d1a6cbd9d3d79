// Package tools exposes shared tool metadata, the Internal/Delegated/External
// dispatch classification, and JSON-schema argument validation used by the
// agent loop's tool-call handling (spec §4.1/§4.6).
package tools

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/ojashyadav101/lucy-sub000/internal/errkind"
	"github.com/ojashyadav101/lucy-sub000/internal/toolerrors"
)

// ID is the strong type for a fully qualified tool identifier
// (e.g. "lucy_slack_post_message"), kept distinct from bare strings so
// callers cannot accidentally mix tool names with other identifiers.
type ID string

// Dispatch classifies how a tool call is executed (spec §4.6's three-way
// dispatch: internal/delegated/external).
type Dispatch string

const (
	// DispatchInternal runs in-process against a Lucy-owned capability
	// (workspace memory, skills, cron/heartbeat management).
	DispatchInternal Dispatch = "internal"
	// DispatchDelegated runs an inner agentloop.Run as a sub-agent, inline
	// in the parent's goroutine (the teacher's agent-as-tool pattern).
	DispatchDelegated Dispatch = "delegated"
	// DispatchExternal routes through the gateway to a connected
	// third-party tool (Slack, search, remote workbench).
	DispatchExternal Dispatch = "external"
)

// Spec describes a single callable tool: its identity, dispatch kind, and
// JSON-schema argument contract.
type Spec struct {
	// Name is the fully qualified tool identifier.
	Name ID
	// Description is surfaced to the planning LLM.
	Description string
	// Dispatch selects how calls to this tool are executed.
	Dispatch Dispatch
	// ArgSchema is the raw JSON schema argument calls are validated against
	// before dispatch; ValidateArguments compiles it on each call. Nil means
	// no validation is performed.
	ArgSchema []byte
	// DelegateAgentID names the sub-agent to run when Dispatch is
	// DispatchDelegated (the teacher's tools.ToolSpec.AgentID, narrowed to
	// the one field Lucy's delegation path needs).
	DelegateAgentID string
	// Destructive marks a tool whose side effects require the HITL
	// approval guard before dispatch (spec §4.6's destructive-action gate).
	Destructive bool
	// ModelFamily names the rate-limit model bucket this tool also draws
	// from, for external tools that themselves invoke an LLM (spec §4.6:
	// "External: ... executed with API-bucket and model-bucket rate
	// limits applied independently"). Empty for tools with no model cost.
	ModelFamily string
}

// Call is a single tool invocation requested by the planning LLM.
type Call struct {
	ID          string
	Name        ID
	ArgumentsJS json.RawMessage
}

// Result is the outcome of dispatching a Call. Error is nil on success;
// when set it is always a *toolerrors.ToolError so downstream policy and
// the degradation formatter can read its Kind.
type Result struct {
	CallID  string
	Content string
	Error   *toolerrors.ToolError
}

// ValidateArguments checks raw call arguments against a tool's compiled
// JSON schema, grounded on registry/service.go's
// validatePayloadJSONAgainstSchema: unmarshal schema and payload as bare
// `any` documents, compile with an in-memory resource name, validate.
// A validation failure is classified errkind.ArgumentParse so the agent
// loop appends a parse-error marker rather than treating it as a tool
// failure the LLM cannot recover from.
func ValidateArguments(name ID, schemaJSON, argumentsJSON []byte) *toolerrors.ToolError {
	if len(schemaJSON) == 0 {
		return nil
	}

	var schemaDoc any
	if err := json.Unmarshal(schemaJSON, &schemaDoc); err != nil {
		return toolerrors.NewWithCause(errkind.ArgumentParse, "unmarshal tool schema", err)
	}
	var argsDoc any
	if err := json.Unmarshal(argumentsJSON, &argsDoc); err != nil {
		return toolerrors.NewWithCause(errkind.ArgumentParse, "unmarshal tool arguments", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", schemaDoc); err != nil {
		return toolerrors.NewWithCause(errkind.ArgumentParse, "add tool schema resource", err)
	}
	schema, err := c.Compile("schema.json")
	if err != nil {
		return toolerrors.NewWithCause(errkind.ArgumentParse, "compile tool schema", err)
	}
	if err := schema.Validate(argsDoc); err != nil {
		return toolerrors.NewWithCause(errkind.ArgumentParse, fmt.Sprintf("arguments for %s failed schema validation", name), err)
	}
	return nil
}

// Registry resolves tool names to specs, the contract the agent loop's
// planner and dispatcher both depend on.
type Registry interface {
	Lookup(name ID) (Spec, bool)
	List() []Spec
}

// StaticRegistry is a Registry backed by an in-memory map, the shape used
// for Lucy's fixed built-in toolset (workspace/cron/heartbeat tools) as
// opposed to the gateway's dynamically discovered external tools.
type StaticRegistry struct {
	specs map[ID]Spec
}

// NewStaticRegistry builds a Registry from a fixed tool list.
func NewStaticRegistry(specs []Spec) *StaticRegistry {
	m := make(map[ID]Spec, len(specs))
	for _, s := range specs {
		m[s.Name] = s
	}
	return &StaticRegistry{specs: m}
}

// Lookup implements Registry.
func (r *StaticRegistry) Lookup(name ID) (Spec, bool) {
	s, ok := r.specs[name]
	return s, ok
}

// List implements Registry.
func (r *StaticRegistry) List() []Spec {
	out := make([]Spec, 0, len(r.specs))
	for _, s := range r.specs {
		out = append(out, s)
	}
	return out
}
