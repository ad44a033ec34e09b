package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a document store test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario (and its golden file).
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Fixtures lists CUE fixture files or directories to seed before the steps.
	// Paths are relative to the scenario file location.
	Fixtures []string `yaml:"fixtures,omitempty"`

	// Steps run in order against the engine.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and state.
	// Supported types: trace_contains, trace_order, trace_count, final_state
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one store operation.
type Step struct {
	// Op is one of create, get, update, destroy, increment, query.
	Op string `yaml:"op"`

	// Collection names the target collection (all ops except query).
	Collection string `yaml:"collection,omitempty"`

	// ID is the document id (get, destroy, increment).
	ID string `yaml:"id,omitempty"`

	// Fields is the new document body (create).
	Fields map[string]any `yaml:"fields,omitempty"`

	// Document is the replacement document, including id and version (update).
	Document map[string]any `yaml:"document,omitempty"`

	// Key and By configure increment. By defaults to 1.
	Key string `yaml:"key,omitempty"`
	By  any    `yaml:"by,omitempty"`

	// Include lists reference paths to expand (get).
	Include []string `yaml:"include,omitempty"`

	// Query is a wire-format query (query):
	// {collection, where: [[field, op, value], ...], combine, sort, skip, limit, count, include}
	Query map[string]any `yaml:"query,omitempty"`

	// Expect validates the step result. If nil, no validation is performed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies the expected outcome of a step. Only the fields set are
// checked.
type Expect struct {
	// ID and Version check a create result.
	ID      string `yaml:"id,omitempty"`
	Version *int64 `yaml:"version,omitempty"`

	// OK checks the boolean result of update and destroy.
	OK *bool `yaml:"ok,omitempty"`

	// Found checks whether get returned a document.
	Found *bool `yaml:"found,omitempty"`

	// Document is a subset match against the get result.
	Document map[string]any `yaml:"document,omitempty"`

	// IDs is the exact ordered list of result ids of a query.
	IDs []string `yaml:"ids,omitempty"`

	// Count is the count of a count query, or the result length otherwise.
	Count *int `yaml:"count,omitempty"`
}

// Assertion validates trace or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "trace_contains": an event of Event kind (optionally in Collection,
	//   with Document as a subset) appears in the trace
	// - "trace_order": the first occurrences of Events appear in order
	// - "trace_count": Event appears exactly Count times
	// - "final_state": exactly one document in Collection matches Where and
	//   contains Expect; with Absent, no document matches Where
	Type string `yaml:"type"`

	// Event is the event kind (created, updated, destroyed, incremented).
	Event string `yaml:"event,omitempty"`

	// Events is the expected event order (used by trace_order).
	Events []string `yaml:"events,omitempty"`

	// Collection restricts trace assertions and names the final_state collection.
	Collection string `yaml:"collection,omitempty"`

	// Document is a subset match against the event document (trace_contains).
	Document map[string]any `yaml:"document,omitempty"`

	// Count is the expected number of occurrences (used by trace_count).
	Count int `yaml:"count,omitempty"`

	// Where selects documents by exact field values (used by final_state).
	Where map[string]any `yaml:"where,omitempty"`

	// Expect contains expected field values (used by final_state).
	// Subset match - only specified fields are validated.
	Expect map[string]any `yaml:"expect,omitempty"`

	// Absent asserts that no document matches Where (used by final_state).
	Absent bool `yaml:"absent,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// Step op constants.
const (
	OpCreate    = "create"
	OpGet       = "get"
	OpUpdate    = "update"
	OpDestroy   = "destroy"
	OpIncrement = "increment"
	OpQuery     = "query"
)

// LoadScenario reads and parses a scenario YAML file. Fixture paths are
// resolved relative to the scenario file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving fixture paths relative to the provided base path.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, err
	}

	for i, fixturePath := range scenario.Fixtures {
		if !filepath.IsAbs(fixturePath) && basePath != "" {
			scenario.Fixtures[i] = filepath.Join(basePath, fixturePath)
		}
	}

	for _, fixturePath := range scenario.Fixtures {
		if _, err := os.Stat(fixturePath); os.IsNotExist(err) {
			return nil, fmt.Errorf("invalid scenario: fixture not found: %s", fixturePath)
		}
	}

	return scenario, nil
}

// ParseScenario parses scenario YAML without touching the filesystem.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateStep validates a single step based on its op.
func validateStep(index int, s *Step) error {
	if s.Op == "" {
		return fmt.Errorf("steps[%d]: op is required", index)
	}

	switch s.Op {
	case OpCreate, OpUpdate:
		if s.Collection == "" {
			return fmt.Errorf("steps[%d]: collection is required for %s", index, s.Op)
		}
		if s.Op == OpUpdate && s.Document == nil {
			return fmt.Errorf("steps[%d]: document is required for update", index)
		}
	case OpGet, OpDestroy:
		if s.Collection == "" || s.ID == "" {
			return fmt.Errorf("steps[%d]: collection and id are required for %s", index, s.Op)
		}
	case OpIncrement:
		if s.Collection == "" || s.ID == "" || s.Key == "" {
			return fmt.Errorf("steps[%d]: collection, id and key are required for increment", index)
		}
	case OpQuery:
		if s.Query == nil {
			return fmt.Errorf("steps[%d]: query is required for query", index)
		}
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, s.Op)
	}

	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Event == "" {
			return fmt.Errorf("assertions[%d]: event is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if a.Collection == "" {
			return fmt.Errorf("assertions[%d]: collection is required for final_state", index)
		}
		if !a.Absent && len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
