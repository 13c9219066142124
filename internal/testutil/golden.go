// Package testutil provides shared test helpers for risp Go tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ScenariosDir is the relative path from the module root to the scenarios.
const ScenariosDir = "testdata/scenarios"

// Scenario represents a test scenario loaded from a scenario.json file.
type Scenario struct {
	Cmd   []string `json:"cmd"`
	Stdin string   `json:"stdin,omitempty"`
	// Config is written to .risp.yaml in the scenario's project directory.
	Config string         `json:"config,omitempty"`
	Meta   *ScenarioMeta  `json:"meta,omitempty"`
	Expect ExpectedResult `json:"expect"`
}

// ScenarioMeta holds optional scenario metadata.
type ScenarioMeta struct {
	Tags []string `json:"tags,omitempty"`
}

// ExpectedResult describes the expected outcome of running a scenario.
type ExpectedResult struct {
	ExitCode         int             `json:"exitCode"`
	StdoutJSON       json.RawMessage `json:"stdoutJson,omitempty"`
	StdoutText       string          `json:"stdoutText,omitempty"`
	StdoutContains   string          `json:"stdoutContains,omitempty"`
	StderrJSONSubset json.RawMessage `json:"stderrJsonSubset,omitempty"`
	StderrContains   string          `json:"stderrContains,omitempty"`
}

// LoadScenario loads a scenario from a directory containing scenario.json.
func LoadScenario(dir string) (*Scenario, error) {
	data, err := os.ReadFile(filepath.Join(dir, "scenario.json"))
	if err != nil {
		return nil, err
	}
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%s: %w", dir, err)
	}
	if len(s.Cmd) == 0 {
		return nil, fmt.Errorf("%s: scenario has no cmd", dir)
	}
	return &s, nil
}

// ListScenarios returns all scenario directories under the given root, sorted.
func ListScenarios(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			scenarioPath := filepath.Join(root, e.Name(), "scenario.json")
			if _, err := os.Stat(scenarioPath); err == nil {
				dirs = append(dirs, filepath.Join(root, e.Name()))
			}
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// ResolveArgs rewrites arguments naming files inside scenarioDir to paths
// relative to the current directory, leaving flags and other values as is.
func ResolveArgs(scenarioDir string, cmd []string) []string {
	out := make([]string, len(cmd))
	for i, arg := range cmd {
		out[i] = arg
		if i == 0 || arg == "" || arg[0] == '-' {
			continue
		}
		candidate := filepath.Join(scenarioDir, arg)
		if _, err := os.Stat(candidate); err == nil {
			out[i] = candidate
		}
	}
	return out
}

// NormalizeJSON re-encodes raw JSON so that semantically equal documents
// compare equal as strings. Numbers keep their exact text.
func NormalizeJSON(raw []byte) (string, error) {
	v, err := decodeJSON(raw)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ContainsJSONSubset reports whether every element of the expected JSON array
// is a subset of some element of the actual JSON array.
func ContainsJSONSubset(expected, actual []byte) (bool, error) {
	e, err := decodeJSON(expected)
	if err != nil {
		return false, fmt.Errorf("expected: %w", err)
	}
	a, err := decodeJSON(actual)
	if err != nil {
		return false, fmt.Errorf("actual: %w", err)
	}
	eList, ok := e.([]any)
	if !ok {
		eList = []any{e}
	}
	aList, ok := a.([]any)
	if !ok {
		aList = []any{a}
	}
	for _, want := range eList {
		found := false
		for _, got := range aList {
			if IsSubset(want, got) {
				found = true
				break
			}
		}
		if !found {
			return false, nil
		}
	}
	return true, nil
}

func decodeJSON(raw []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// IsSubset checks if expected is a subset of actual (for JSON comparison).
func IsSubset(expected, actual any) bool {
	switch e := expected.(type) {
	case map[string]any:
		a, ok := actual.(map[string]any)
		if !ok {
			return false
		}
		for k, ev := range e {
			av, exists := a[k]
			if !exists {
				return false
			}
			if !IsSubset(ev, av) {
				return false
			}
		}
		return true

	case []any:
		a, ok := actual.([]any)
		if !ok {
			return false
		}
		if len(e) > len(a) {
			return false
		}
		for i, ev := range e {
			if !IsSubset(ev, a[i]) {
				return false
			}
		}
		return true

	case json.Number:
		if an, ok := actual.(json.Number); ok {
			return e == an
		}
		return false

	case string:
		if as, ok := actual.(string); ok {
			return e == as
		}
		return false

	case bool:
		if ab, ok := actual.(bool); ok {
			return e == ab
		}
		return false

	case nil:
		return actual == nil

	default:
		return fmt.Sprintf("%v", expected) == fmt.Sprintf("%v", actual)
	}
}
