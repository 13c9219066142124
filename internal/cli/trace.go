package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/thomasrohde/risp/pkg/evaluator"
)

// TraceSummary aggregates an NDJSON trace file written by `risp run --trace`.
type TraceSummary struct {
	RunID          string         `json:"runId"`
	TotalEvents    int            `json:"totalEvents"`
	Expressions    int            `json:"expressions"`
	Applies        int            `json:"applies"`
	AppliesByName  map[string]int `json:"appliesByName"`
	Defines        int            `json:"defines"`
	MaxDepth       int            `json:"maxDepth"`
	BudgetExceeded int            `json:"budgetExceeded"`
	ErrorCode      string         `json:"errorCode,omitempty"`
	StartTime      string         `json:"startTime,omitempty"`
	EndTime        string         `json:"endTime,omitempty"`
	DurationMs     float64        `json:"durationMs"`
}

// traceWriter encodes trace events as NDJSON. The first write error is kept
// and later events are dropped.
type traceWriter struct {
	enc *json.Encoder
	err error
}

func newTraceWriter(w io.Writer) *traceWriter {
	return &traceWriter{enc: json.NewEncoder(w)}
}

func (tw *traceWriter) write(ev evaluator.TraceEvent) {
	if tw.err != nil {
		return
	}
	tw.err = tw.enc.Encode(ev)
}

type traceEvent struct {
	Event string         `json:"event"`
	RunID string         `json:"runId"`
	TS    string         `json:"ts"`
	Data  map[string]any `json:"data,omitempty"`
}

// ComputeTraceSummary reads trace events line by line. Lines that are not
// valid JSON are skipped.
func ComputeTraceSummary(r io.Reader) *TraceSummary {
	summary := &TraceSummary{
		AppliesByName: make(map[string]int),
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var event traceEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			continue
		}

		summary.TotalEvents++
		if summary.RunID == "" {
			summary.RunID = event.RunID
		}

		switch event.Event {
		case "run_start":
			if summary.StartTime == "" {
				summary.StartTime = event.TS
			}
		case "run_end":
			summary.EndTime = event.TS
			if code, ok := event.Data["code"].(string); ok {
				summary.ErrorCode = code
			}
		case "expr_start":
			summary.Expressions++
		case "define":
			summary.Defines++
		case "apply_start":
			summary.Applies++
			if name, ok := event.Data["fn"].(string); ok {
				summary.AppliesByName[name]++
			}
			// JSON numbers decode as float64.
			if depth, ok := event.Data["depth"].(float64); ok && int(depth) > summary.MaxDepth {
				summary.MaxDepth = int(depth)
			}
		case "budget_exceeded":
			summary.BudgetExceeded++
		}
	}

	if summary.StartTime != "" && summary.EndTime != "" {
		start, err1 := parseTime(summary.StartTime)
		end, err2 := parseTime(summary.EndTime)
		if err1 == nil && err2 == nil {
			summary.DurationMs = float64(end.Sub(start).Milliseconds())
		}
	}

	return summary
}

// PrintTraceSummaryText writes a human-readable summary.
func PrintTraceSummaryText(w io.Writer, s *TraceSummary) {
	fmt.Fprintf(w, "Run: %s\n", s.RunID)
	fmt.Fprintf(w, "Events: %d\n", s.TotalEvents)
	fmt.Fprintf(w, "Expressions: %d\n", s.Expressions)
	fmt.Fprintf(w, "Defines: %d\n", s.Defines)
	fmt.Fprintf(w, "Applies: %d (max depth %d)\n", s.Applies, s.MaxDepth)

	names := make([]string, 0, len(s.AppliesByName))
	for name := range s.AppliesByName {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %d\n", name, s.AppliesByName[name])
	}

	if s.BudgetExceeded > 0 {
		fmt.Fprintf(w, "Budget exceeded: %d\n", s.BudgetExceeded)
	}
	if s.ErrorCode != "" {
		fmt.Fprintf(w, "Error: %s\n", s.ErrorCode)
	}
	if s.DurationMs > 0 {
		fmt.Fprintf(w, "Duration: %.0fms\n", s.DurationMs)
	}
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("cannot parse time: %s", s)
}
