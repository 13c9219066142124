package evaluator

import (
	"encoding/json"

	"github.com/thomasrohde/risp/pkg/formatter"
)

// functionJSON is the wire shape of a Function value. The body is rendered
// as canonical source so the output stays readable and re-parseable.
type functionJSON struct {
	Params []string `json:"params"`
	Body   string   `json:"body"`
}

// ObjectToJSON marshals a value to JSON bytes.
// Num and Bool map to JSON scalars; a nil value marshals as null.
func ObjectToJSON(v Object) ([]byte, error) {
	return json.Marshal(objectToRaw(v))
}

func objectToRaw(v Object) any {
	switch val := v.(type) {
	case Num:
		return val.Value
	case Bool:
		return val.Value
	case Function:
		params := val.Params
		if params == nil {
			params = []string{}
		}
		return functionJSON{Params: params, Body: formatter.FormatExpr(val.Body)}
	}
	return nil
}

// ObjectToJSONString is a convenience that returns a string.
func ObjectToJSONString(v Object) string {
	b, err := ObjectToJSON(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

// StatsToJSON marshals evaluation statistics.
func StatsToJSON(s BudgetTracker) ([]byte, error) {
	return json.Marshal(s)
}
