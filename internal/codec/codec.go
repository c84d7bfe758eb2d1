// Package codec converts the structured parts of an automation (trigger
// conditions and action details) to and from the editable JSON text shown
// in the editor.
//
// Encoding is total. Decoding is fail-soft: bad input never produces a
// partial value, only a *DecodeError the caller can report while keeping
// its previous value.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/buger/jsonparser"

	"github.com/zjrosen/automator/internal/workflow"
)

const indent = "  "

// ErrMalformedStructuredText matches every decode failure.
var ErrMalformedStructuredText = errors.New("malformed structured text")

// Decode targets.
const (
	TargetConditions = "conditions"
	TargetDetails    = "details"
)

// DecodeError reports why text could not be decoded into Target.
type DecodeError struct {
	Target string
	Cause  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Target, e.Cause)
}

// Unwrap exposes both the sentinel and the underlying cause.
func (e *DecodeError) Unwrap() []error {
	return []error{ErrMalformedStructuredText, e.Cause}
}

// EncodeConditions renders conditions as an indented JSON array.
// nil renders as "[]".
func EncodeConditions(conds []workflow.Condition) string {
	if len(conds) == 0 {
		return "[]"
	}
	out, err := marshalIndent(conds)
	if err != nil {
		// Conditions hold only strings; Marshal cannot fail.
		return "[]"
	}
	return out
}

// EncodeDetails renders details as an indented JSON object in key order.
// Empty details render as "{}".
func EncodeDetails(d workflow.Details) string {
	if d.IsZero() {
		return "{}"
	}
	out, err := marshalIndent(d)
	if err != nil {
		return "{}"
	}
	return out
}

// marshalIndent renders v as indented JSON without HTML escaping, so the
// text reads the way the user typed it.
func marshalIndent(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

var conditionFields = []string{"field", "operator", "value"}

// DecodeConditions parses text produced by EncodeConditions or edited by a
// user. Blank text yields no conditions. The text must be a JSON array of
// objects holding exactly the string fields field, operator and value, with
// operator one of the known operators.
func DecodeConditions(text string) ([]workflow.Condition, error) {
	data, blank, err := prepare(TargetConditions, text)
	if err != nil || blank {
		return nil, err
	}
	if err := expectType(TargetConditions, data, jsonparser.Array, "an array"); err != nil {
		return nil, err
	}

	out := []workflow.Condition{}
	if len(bytes.TrimSpace(data[1:len(data)-1])) == 0 {
		return out, nil
	}
	var elemErr error
	_, err = jsonparser.ArrayEach(data, func(value []byte, dataType jsonparser.ValueType, _ int, parseErr error) {
		if elemErr != nil {
			return
		}
		if parseErr != nil {
			elemErr = parseErr
			return
		}
		cond, err := decodeCondition(value, dataType)
		if err != nil {
			elemErr = fmt.Errorf("condition %d: %w", len(out), err)
			return
		}
		out = append(out, cond)
	})
	if err == nil {
		err = elemErr
	}
	if err != nil {
		return nil, &DecodeError{Target: TargetConditions, Cause: err}
	}
	return out, nil
}

func decodeCondition(data []byte, dataType jsonparser.ValueType) (workflow.Condition, error) {
	if dataType != jsonparser.Object {
		return workflow.Condition{}, fmt.Errorf("expected an object, got %v", dataType)
	}

	seen := make(map[string]string, len(conditionFields))
	err := jsonparser.ObjectEach(data, func(key, value []byte, dataType jsonparser.ValueType, _ int) error {
		name := string(key)
		if !slices.Contains(conditionFields, name) {
			return fmt.Errorf("unknown field %q", name)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("duplicate field %q", name)
		}
		if dataType != jsonparser.String {
			return fmt.Errorf("%s must be a string, got %v", name, dataType)
		}
		s, err := jsonparser.ParseString(value)
		if err != nil {
			return fmt.Errorf("%s is not a valid string: bad escape sequence", name)
		}
		seen[name] = s
		return nil
	})
	if err != nil {
		return workflow.Condition{}, err
	}

	for _, f := range conditionFields {
		if _, ok := seen[f]; !ok {
			return workflow.Condition{}, fmt.Errorf("missing field %q", f)
		}
	}
	op := workflow.Operator(seen["operator"])
	if !op.Valid() {
		return workflow.Condition{}, fmt.Errorf("unknown operator %q", op)
	}
	return workflow.Condition{Field: seen["field"], Operator: op, Value: seen["value"]}, nil
}

// DecodeDetails parses a JSON object of string values, keeping key order.
// Blank text yields empty details.
func DecodeDetails(text string) (workflow.Details, error) {
	data, blank, err := prepare(TargetDetails, text)
	if err != nil || blank {
		return workflow.Details{}, err
	}
	if err := expectType(TargetDetails, data, jsonparser.Object, "an object"); err != nil {
		return workflow.Details{}, err
	}

	var d workflow.Details
	if err := d.UnmarshalJSON(data); err != nil {
		return workflow.Details{}, &DecodeError{Target: TargetDetails, Cause: err}
	}
	return d, nil
}

// prepare trims text and rejects anything that is not a single well-formed
// JSON value. jsonparser does not validate the whole document on its own.
func prepare(target, text string) (data []byte, blank bool, err error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, true, nil
	}
	data = []byte(trimmed)
	if !json.Valid(data) {
		return nil, false, &DecodeError{Target: target, Cause: syntaxError(data)}
	}
	return data, false, nil
}

func syntaxError(data []byte) error {
	var v any
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&v); err != nil {
		return err
	}
	return errors.New("unexpected data after JSON value")
}

func expectType(target string, data []byte, want jsonparser.ValueType, desc string) error {
	_, got, _, err := jsonparser.Get(data)
	if err != nil {
		return &DecodeError{Target: target, Cause: err}
	}
	if got != want {
		return &DecodeError{Target: target, Cause: fmt.Errorf("expected %s, got %v", desc, got)}
	}
	return nil
}
