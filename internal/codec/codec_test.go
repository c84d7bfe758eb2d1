package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/automator/internal/workflow"
)

func TestEncodeConditions(t *testing.T) {
	require.Equal(t, "[]", EncodeConditions(nil))
	require.Equal(t, "[]", EncodeConditions([]workflow.Condition{}))

	got := EncodeConditions([]workflow.Condition{{Field: "subject", Operator: workflow.OpContains, Value: "invoice"}})
	require.Equal(t, "[\n  {\n    \"field\": \"subject\",\n    \"operator\": \"contains\",\n    \"value\": \"invoice\"\n  }\n]", got)
}

func TestEncodeDetails(t *testing.T) {
	require.Equal(t, "{}", EncodeDetails(workflow.Details{}))

	got := EncodeDetails(workflow.NewDetails("message", "hi", "channel", "#eng"))
	require.Equal(t, "{\n  \"message\": \"hi\",\n  \"channel\": \"#eng\"\n}", got)
}

func TestEncode_KeepsMarkupCharacters(t *testing.T) {
	d := workflow.NewDetails("R&D <team>", "R&D <team>", "channel", "<#C123>")
	got := EncodeDetails(d)
	require.Equal(t, "{\n  \"R&D <team>\": \"R&D <team>\",\n  \"channel\": \"<#C123>\"\n}", got)
	require.NotContains(t, got, `\u00`)

	back, err := DecodeDetails(got)
	require.NoError(t, err)
	require.True(t, back.Equal(d))
	require.True(t, back.SameOrder(d))

	conds := EncodeConditions([]workflow.Condition{{Field: "subject", Operator: workflow.OpContains, Value: "Q&A > notes"}})
	require.Contains(t, conds, `"value": "Q&A > notes"`)
}

func TestDecodeConditions_Blank(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t"} {
		conds, err := DecodeConditions(text)
		require.NoError(t, err)
		require.Empty(t, conds)
	}
}

func TestDecodeConditions_EmptyArray(t *testing.T) {
	conds, err := DecodeConditions(" [ ] ")
	require.NoError(t, err)
	require.Empty(t, conds)
}

func TestDecodeConditions_Valid(t *testing.T) {
	conds, err := DecodeConditions(`[{"field":"sender","operator":"equals","value":"a@b.c"},{"value":"","operator":"ends_with","field":"title"}]`)
	require.NoError(t, err)
	require.Equal(t, []workflow.Condition{
		{Field: "sender", Operator: workflow.OpEquals, Value: "a@b.c"},
		{Field: "title", Operator: workflow.OpEndsWith, Value: ""},
	}, conds)
}

func TestDecodeConditions_Rejects(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"not json", "{not json", "invalid conditions"},
		{"object instead of array", `{"field":"a"}`, "expected an array"},
		{"element not object", `["a"]`, "expected an object"},
		{"missing field", `[{"field":"a","operator":"equals"}]`, `missing field "value"`},
		{"unknown field", `[{"field":"a","operator":"equals","value":"b","extra":"c"}]`, `unknown field "extra"`},
		{"non-string value", `[{"field":"a","operator":"equals","value":3}]`, "value must be a string"},
		{"bad operator", `[{"field":"a","operator":"matches","value":"b"}]`, `unknown operator "matches"`},
		{"duplicate field", `[{"field":"a","field":"b","operator":"equals","value":"c"}]`, `duplicate field "field"`},
		{"trailing data", `[] []`, "invalid conditions"},
		{"lone surrogate", `[{"field":"a","operator":"equals","value":"\ud800"}]`, "value is not a valid string: bad escape sequence"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conds, err := DecodeConditions(tt.text)
			require.Nil(t, conds)
			require.ErrorContains(t, err, tt.want)
			require.True(t, errors.Is(err, ErrMalformedStructuredText))

			var derr *DecodeError
			require.True(t, errors.As(err, &derr))
			require.Equal(t, TargetConditions, derr.Target)
		})
	}
}

func TestDecodeDetails_KeepsOrder(t *testing.T) {
	d, err := DecodeDetails(`{"channel":"#eng","message":"hi"}`)
	require.NoError(t, err)
	require.Equal(t, []string{"channel", "message"}, d.Keys())
	v, _ := d.Get("message")
	require.Equal(t, "hi", v)
}

func TestDecodeDetails_Blank(t *testing.T) {
	d, err := DecodeDetails("  ")
	require.NoError(t, err)
	require.True(t, d.IsZero())
}

func TestDecodeDetails_Rejects(t *testing.T) {
	for _, text := range []string{"{not json", `["a"]`, `null`, `"text"`, `{"count":1}`, `{"a":{"b":"c"}}`} {
		t.Run(text, func(t *testing.T) {
			d, err := DecodeDetails(text)
			require.True(t, d.IsZero())
			require.ErrorIs(t, err, ErrMalformedStructuredText)

			var derr *DecodeError
			require.ErrorAs(t, err, &derr)
			require.Equal(t, TargetDetails, derr.Target)
		})
	}
}

func conditionGen() *rapid.Generator[workflow.Condition] {
	return rapid.Custom(func(t *rapid.T) workflow.Condition {
		return workflow.Condition{
			Field:    rapid.String().Draw(t, "field"),
			Operator: rapid.SampledFrom(workflow.Operators).Draw(t, "operator"),
			Value:    rapid.String().Draw(t, "value"),
		}
	})
}

func detailsGen() *rapid.Generator[workflow.Details] {
	return rapid.Custom(func(t *rapid.T) workflow.Details {
		keys := rapid.SliceOfDistinct(rapid.String(), func(s string) string { return s }).Draw(t, "keys")
		var d workflow.Details
		for _, k := range keys {
			d.Set(k, rapid.String().Draw(t, "value"))
		}
		return d
	})
}

func TestDecodeDetails_LoneSurrogate(t *testing.T) {
	_, err := DecodeDetails(`{"a":"\ud800"}`)
	require.ErrorIs(t, err, ErrMalformedStructuredText)
	require.ErrorContains(t, err, `detail "a" is not a valid string: bad escape sequence`)
	require.NotContains(t, err.Error(), "Number/Boolean")
}

func TestConditions_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		conds := rapid.SliceOf(conditionGen()).Draw(t, "conditions")

		got, err := DecodeConditions(EncodeConditions(conds))
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if !workflow.ConditionsEqual(conds, got) {
			t.Fatalf("round trip mismatch: %#v != %#v", conds, got)
		}
	})
}

func TestDetails_RoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := detailsGen().Draw(t, "details")

		got, err := DecodeDetails(EncodeDetails(d))
		if err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if !got.Equal(d) || !got.SameOrder(d) {
			t.Fatalf("round trip mismatch: %v != %v", d.Pairs(), got.Pairs())
		}
	})
}

func TestDecode_NeverPanics(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := rapid.String().Draw(t, "text")
		conds, err := DecodeConditions(text)
		if err != nil && conds != nil {
			t.Fatalf("partial conditions returned with error")
		}
		d, err := DecodeDetails(text)
		if err != nil && !d.IsZero() {
			t.Fatalf("partial details returned with error")
		}
	})
}
