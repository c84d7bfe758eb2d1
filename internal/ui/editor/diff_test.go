package editor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLineDiff(t *testing.T) {
	before := "a\nb\nc\n"
	after := "a\nB\nc\nd\n"

	got := LineDiff(before, after)

	require.ElementsMatch(t, []DiffLine{
		{Kind: LineSame, Text: "a"},
		{Kind: LineRemoved, Text: "b"},
		{Kind: LineAdded, Text: "B"},
		{Kind: LineSame, Text: "c"},
		{Kind: LineAdded, Text: "d"},
	}, got)
}

func TestLineDiff_Identical(t *testing.T) {
	for _, l := range LineDiff("x\ny", "x\ny") {
		require.Equal(t, LineSame, l.Kind)
	}
}

func TestAutomationJSON_KeepsDetailOrder(t *testing.T) {
	a := newsletter()
	a.Action.Details.Set("after", "1")

	out := AutomationJSON(a)

	require.Less(t, strings.Index(out, `"channel"`), strings.Index(out, `"after"`))
}
