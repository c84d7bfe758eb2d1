package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/automator/internal/codec"
	"github.com/zjrosen/automator/internal/store"
	"github.com/zjrosen/automator/internal/workflow"
)

func invoiceAutomation() workflow.Automation {
	return workflow.Automation{
		Trigger: workflow.Trigger{
			Service: "email",
			Event:   "new_email_received",
			Conditions: []workflow.Condition{
				{Field: "subject", Operator: workflow.OpContains, Value: "invoice"},
			},
		},
		Action: workflow.Action{
			Service:   "slack",
			Operation: "send_message",
			Details:   workflow.NewDetails("channel", "#general"),
		},
	}
}

func newSession(t *testing.T) (*store.Collection, *Session) {
	t.Helper()
	items := store.New()
	id := items.Append(invoiceAutomation())
	return items, New(items, id, 0)
}

func TestSession_StartsViewing(t *testing.T) {
	_, s := newSession(t)

	require.Equal(t, Viewing, s.State())
	require.False(t, s.Dirty())
	require.ErrorIs(t, s.SetField(PartTrigger, FieldService, "x"), ErrNotEditing)
	require.ErrorIs(t, s.SetStructured(PartAction, FieldDetails, "{}"), ErrNotEditing)
	require.NoError(t, s.Save(), "save while viewing is a no-op")
	s.Cancel()

	view, ok := s.View()
	require.True(t, ok)
	require.True(t, view.Equal(invoiceAutomation()))
}

func TestSession_EditDetailsAndSave(t *testing.T) {
	items, s := newSession(t)

	require.NoError(t, s.Begin())
	require.Equal(t, Editing, s.State())
	require.NoError(t, s.SetStructured(PartAction, FieldDetails, `{"channel":"#eng","message":"hi"}`))
	require.True(t, s.Dirty())
	require.NoError(t, s.Save())
	require.Equal(t, Viewing, s.State())

	stored, err := items.At(0)
	require.NoError(t, err)
	require.Equal(t, []workflow.Pair{{Key: "channel", Value: "#eng"}, {Key: "message", Value: "hi"}}, stored.Automation.Action.Details.Pairs())
	require.Equal(t, invoiceAutomation().Trigger, stored.Automation.Trigger)
}

func TestSession_CancelLeavesStoreUntouched(t *testing.T) {
	items, s := newSession(t)

	require.NoError(t, s.Begin())
	require.NoError(t, s.SetField(PartTrigger, FieldService, "calendar"))
	require.NoError(t, s.SetField(PartAction, FieldOperation, "create_task"))
	require.NoError(t, s.SetStructured(PartTrigger, FieldConditions, "[]"))
	s.Cancel()

	require.Equal(t, Viewing, s.State())
	stored, _ := items.At(0)
	require.True(t, stored.Automation.Equal(invoiceAutomation()))
}

func TestSession_DraftDoesNotLeakIntoStoreBeforeSave(t *testing.T) {
	items, s := newSession(t)

	require.NoError(t, s.Begin())
	require.NoError(t, s.SetStructured(PartAction, FieldDetails, `{"channel":"#eng"}`))

	stored, _ := items.At(0)
	v, _ := stored.Automation.Action.Details.Get("channel")
	require.Equal(t, "#general", v)

	view, _ := s.View()
	v, _ = view.Action.Details.Get("channel")
	require.Equal(t, "#eng", v)
}

func TestSession_MalformedTextKeepsPreviousValue(t *testing.T) {
	_, s := newSession(t)
	require.NoError(t, s.Begin())

	err := s.SetStructured(PartTrigger, FieldConditions, "{not json")
	require.ErrorIs(t, err, codec.ErrMalformedStructuredText)

	err = s.SetStructured(PartAction, FieldDetails, `{"n":1}`)
	require.ErrorIs(t, err, codec.ErrMalformedStructuredText)

	view, _ := s.View()
	require.True(t, view.Equal(invoiceAutomation()))
	require.False(t, s.Dirty())
	require.Equal(t, Editing, s.State())
}

func TestSession_UnknownField(t *testing.T) {
	_, s := newSession(t)
	require.NoError(t, s.Begin())

	require.ErrorIs(t, s.SetField(PartTrigger, FieldOperation, "x"), ErrUnknownField)
	require.ErrorIs(t, s.SetField(PartAction, FieldEvent, "x"), ErrUnknownField)
	require.ErrorIs(t, s.SetField("condition", FieldService, "x"), ErrUnknownField)
	require.ErrorIs(t, s.SetStructured(PartTrigger, FieldDetails, "{}"), ErrUnknownField)
	require.ErrorIs(t, s.SetStructured(PartAction, FieldConditions, "[]"), ErrUnknownField)
	require.False(t, s.Dirty())
}

func TestSession_SaveAfterDeleteDiscardsDraft(t *testing.T) {
	items := store.New()
	first := items.Append(invoiceAutomation())
	other := invoiceAutomation()
	other.Trigger.Service = "github"
	items.Append(other)

	s := New(items, first, 0)
	require.NoError(t, s.Begin())
	require.NoError(t, s.SetField(PartAction, FieldService, "todoist"))

	require.NoError(t, items.Delete(0))

	require.ErrorIs(t, s.Save(), store.ErrNotFound)
	require.Equal(t, Viewing, s.State())

	remaining, _ := items.At(0)
	require.Equal(t, "github", remaining.Automation.Trigger.Service, "the item that moved into position 0 is untouched")
	require.Equal(t, "slack", remaining.Automation.Action.Service)

	_, ok := s.View()
	require.False(t, ok)
}

func TestSession_SaveFollowsItemAfterShift(t *testing.T) {
	items := store.New()
	items.Append(workflow.Automation{Trigger: workflow.Trigger{Service: "first"}})
	id := items.Append(invoiceAutomation())

	s := New(items, id, 1)
	require.NoError(t, s.Begin())
	require.NoError(t, s.SetField(PartTrigger, FieldEvent, "email_opened"))
	require.NoError(t, items.Delete(0))

	require.NoError(t, s.Save())
	require.Equal(t, 0, s.Index())

	stored, _ := items.At(0)
	require.Equal(t, "email_opened", stored.Automation.Trigger.Event)
}

func TestSession_BeginTwiceKeepsDraft(t *testing.T) {
	_, s := newSession(t)
	require.NoError(t, s.Begin())
	require.NoError(t, s.SetField(PartTrigger, FieldEvent, "changed"))
	require.NoError(t, s.Begin())

	view, _ := s.View()
	require.Equal(t, "changed", view.Trigger.Event)
}

func TestSession_BeginOnDeletedItem(t *testing.T) {
	items, s := newSession(t)
	require.NoError(t, items.Delete(0))

	require.ErrorIs(t, s.Begin(), store.ErrNotFound)
	require.Equal(t, Viewing, s.State())
}

func TestSession_StructuredText(t *testing.T) {
	_, s := newSession(t)

	text, err := s.StructuredText(PartAction, FieldDetails)
	require.NoError(t, err)
	require.Equal(t, "{\n  \"channel\": \"#general\"\n}", text)

	require.NoError(t, s.Begin())
	require.NoError(t, s.SetStructured(PartTrigger, FieldConditions, ""))
	text, err = s.StructuredText(PartTrigger, FieldConditions)
	require.NoError(t, err)
	require.Equal(t, "[]", text)
}

func TestSession_DirtyClearsWhenDraftMatchesAgain(t *testing.T) {
	_, s := newSession(t)
	require.NoError(t, s.Begin())

	require.NoError(t, s.SetField(PartTrigger, FieldService, "calendar"))
	require.True(t, s.Dirty())
	require.NoError(t, s.SetField(PartTrigger, FieldService, "email"))
	require.False(t, s.Dirty())

	baseline, ok := s.Baseline()
	require.True(t, ok)
	require.True(t, baseline.Equal(invoiceAutomation()))
}
