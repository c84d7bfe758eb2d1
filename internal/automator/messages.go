package automator

import (
	"context"
	"errors"

	"github.com/zjrosen/automator/internal/codec"
	"github.com/zjrosen/automator/internal/extract"
	"github.com/zjrosen/automator/internal/session"
	"github.com/zjrosen/automator/internal/store"
)

// ExamplePrompt is the rephrasing example shown with AmbiguousGuidance.
const ExamplePrompt = "When a new email arrives from news@example.com, send a slack message to #general"

// AmbiguousGuidance is shown when a request could not be turned into an
// automation.
const AmbiguousGuidance = "The request could not be understood as an automation. " +
	"Please try phrasing it differently, for example: '" + ExamplePrompt + "'."

// ExamplePrompts are offered as starting points in the request input.
var ExamplePrompts = []string{
	"When a new email is received from 'billing@company.com' with 'invoice' in the subject, save the attachment to Google Drive.",
	"If a new pull request is opened in the 'frontend' repo, send a notification to the '#dev-alerts' Slack channel.",
	"When a calendar event named 'Team Standup' is about to start, create a task in Todoist called 'Prepare for Standup'.",
}

// ErrorMessage turns an error from the Service into text for the user.
// It returns "" for nil.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var transport *extract.TransportError
	var decode *codec.DecodeError
	switch {
	case errors.Is(err, extract.ErrAmbiguousInput):
		return AmbiguousGuidance
	case errors.Is(err, extract.ErrEmptyPrompt):
		return "Describe the automation you want to create."
	case errors.Is(err, context.Canceled):
		return "The request was cancelled."
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out. Please try again."
	case errors.As(err, &transport):
		return transport.Error()
	case errors.Is(err, store.ErrNotFound):
		return "That automation no longer exists; unsaved changes were discarded."
	case errors.Is(err, store.ErrIndexOutOfRange):
		return "That automation no longer exists."
	case errors.As(err, &decode):
		return decode.Error()
	case errors.Is(err, session.ErrNotEditing), errors.Is(err, ErrNoSession):
		return "Nothing is being edited."
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return "An unknown error occurred."
}
