package workflow

import "slices"

// Operator compares a trigger field against a value.
type Operator string

const (
	OpContains   Operator = "contains"
	OpEquals     Operator = "equals"
	OpStartsWith Operator = "starts_with"
	OpEndsWith   Operator = "ends_with"
)

// Operators lists every valid operator in display order.
var Operators = []Operator{OpContains, OpEquals, OpStartsWith, OpEndsWith}

// Valid reports whether o is one of the four known operators.
func (o Operator) Valid() bool {
	return slices.Contains(Operators, o)
}

// Condition is a single predicate a trigger must satisfy.
type Condition struct {
	Field    string   `json:"field" yaml:"field" validate:"notblank" jsonschema_description:"The field to check, e.g., 'subject', 'sender', 'title'."`
	Operator Operator `json:"operator" yaml:"operator" validate:"operator" jsonschema:"enum=contains,enum=equals,enum=starts_with,enum=ends_with" jsonschema_description:"The comparison operator."`
	Value    string   `json:"value" yaml:"value" jsonschema_description:"The value to compare against."`
}

// Trigger is the event that starts an automation.
type Trigger struct {
	Service    string      `json:"service" yaml:"service" validate:"notblank" jsonschema_description:"The application or service where the trigger originates, e.g., 'email', 'calendar', 'github'."`
	Event      string      `json:"event" yaml:"event" validate:"notblank" jsonschema_description:"The specific event that occurs, e.g., 'new_email_received', 'event_starts', 'new_pull_request'."`
	Conditions []Condition `json:"conditions,omitempty" yaml:"conditions,omitempty" validate:"dive" jsonschema_description:"A list of conditions that must be met for the trigger to fire."`
}

// Action is the operation performed when the trigger fires.
type Action struct {
	Service   string  `json:"service" yaml:"service" validate:"notblank" jsonschema_description:"The application or service where the action is performed, e.g., 'slack', 'google_drive', 'todoist'."`
	Operation string  `json:"operation" yaml:"operation" validate:"notblank" jsonschema_description:"The specific operation to execute, e.g., 'send_message', 'upload_file', 'create_task'."`
	Details   Details `json:"details,omitempty,omitzero" yaml:"details,omitempty" jsonschema_description:"A key-value map of parameters for the action, e.g., {'channel': '#general', 'message': 'New invoice received'}."`
}

// Automation pairs a trigger with an action.
type Automation struct {
	Trigger Trigger `json:"trigger" yaml:"trigger" jsonschema_description:"The event that starts the automation."`
	Action  Action  `json:"action" yaml:"action" jsonschema_description:"The operation to perform when the trigger fires."`
}

// Clone returns a deep copy that shares no memory with a.
func (a Automation) Clone() Automation {
	out := a
	if a.Trigger.Conditions != nil {
		out.Trigger.Conditions = slices.Clone(a.Trigger.Conditions)
	}
	out.Action.Details = a.Action.Details.Clone()
	return out
}

// Equal reports structural equality. Nil and empty conditions are equal, as
// are zero and empty details.
func (a Automation) Equal(b Automation) bool {
	return a.Trigger.Service == b.Trigger.Service &&
		a.Trigger.Event == b.Trigger.Event &&
		ConditionsEqual(a.Trigger.Conditions, b.Trigger.Conditions) &&
		a.Action.Service == b.Action.Service &&
		a.Action.Operation == b.Action.Operation &&
		a.Action.Details.Equal(b.Action.Details)
}

// ConditionsEqual compares two condition lists element by element.
func ConditionsEqual(a, b []Condition) bool {
	return slices.Equal(a, b)
}
