// Package workflow defines the automation data model: a Trigger (service,
// event, optional conditions) paired with an Action (service, operation,
// optional details).
//
// # Core Types
//
// Automation is the unit of storage, display and editing. Both halves are
// always present; absent Conditions or Details are equivalent to empty.
//
// Condition is an immutable field/operator/value predicate owned by exactly
// one Trigger. Operator is a closed enum of four values.
//
// Details is an insertion-ordered string map. Order is kept for display and
// for the JSON/YAML renderings; equality ignores it.
//
// Service, event and operation names are open-world strings. Nothing in this
// package restricts them beyond "not blank" in Validate.
//
// # Display Helpers
//
// Label turns identifiers such as "new_email_received" into "New Email
// Received". ServiceKey derives the lookup key used by icon tables. Both are
// total and affect display only, never equality.
package workflow
