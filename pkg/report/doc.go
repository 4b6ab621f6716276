// Package report models the working daily report: an explicit State value
// holding the report date and its rows, updated only by applying Intents.
//
// Rows are UI-only; the only part that survives into a saved template is each
// row's Van. Session ties a State to a template store and the confirmation
// and alert hooks the UI provides.
package report
