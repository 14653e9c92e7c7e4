// Package audit records who did what to which account or display.
//
// Entries are written to the audit_logs table. Request handlers enqueue
// entries on a Writer, which persists them serially in the background so
// a slow or locked database never delays a response. The trail is
// best-effort: when the queue is full an entry is dropped and a warning
// logged.
package audit
