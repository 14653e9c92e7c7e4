// Package device binds headless displays to user accounts.
//
// A display registers itself with a shared firmware secret and receives a
// generated name and a six-digit pairing code, which it shows on screen.
// A signed-in user enters that code to pair the display to their account,
// after which the display is visible only to that user until they
// disconnect it.
//
// # Lifecycle
//
//	registered (unpaired) ──pair──▶ paired ──disconnect──▶ unpaired ──pair──▶ …
//
// The pairing code is fixed at registration and stays valid in every state,
// so a display can be re-paired with the code it already shows. Pairing a
// display that already has an owner moves it to the new owner.
//
// # Notifications
//
// After each committed pair or disconnect the Service calls its Notifier so
// the display can learn its new state (see the mqtt package). Notification
// failures are logged and never fail the operation.
package device
