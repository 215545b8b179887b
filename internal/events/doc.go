// Package events provides types and interfaces for an event-driven architecture.
//
// The user service emits events for follow-up work it must not block on
// (deleting a replaced profile image) and for partial failures an operator
// has to reconcile (an identity record left without a profile). Handlers are
// registered on an emitter at startup; the service never knows which
// handlers exist.
//
// The primary components are:
//   - Event: a typed message with a JSON payload
//   - EventHandler: interface for components that handle events
//   - EventEmitter: interface for components that publish events
//   - ReconciliationLogger: handler that records reconciliation events
package events
