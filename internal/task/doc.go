// Package task runs background work that must not block a request, such as
// deleting a profile image after the profile stopped referencing it. Events
// are turned into tasks, buffered on an in-memory queue and executed by a
// fixed pool of workers. Queued tasks are not persisted; work lost on
// shutdown only leaves unreferenced objects behind.
package task
