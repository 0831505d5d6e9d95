// Package watch rebuilds a container whenever its build context changes.
//
// Two pieces cooperate through channels:
//
//   - Watcher is the producer. It registers fsnotify watches on every
//     directory below a root, adds new directories as they appear, and
//     stamps each change with the time it was observed. Delivery into the
//     bounded Events channel never blocks; when the consumer is busy
//     rebuilding, surplus events are dropped, which the debounce would
//     discard anyway.
//   - Loop is the consumer. It compares each event's timestamp with the
//     time of the last successful rebuild and triggers a new rebuild only
//     when at least the debounce threshold has elapsed.
//
// The loop stops without error when the event source is closed or its
// context is cancelled. A watcher error or a failed rebuild stops it with
// an error; there is no automatic retry.
package watch
