// Package reconcile brings the container engine in line with the declared
// container definitions.
//
// The Manager implements the lifecycle operations behind the denver
// commands:
//
//   - EnsureRunning builds a definition's image (optionally), removes any
//     live container with the same name, then creates and starts a fresh
//     one. Running it twice never leaves two containers under one name.
//   - Select joins live managed containers with declared definitions by
//     name, filtered by a regular expression.
//   - Status and Stop are Select followed by rendering or stopping.
//
// The engine is reached through the Runtime interface, which
// docker.Client implements. The Manager never caches engine state: every
// operation lists the engine's containers afresh.
//
// A Manager is not safe for concurrent EnsureRunning calls on the same
// container name; the remove-before-create step would race.
package reconcile
