// Package server provides HTTP routing, middleware and handlers for the diagram service.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally, so routes are
// method-qualified patterns with wildcards.
//
// # Endpoints
//
//	GET /health                 liveness and version
//	GET /diagrams/{key}.svg     diagram drawn from its variant key
//	GET /chords                 chord names, or suggestions for ?q=
//	GET /chords/{name}          voicings of a chord with diagram keys
//
// Extra handlers passed to [New], such as the HTML gallery, are registered after these.
//
// Diagrams are deterministic functions of their key, so they carry an ETag derived from
// the SVG checksum and an immutable Cache-Control header. Malformed keys are 400, chords
// or voicings absent from the table are 404.
//
// # Lifecycle
//
// [ServeListener] runs until its context is canceled and then shuts down gracefully.
package server
