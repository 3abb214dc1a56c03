// Package server provides HTTP routing, middleware, and the read-only catalog preview site.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering. Paths may use
// [http.ServeMux] wildcards such as /songs/{id}.
//
// # Middleware
//
//   - [Logging] records method, path, status and duration for each request
//   - [RateLimit] rejects requests over a token-bucket budget with 429 Too Many Requests
//   - [Recover] turns handler panics into 500 responses
//
// # Catalog Handler
//
// [CatalogHandler] serves the song catalog without mutating it:
//
//	GET /                 → HTML song list (q, sort, tag query parameters)
//	GET /songs/{id}       → HTML song page with the audio player
//	GET /api/songs        → JSON song list (same parameters)
//	GET /api/songs/{id}   → JSON song with audio reference and classified embed
//	GET /api/tags         → JSON tag list
//
// [HealthHandler] implements the [Handler] interface and serves GET /health.
//
// The repository is not safe for concurrent use, so the handler serializes access with a read-write mutex.
package server
