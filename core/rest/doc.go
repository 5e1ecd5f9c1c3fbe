// Package rest implements the resilient HTTP acquisition layer shared by all
// API connectors.
//
// It is built from two pieces:
//
//  1. Client: issues a single logical request with bounded retries,
//     exponential backoff and status-specific policy. Every attempt passes
//     through an admission gate (a weighted semaphore) that bounds the number
//     of in-flight requests per connector. The result of a request is an
//     Outcome, a closed tagged value that callers switch over exhaustively.
//
//  2. FetchAllPages: drives a paginated endpoint to exhaustion. The first
//     page is fetched synchronously; subsequent pages are fetched in rounds
//     of up to MaxConcurrentRequests parallel calls at consecutive offsets.
//     Individual page failures within a round are logged and skipped; only a
//     zero-yield round (or, when configured, an under-filled round) ends
//     pagination.
//
// # Retry Policy
//
//   - 200: success, returned immediately
//   - 429: the Retry-After wait is honored in full and does not advance the
//     exponential backoff schedule
//   - 401/403: terminal, authentication failures are not transient
//   - >= 500, timeouts, transport errors: retried with exponential backoff
//     up to the configured attempt limit
//   - any other non-2xx: terminal, retrying a malformed request cannot help
//
// # Usage
//
//	client := rest.NewClient(rest.Options{
//	    BaseURL: "https://pce.example.com:8443/api/v2/orgs/1",
//	    Headers: headers,
//	    MaxConcurrentRequests: 15,
//	    Retry: retryCfg,
//	    Logger: log,
//	})
//	items, err := client.FetchAllPages(ctx, "/workloads", 500, nil, spec)
package rest
