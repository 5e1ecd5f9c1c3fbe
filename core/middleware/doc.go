// Package middleware groups the Fiber middlewares of the snapshot server:
// request correlation (rayid) and API-key protection (auth).
package middleware
