// Package api exposes the study library over HTTP. Handlers decode and
// validate JSON requests, call the store, query engine and services, and map
// their errors to status codes without leaking internal details.
package api
