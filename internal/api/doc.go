// Package api handles incoming HTTP requests, request validation and
// response formatting for the account endpoints. Handlers translate HTTP
// requests into user service calls and map service error kinds to status
// codes without exposing the underlying cause.
package api
