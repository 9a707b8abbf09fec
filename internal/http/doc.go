// Package http provides HTTP handlers and middleware for the support-hours API.
//
// Public endpoints, usable without a session:
//   - POST /login: issues a session token. Body: {"email","password"}. The token
//     is returned in the body, surfaced via the `X-Session-Token` header, and set
//     as a `session_token` cookie.
//   - GET /status: reports whether the support desk is currently open, whether
//     new chats are accepted, and the closing-soon warning flag.
//   - POST /messages: accepts an outside-hours contact request from a visitor.
//
// Authenticated endpoints, requiring a valid session:
//   - POST /logout: revokes the current session and clears the cookie.
//   - GET /business-hours, POST /business-hours, GET|PUT|DELETE /business-hours/{id},
//     POST /business-hours/{id}/activate: business-hours configuration management
//     exchanging the `hoursConfigDTO` payload defined in hours_handler.go. Reads
//     are open to any authenticated principal; mutations require admin privileges.
//   - GET /messages, DELETE /messages/{id}: administrator review of stored
//     contact requests.
//   - GET /users, POST /users, PUT /users/{id}, DELETE /users/{id}: administrator
//     controlled account management exchanging the `userDTO` payload defined in
//     user_handler.go.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
