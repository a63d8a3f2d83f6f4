// Package http provides HTTP handlers and middleware for the lodge API.
//
// The router exposes the following endpoints:
//   - POST /api/auth/login: body {"email","password"}; responds with
//     {"token","expiresAt","user":{"id","email","name","role"}}. Optionally rate
//     limited per client IP.
//   - GET /api/rooms, POST /api/rooms, GET|PUT|DELETE /api/rooms/{id}: room
//     catalog endpoints exchanging the roomDTO payload defined in room_handler.go.
//   - GET /api/availability, POST /api/availability, PUT|DELETE
//     /api/availability/{id}: availability windows exchanging availabilityDTO,
//     each embedding its room.
//   - GET /health, GET /api/health: liveness, {"status":"ok"}.
//   - GET /metrics: Prometheus text format.
//
// Every /api route except login requires an "Authorization: Bearer <token>"
// header. Mutating requests are decoded and validated by ValidateJSON before the
// handler runs. Errors use the body {"status":"error","message","errors"?}.
package http
