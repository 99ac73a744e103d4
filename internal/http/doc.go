// Package http exposes the booking service over JSON.
//
// Owner-scoped routes read the acting owner from the X-Owner-ID, X-Owner-Name
// and X-Owner-Email headers; a missing X-Owner-ID yields 401.
//   - POST /sessions: submit a session. Body: sessionRequest. Response 201:
//     {"session","conflicts","conflict_count"}.
//   - GET /sessions?mode=&status=: {"sessions"}.
//   - DELETE /sessions/{id}: 204, also when nothing matched.
//   - PATCH /timetable/{id}: edit a timetable session. Body: patchRequest.
//   - GET /timetable: {"days":[{"date","sessions"}]}.
//   - POST /timetable/conflicts: {"conflicts"} for a candidate, nothing stored.
//   - GET /timetable/free?date=&start=&end=: {"free"}.
//   - GET /timetable/export: JSON attachment.
//   - GET /stats and GET /bookings/recent?limit=.
//   - POST /auth/login-events: report a login, 202.
//
// Reference routes need no owner:
//   - GET /venues, GET /time/duration?start=&end=, GET /time/display?time=,
//     GET /time/slots?start=.
//
// Administrator routes live under /admin and require X-Admin-Token when a
// token is configured:
//   - GET /admin/bookings/summary, GET /admin/bookings/export,
//     GET /admin/notifications, DELETE /admin/notifications, GET /admin/timetables.
//
// Request and response DTOs live next to their handlers.
package http
