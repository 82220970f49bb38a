// Package handlers contains the gin handlers, middleware and health checks
// of the audit API.
//
// # Health Checks
//
// The HealthChecker interface allows registering multiple named health checks
// that are executed in parallel:
//
//	checker := handlers.NewCompositeHealthChecker("v0.1.0")
//	checker.AddCheck("database", handlers.NewPingCheck(conn))
//	checker.AddCheck("cache", handlers.NewPingCheck(cache))
//
// # Errors
//
// Every failure is written as an envelope:
//
//	{"error": {"message": "plan not found", "code": "not_found"}}
//
// Domain error kinds map to status codes in RespondDomainError: not found
// is 404, validation is 400, everything else 500.
package handlers
