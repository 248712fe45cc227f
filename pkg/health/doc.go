// Package health provides liveness and readiness probes.
//
// [LivenessHandler] answers OK while the process is up. [ReadinessHandler]
// runs a set of named [Checks] concurrently under a shared timeout and
// answers 503 when any of them fails. [Run] exposes the same check run
// for non-HTTP callers such as the CLI.
//
//	r.Get("/health/live", health.LivenessHandler())
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//		"formats": svc.SelfTest,
//		"storage": health.PingCheck(store),
//	}, health.WithTimeout(2*time.Second)))
//
// Responses are plain text unless the client sends Accept: application/json
// or ?format=json:
//
//	{"status":"unhealthy","checks":{"storage":{"status":"unhealthy","error":"...","duration":"1.2ms"}}}
package health
