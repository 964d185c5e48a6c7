// Package health provides the service's liveness and readiness checks.
//
// A Checker reports the state of one dependency as Healthy, Degraded or
// Unhealthy. The Aggregator runs every registered checker in parallel under a
// shared timeout and folds the results into a Report whose status is the worst
// individual status.
//
// Two checkers cover the gatekeeper's dependencies: KeyChecker confirms the
// token verification key is loaded, and PingChecker probes the product store.
//
//	agg := health.NewAggregator()
//	agg.Register(health.NewKeyChecker(keys, auth.MinHMACKeyLength))
//	agg.Register(health.NewPingChecker("product_store", repo))
//
//	r := chi.NewRouter()
//	health.Mount(r, agg) // /healthz, /readyz, /health, /health/{name}
package health
