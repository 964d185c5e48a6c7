// Package product is the catalog collaborator protected by the gatekeeper.
//
// Service holds the catalog rules (SKU uniqueness, default status, the
// stock/status transition, audit fields). Repository implementations only
// store and query: MemoryRepository for development and tests, and
// PostgresRepository backed by lib/pq.
package product
