// Package offline implements a versioned, cache-backed asset worker that keeps
// the report application usable without a network.
//
// A Worker moves through install, activate and fetch phases:
//
//   - Install populates the cache container named after the worker version
//     from a fixed Manifest. Assets that fail to download are recorded and
//     logged; they never fail the install.
//   - Activate deletes every container whose name differs from the version and
//     claims already-open clients.
//   - Fetch serves navigations network-first with a fallback to the cached app
//     shell, and every other GET cache-first. Network results are never
//     written back to the cache.
//
// Handler exposes a Worker as an http.Handler so it can run as a local
// caching proxy in front of the application origin.
package offline
