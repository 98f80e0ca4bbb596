// Package handle implements a single-flight, memoized, asynchronously
// constructed value, used for the shared cluster client.
//
// A Handle owns one slot guarded by a mutex. The first Get starts the
// construction in a goroutine and memoizes its Future; every later Get
// returns that same Future until Invalidate empties the slot. Concurrent
// callers therefore share a single construction.
//
// Construction failures never surface as errors: the Future resolves with
// ok=false and the handle reports StateUnavailable until it is invalidated.
// Nothing retries automatically.
//
//	h := handle.New("odo client", factory)
//	h.OnReady(func(c odo.Client) { rediscover(c) })
//
//	client, ok := h.Get().Wait(ctx) // blocking callers
//	client, ok = h.GetIfReady()     // event handlers that must not block
//
//	h.Invalidate() // kubeconfig changed: drop the cached client
package handle
