// Package events carries the notifications produced by the synchronization
// core to its observers: "model changed" (re-render), "migration completed"
// (user-visible message) and errors with a severity.
//
// Bus implements Notifier and fans events out to any number of subscribers
// without ever blocking the publisher:
//
//	bus := events.NewBus()
//	ch, cancel := bus.Subscribe(0)
//	defer cancel()
//	for ev := range ch {
//		fmt.Println(ev.Type, ev.Reason, ev.Message)
//	}
//
// Messages are rendered from per-reason text/template templates that have
// the sprig function map available.
package events
