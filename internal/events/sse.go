package events

import "github.com/kelindar/event"

// SubscribeToChannel forwards events of type T into ch for SSE handlers, which
// select over a channel. Events are dropped while ch is full so a slow client
// never stalls the dispatcher.
func SubscribeToChannel[T Event](bus *Bus, ch chan<- any) func() {
	return event.Subscribe(bus.dispatcher, func(e T) {
		select {
		case ch <- e:
		default:
		}
	})
}
