package task

// queue returns the two ends of an unbounded FIFO. Closing the send end
// closes the receive end once every buffered item has been read.
func queue[T any]() (chan<- T, <-chan T) {
	in := make(chan T)
	out := make(chan T)

	go func() {
		defer close(out)

		var buf []T
		recv := in
		for recv != nil || len(buf) > 0 {
			var send chan T
			var next T
			if len(buf) > 0 {
				send = out
				next = buf[0]
			}

			select {
			case v, ok := <-recv:
				if !ok {
					recv = nil
					continue
				}
				buf = append(buf, v)
			case send <- next:
				var zero T
				buf[0] = zero
				buf = buf[1:]
			}
		}
	}()

	return in, out
}
