package engine

// ListenerID identifies a registered listener so it can be removed later.
type ListenerID int

type listener[T any] struct {
	id ListenerID
	fn func(T)
}

// EventWithArg is a multi-cast event with one argument. Listeners run in
// registration order.
type EventWithArg[T any] struct {
	listeners []listener[T]
	nextID    ListenerID
}

// AddListener adds a callback to be invoked when the event fires. The
// returned id removes it again.
func (e *EventWithArg[T]) AddListener(callback func(T)) ListenerID {
	if callback == nil {
		return 0
	}
	e.nextID++
	e.listeners = append(e.listeners, listener[T]{id: e.nextID, fn: callback})
	return e.nextID
}

// RemoveListener removes the listener added under id. Unknown ids are
// ignored.
func (e *EventWithArg[T]) RemoveListener(id ListenerID) bool {
	for i, l := range e.listeners {
		if l.id == id {
			e.listeners = append(e.listeners[:i], e.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveAllListeners clears all listeners
func (e *EventWithArg[T]) RemoveAllListeners() {
	e.listeners = nil
}

// Invoke calls all registered listeners
func (e *EventWithArg[T]) Invoke(arg T) {
	for _, l := range e.listeners {
		l.fn(arg)
	}
}

func (e *EventWithArg[T]) ListenerCount() int {
	return len(e.listeners)
}
