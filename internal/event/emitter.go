package event

// Handler receives event payloads. The payload is one of the concrete
// event structs in this package.
type Handler func(kind Kind, payload any)

// PanicHandler observes a recovered handler panic.
type PanicHandler func(kind Kind, recovered any)

// Emitter fans events out to subscribed handlers synchronously.
// The zero value is unusable; use NewEmitter.
type Emitter struct {
	handlers map[Kind][]Handler
	all      []Handler
	onPanic  PanicHandler
}

// NewEmitter returns an empty emitter.
func NewEmitter() *Emitter {
	return &Emitter{handlers: make(map[Kind][]Handler)}
}

// OnPanic installs the panic observer.
func (e *Emitter) OnPanic(h PanicHandler) { e.onPanic = h }

// Subscribe registers a handler for one event kind.
func (e *Emitter) Subscribe(kind Kind, h Handler) {
	e.handlers[kind] = append(e.handlers[kind], h)
}

// SubscribeAll registers a handler for every event kind.
func (e *Emitter) SubscribeAll(h Handler) {
	e.all = append(e.all, h)
}

// Emit delivers the payload to all matching handlers in subscription
// order. Handler panics are recovered and reported to the panic
// observer; delivery continues with the next handler.
func (e *Emitter) Emit(payload any) {
	kind := KindOf(payload)
	if kind == "" {
		return
	}
	for _, h := range e.handlers[kind] {
		e.deliver(kind, payload, h)
	}
	for _, h := range e.all {
		e.deliver(kind, payload, h)
	}
}

func (e *Emitter) deliver(kind Kind, payload any, h Handler) {
	defer func() {
		if r := recover(); r != nil && e.onPanic != nil {
			e.onPanic(kind, r)
		}
	}()
	h(kind, payload)
}
