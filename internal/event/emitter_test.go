package event

import "testing"

func TestEmitDeliversInOrder(t *testing.T) {
	e := NewEmitter()
	var order []int
	e.Subscribe(KindStateChanged, func(Kind, any) { order = append(order, 1) })
	e.Subscribe(KindStateChanged, func(Kind, any) { order = append(order, 2) })
	e.SubscribeAll(func(Kind, any) { order = append(order, 3) })

	e.Emit(StateChanged{})
	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("delivery order = %v", order)
	}
}

func TestEmitFiltersByKind(t *testing.T) {
	e := NewEmitter()
	calls := 0
	e.Subscribe(KindSelectionChanged, func(_ Kind, payload any) {
		calls++
		sc, ok := payload.(SelectionChanged)
		if !ok || sc.Head != 4 {
			t.Errorf("payload = %#v", payload)
		}
	})
	e.Emit(StateChanged{})
	e.Emit(SelectionChanged{Anchor: 2, Head: 4})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestEmitRecoversHandlerPanic(t *testing.T) {
	e := NewEmitter()
	var recovered any
	e.OnPanic(func(_ Kind, r any) { recovered = r })
	e.Subscribe(KindError, func(Kind, any) { panic("handler boom") })
	reached := false
	e.Subscribe(KindError, func(Kind, any) { reached = true })

	e.Emit(Error{Kind: "styleError", Message: "x"})
	if recovered != "handler boom" {
		t.Errorf("recovered = %v", recovered)
	}
	if !reached {
		t.Error("panic stopped delivery to later handlers")
	}
}

func TestKindOfUnknownPayloadIsDropped(t *testing.T) {
	e := NewEmitter()
	e.SubscribeAll(func(Kind, any) { t.Error("unknown payload delivered") })
	e.Emit(42)
}
