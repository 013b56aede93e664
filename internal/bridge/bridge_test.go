package bridge

import (
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/willwagner/markupeditor/internal/engine"
)

func dispatch(t *testing.T, b *Bridge, raw string) gjson.Result {
	t.Helper()
	return gjson.ParseBytes(b.Dispatch([]byte(raw)))
}

func TestDispatchEditRoundTrip(t *testing.T) {
	b := New(engine.New(), nil)

	res := dispatch(t, b, `{"command":"setContent","text":"<p>This is a start.</p>"}`)
	if !res.Get("ok").Bool() {
		t.Fatalf("setContent response = %s", res.Raw)
	}
	res = dispatch(t, b, `{"command":"setSelection","anchor":6,"head":8}`)
	if !res.Get("ok").Bool() {
		t.Fatalf("setSelection response = %s", res.Raw)
	}
	res = dispatch(t, b, `{"command":"toggleMark","mark":"bold"}`)
	if !res.Get("ok").Bool() {
		t.Fatalf("toggleMark response = %s", res.Raw)
	}
	res = dispatch(t, b, `{"command":"getContent","clean":true}`)
	if got := res.Get("content").String(); got != "<p>This <b>is</b> a start.</p>" {
		t.Fatalf("content = %q", got)
	}

	res = dispatch(t, b, `{"command":"selectionState"}`)
	if got := res.Get("state.marks").String(); got != `["bold"]` {
		t.Fatalf("marks = %s", got)
	}
	if got := res.Get("state.style").String(); got != "p" {
		t.Fatalf("style = %s", got)
	}
}

func TestAddContainerDecodesAttrsContentAndButtonGroup(t *testing.T) {
	b := New(engine.New(), nil)
	dispatch(t, b, `{"command":"setContent","text":"<p>body</p>"}`)

	res := dispatch(t, b, `{"command":"addContainer","id":"side","class":"card",
		"attrs":{"editable":"false"},
		"content":"<p>note</p>",
		"buttonGroup":{"id":"grp","class":"tools","buttons":[{"id":"go","class":"cta","label":"Go"}]}}`)
	if !res.Get("ok").Bool() {
		t.Fatalf("addContainer response = %s", res.Raw)
	}

	res = dispatch(t, b, `{"command":"getContent","clean":true,"containerId":"side"}`)
	want := `<p>note</p><div id="grp" class="tools" editable="true"><button id="go" class="cta">Go</button></div>`
	if got := res.Get("content").String(); got != want {
		t.Fatalf("container content = %q, want %q", got, want)
	}

	res = dispatch(t, b, `{"command":"getContent","clean":true}`)
	if !strings.Contains(res.Get("content").String(), `<div id="side" class="card" editable="false">`) {
		t.Fatalf("document = %q", res.Get("content").String())
	}

	// Buttons created through the group are addressable.
	res = dispatch(t, b, `{"command":"buttonClicked","id":"go","rect":{"x":1,"y":2,"width":3,"height":4}}`)
	if !res.Get("ok").Bool() {
		t.Fatalf("buttonClicked response = %s", res.Raw)
	}
}

func TestDispatchErrorResponse(t *testing.T) {
	b := New(engine.New(), nil)
	dispatch(t, b, `{"command":"setContent","text":"<p>a</p>"}`)

	res := dispatch(t, b, `{"command":"addRow","before":false}`)
	if res.Get("ok").Bool() {
		t.Fatalf("response = %s, want failure", res.Raw)
	}
	if got := res.Get("error.kind").String(); got != "notInTable" {
		t.Fatalf("error kind = %q", got)
	}

	res = dispatch(t, b, `{"command":"bogus"}`)
	if res.Get("ok").Bool() || res.Get("error.kind").String() != "internal" {
		t.Fatalf("response = %s", res.Raw)
	}

	res = dispatch(t, b, `not json`)
	if res.Get("ok").Bool() || res.Get("error.kind").String() != "badRequest" {
		t.Fatalf("response = %s", res.Raw)
	}
}

func TestEventForwarding(t *testing.T) {
	var msgs []gjson.Result
	eng := engine.New()
	b := New(eng, func(msg []byte) {
		msgs = append(msgs, gjson.ParseBytes(msg))
	})

	dispatch(t, b, `{"command":"setContent","text":"<p>cat dog cat</p>"}`)
	msgs = nil
	res := dispatch(t, b, `{"command":"search","text":"dog","direction":"forward","activate":true}`)
	if !res.Get("found").Bool() {
		t.Fatalf("search response = %s", res.Raw)
	}

	var activated, moved bool
	for _, m := range msgs {
		switch m.Get("event").String() {
		case "searchActivated":
			activated = true
			if q := m.Get("query").String(); q != "dog" {
				t.Fatalf("query = %q", q)
			}
		case "selectionChanged":
			moved = true
			if m.Get("anchor").Int() != 5 || m.Get("head").Int() != 8 {
				t.Fatalf("selection event = %s", m.Raw)
			}
		}
	}
	if !activated || !moved {
		t.Fatalf("events = %v", msgs)
	}
}
