// Package bridge exposes the engine over a JSON message protocol, the
// shape an embedding host (webview, RPC pipe) drives it with. Commands
// come in as JSON objects with a "command" field; events go out as
// JSON objects with an "event" field.
package bridge

import (
	"errors"
	"fmt"
	"sort"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/willwagner/markupeditor/internal/doctree"
	"github.com/willwagner/markupeditor/internal/edit"
	"github.com/willwagner/markupeditor/internal/engine"
	"github.com/willwagner/markupeditor/internal/event"
	"github.com/willwagner/markupeditor/internal/markup"
	"github.com/willwagner/markupeditor/internal/schema"
)

// Sink receives encoded engine events.
type Sink func(msg []byte)

// Bridge dispatches JSON commands against an engine and forwards its
// events to a sink.
type Bridge struct {
	eng *engine.Engine
}

// New wires a bridge to an engine. With a non-nil sink every engine
// event is encoded and forwarded.
func New(eng *engine.Engine, sink Sink) *Bridge {
	b := &Bridge{eng: eng}
	if sink != nil {
		eng.Events().SubscribeAll(func(kind event.Kind, payload any) {
			if msg, err := EncodeEvent(kind, payload); err == nil {
				sink(msg)
			}
		})
	}
	return b
}

// Dispatch runs one JSON command and returns the JSON response. The
// response always decodes: {"ok":true,...} with any result fields, or
// {"ok":false,"error":{"kind":...,"message":...}}.
func (b *Bridge) Dispatch(raw []byte) []byte {
	if !gjson.ValidBytes(raw) {
		return errResponse("badRequest", "invalid JSON")
	}
	msg := gjson.ParseBytes(raw)
	cmd := msg.Get("command").String()
	if cmd == "" {
		return errResponse("badRequest", "missing command")
	}
	res, err := b.run(cmd, msg)
	if err != nil {
		var ce *engine.CommandError
		if errors.As(err, &ce) {
			return errResponse(string(ce.Kind), ce.Error())
		}
		return errResponse("internal", err.Error())
	}
	out := []byte(`{"ok":true}`)
	for path, v := range res {
		out, _ = sjson.SetBytes(out, path, v)
	}
	return out
}

func (b *Bridge) run(cmd string, msg gjson.Result) (map[string]any, error) {
	switch cmd {
	case "setContent":
		return nil, b.eng.SetContent(msg.Get("text").String())
	case "getContent":
		content, err := b.eng.GetContent(
			msg.Get("pretty").Bool(),
			msg.Get("clean").Bool(),
			msg.Get("containerId").String())
		if err != nil {
			return nil, err
		}
		return map[string]any{"content": content}, nil
	case "setSelection":
		return nil, b.eng.SetSelection(int(msg.Get("anchor").Int()), int(msg.Get("head").Int()))
	case "selectionText":
		return map[string]any{"text": b.eng.SelectionText()}, nil
	case "selectionState":
		return stateResult(b.eng.SelectionState()), nil
	case "toggleMark":
		return nil, b.eng.ToggleMark(msg.Get("mark").String())
	case "setBlockStyle":
		return nil, b.eng.SetBlockStyle(msg.Get("style").String())
	case "toggleList":
		return nil, b.eng.ToggleList(msg.Get("kind").String())
	case "indent":
		return nil, b.eng.Indent()
	case "outdent":
		return nil, b.eng.Outdent()
	case "insertLink":
		return nil, b.eng.InsertLink(msg.Get("url").String())
	case "deleteLink":
		return nil, b.eng.DeleteLink()
	case "insertImage":
		return nil, b.eng.InsertImage(msg.Get("src").String(), msg.Get("alt").String())
	case "modifyImage":
		return nil, b.eng.ModifyImage(msg.Get("src").String(), msg.Get("alt").String())
	case "cutImage":
		return nil, b.eng.CutImage()
	case "insertTable":
		return nil, b.eng.InsertTable(int(msg.Get("rows").Int()), int(msg.Get("cols").Int()))
	case "addRow":
		return nil, b.eng.AddRow(msg.Get("before").Bool())
	case "addColumn":
		return nil, b.eng.AddColumn(msg.Get("before").Bool())
	case "addHeader":
		return nil, b.eng.AddHeader()
	case "deleteTableArea":
		return nil, b.eng.DeleteTableArea(msg.Get("area").String())
	case "setTableBorder":
		return nil, b.eng.SetTableBorder(msg.Get("border").String())
	case "addContainer":
		spec := edit.ContainerSpec{
			ID:       msg.Get("id").String(),
			ParentID: msg.Get("parentId").String(),
			Class:    msg.Get("class").String(),
		}
		if attrs := msg.Get("attrs"); attrs.IsObject() {
			spec.Attrs = map[string]string{}
			attrs.ForEach(func(k, v gjson.Result) bool {
				spec.Attrs[k.String()] = v.String()
				return true
			})
		}
		if html := msg.Get("content").String(); html != "" {
			nodes, err := markup.ParseFragment(html, schema.KindContainer)
			if err != nil {
				return nil, err
			}
			spec.Content = nodes
		}
		if bg := msg.Get("buttonGroup"); bg.IsObject() {
			group, err := buttonGroupNode(bg)
			if err != nil {
				return nil, err
			}
			spec.Content = append(spec.Content, group)
		}
		return nil, b.eng.AddContainer(spec)
	case "removeContainer":
		return nil, b.eng.RemoveContainer(msg.Get("id").String())
	case "addButton":
		return nil, b.eng.AddButton(
			msg.Get("id").String(),
			msg.Get("parentId").String(),
			msg.Get("class").String(),
			msg.Get("label").String())
	case "removeButton":
		return nil, b.eng.RemoveButton(msg.Get("id").String())
	case "buttonClicked":
		return nil, b.eng.ButtonClicked(msg.Get("id").String(), event.Rect{
			X:      int(msg.Get("rect.x").Int()),
			Y:      int(msg.Get("rect.y").Int()),
			Width:  int(msg.Get("rect.width").Int()),
			Height: int(msg.Get("rect.height").Int()),
		})
	case "search":
		found, err := b.eng.Search(
			msg.Get("text").String(),
			msg.Get("direction").String(),
			msg.Get("activate").Bool())
		if err != nil {
			return nil, err
		}
		return map[string]any{"found": found}, nil
	case "cancelSearch":
		b.eng.CancelSearch()
		return nil, nil
	case "enter":
		return nil, b.eng.HandleEnter(msg.Get("shift").Bool())
	case "undo":
		return nil, b.eng.Undo()
	case "redo":
		return nil, b.eng.Redo()
	}
	return nil, fmt.Errorf("unknown command %q", cmd)
}

// buttonGroupNode builds the nested container of buttons described by
// addContainer's buttonGroup field: {"id","class","buttons":[{"id",
// "class","label"}]}.
func buttonGroupNode(bg gjson.Result) (*doctree.Node, error) {
	attrs := map[string]string{"id": bg.Get("id").String()}
	if attrs["id"] == "" {
		attrs["id"] = schema.NewID()
	}
	if class := bg.Get("class").String(); class != "" {
		attrs["class"] = class
	}
	var buttons []*doctree.Node
	var berr error
	bg.Get("buttons").ForEach(func(_, btn gjson.Result) bool {
		battrs := map[string]string{"id": btn.Get("id").String()}
		if battrs["id"] == "" {
			battrs["id"] = schema.NewID()
		}
		if class := btn.Get("class").String(); class != "" {
			battrs["class"] = class
		}
		var kids []*doctree.Node
		if label := btn.Get("label").String(); label != "" {
			kids = append(kids, doctree.NewText(label))
		}
		n, err := doctree.New(schema.KindButton, battrs, kids...)
		if err != nil {
			berr = err
			return false
		}
		buttons = append(buttons, n)
		return true
	})
	if berr != nil {
		return nil, berr
	}
	return doctree.New(schema.KindContainer, attrs, buttons...)
}

func stateResult(st engine.SelectionState) map[string]any {
	marks := make([]string, 0, len(st.Marks))
	for name, on := range st.Marks {
		if on {
			marks = append(marks, name)
		}
	}
	sort.Strings(marks)
	return map[string]any{
		"state.collapsed":     st.Collapsed,
		"state.marks":         marks,
		"state.style":         st.Style,
		"state.inOrderedList": st.InOrderedList,
		"state.inBulletList":  st.InBulletList,
		"state.inTable":       st.InTable,
		"state.linkHref":      st.LinkHref,
		"state.imageSrc":      st.ImageSrc,
	}
}

func errResponse(kind, message string) []byte {
	out := []byte(`{"ok":false}`)
	out, _ = sjson.SetBytes(out, "error.kind", kind)
	out, _ = sjson.SetBytes(out, "error.message", message)
	return out
}

// EncodeEvent serializes one engine event for the host channel.
func EncodeEvent(kind event.Kind, payload any) ([]byte, error) {
	out, err := sjson.SetBytes([]byte(`{}`), "event", string(kind))
	if err != nil {
		return nil, err
	}
	set := func(path string, v any) {
		out, _ = sjson.SetBytes(out, path, v)
	}
	switch p := payload.(type) {
	case event.SelectionChanged:
		set("anchor", p.Anchor)
		set("head", p.Head)
	case event.SearchActivated:
		set("query", p.Query)
	case event.Error:
		set("kind", p.Kind)
		set("message", p.Message)
		set("recoverable", p.Recoverable)
	case event.ButtonClicked:
		set("id", p.ID)
		set("rect.x", p.Rect.X)
		set("rect.y", p.Rect.Y)
		set("rect.width", p.Rect.Width)
		set("rect.height", p.Rect.Height)
	case event.ImageCutForClipboard:
		set("src", p.Src)
		set("alt", p.Alt)
		set("width", p.Width)
		set("height", p.Height)
	case event.ImageDeleted:
		set("src", p.Src)
		set("containerId", p.ContainerID)
	}
	return out, nil
}
