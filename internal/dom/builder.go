package dom

import (
	"github.com/kestrelweb/kestrel/internal/handler"
	"github.com/kestrelweb/kestrel/internal/html"
)

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// Build drives tok to completion, constructing a Document tree. It is a
// direct, stack-of-open-elements builder rather than the full HTML5 tree
// construction algorithm's 23 insertion modes: spec.md 4.2 scopes the DOM
// builder to the arena operations (attach/detach/relocate/delete_by_id) and
// the named-id map, not foster parenting or table/form reconstruction.
func Build(tok *html.Tokenizer, h *handler.Handler) *Document {
	doc := New(h)
	stack := []NodeId{RootID}
	top := func() NodeId { return stack[len(stack)-1] }

	for {
		t := tok.Next()
		switch t.Type {
		case html.EOFToken:
			return doc

		case html.StartTagToken, html.SelfClosingTagToken:
			id := doc.CreateElement(t.Data, NamespaceHTML, t.Pos)
			el := doc.Node(id).Element
			for _, a := range t.Attr {
				el.Attributes.Set(a.Name, a.Value)
				if a.Name == "class" {
					el.ClassList = splitClassList(a.Value)
				}
			}
			doc.Attach(id, top(), -1)
			doc.UpdateNode(id)
			if t.Type == html.StartTagToken && !voidElements[t.Data] {
				stack = append(stack, id)
			}

		case html.EndTagToken:
			for i := len(stack) - 1; i > 0; i-- {
				n := doc.Node(stack[i])
				if n != nil && n.Element != nil && n.Element.Name == t.Data {
					stack = stack[:i]
					break
				}
			}

		case html.TextToken:
			if t.Data == "" {
				continue
			}
			id := doc.CreateText(t.Data, t.Pos)
			doc.Attach(id, top(), -1)

		case html.CommentToken:
			id := doc.CreateComment(t.Data, t.Pos)
			doc.Attach(id, top(), -1)

		case html.DoctypeToken:
			id := doc.CreateDocType(DocType{Name: t.Doctype.Name}, t.Pos)
			doc.Attach(id, RootID, -1)
		}
	}
}

func splitClassList(value string) []string {
	var out []string
	start := -1
	for i, r := range value {
		isSpace := r == ' ' || r == '\t' || r == '\n' || r == '\f' || r == '\r'
		if isSpace {
			if start >= 0 {
				out = append(out, value[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, value[start:])
	}
	return out
}
