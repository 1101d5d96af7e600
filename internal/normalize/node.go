package normalize

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// cloneTree deep-copies a node so transforms never touch the caller's
// parsed document.
func cloneTree(n *html.Node) *html.Node {
	clone := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		clone.AppendChild(cloneTree(child))
	}
	return clone
}

// firstDescendant returns the first descendant element with the given
// atom, in document order, or nil.
func firstDescendant(n *html.Node, a atom.Atom) *html.Node {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && child.DataAtom == a {
			return child
		}
		if found := firstDescendant(child, a); found != nil {
			return found
		}
	}
	return nil
}

// descendants collects every descendant element with the given atom, in
// document order.
func descendants(n *html.Node, a atom.Atom) []*html.Node {
	var out []*html.Node
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && child.DataAtom == a {
			out = append(out, child)
		}
		out = append(out, descendants(child, a)...)
	}
	return out
}

// detach removes a node from its parent.
func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// unwrap splices a node's children into its parent's position, preserving
// order, then removes the node.
func unwrap(n *html.Node) {
	parent := n.Parent
	if parent == nil {
		return
	}
	for n.FirstChild != nil {
		child := n.FirstChild
		n.RemoveChild(child)
		parent.InsertBefore(child, n)
	}
	parent.RemoveChild(n)
}

// adoptChildren moves every child of src under dst, preserving order.
func adoptChildren(dst, src *html.Node) {
	for src.FirstChild != nil {
		child := src.FirstChild
		src.RemoveChild(child)
		dst.AppendChild(child)
	}
}

// newImageNode builds a bare image element carrying only src and alt, in
// that order, so serialization is deterministic.
func newImageNode(src, alt string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Img,
		Data:     "img",
		Attr: []html.Attribute{
			{Key: "src", Val: src},
			{Key: "alt", Val: alt},
		},
	}
}

func attrValue(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// keepAttrs drops every attribute except the named ones, preserving the
// order in which the names are given.
func keepAttrs(n *html.Node, names ...string) {
	kept := make([]html.Attribute, 0, len(names))
	for _, name := range names {
		for _, a := range n.Attr {
			if a.Key == name {
				kept = append(kept, a)
				break
			}
		}
	}
	n.Attr = kept
}
