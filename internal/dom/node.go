package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// NewElement builds a detached element node with the given tag and
// key/value attribute pairs.
func NewElement(tag string, attrPairs ...string) *html.Node {
	n := &html.Node{
		Type: html.ElementNode,
		Data: tag,
	}
	for i := 0; i+1 < len(attrPairs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrPairs[i], Val: attrPairs[i+1]})
	}
	return n
}

// NewText builds a detached text node.
func NewText(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

// IsElement reports whether n is an element node.
func IsElement(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode
}

// Tag returns the lowercase tag name of an element node, or "" otherwise.
func Tag(n *html.Node) string {
	if !IsElement(n) {
		return ""
	}
	return strings.ToLower(n.Data)
}

// Attr returns the value of the named attribute, or "" if absent.
func Attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// HasAttr reports whether the named attribute is present.
func HasAttr(n *html.Node, key string) bool {
	if n == nil {
		return false
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

// SetAttr sets or replaces the named attribute.
func SetAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// RemoveAttr deletes the named attribute if present.
func RemoveAttr(n *html.Node, key string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// Text returns the concatenated, whitespace-trimmed text content of the
// subtree rooted at n.
func Text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	if n != nil {
		walk(n)
	}
	return strings.TrimSpace(sb.String())
}

// Closest walks from n up through its ancestors and returns the first
// element (including n itself) for which match returns true, or nil.
// It works on detached subtrees as well: the walk simply stops at the
// subtree root.
func Closest(n *html.Node, match func(*html.Node) bool) *html.Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if IsElement(cur) && match(cur) {
			return cur
		}
	}
	return nil
}

// ParentElement returns the nearest element ancestor of n, or nil.
func ParentElement(n *html.Node) *html.Node {
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		if IsElement(cur) {
			return cur
		}
	}
	return nil
}

// FindFirst returns the first element in a depth-first walk of the subtree
// rooted at n (including n) for which match returns true.
func FindFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	if n == nil {
		return nil
	}
	if IsElement(n) && match(n) {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := FindFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every element in a depth-first walk of the subtree rooted
// at n (including n) for which match returns true.
func FindAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if IsElement(c) && match(c) {
			out = append(out, c)
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	if n != nil {
		walk(n)
	}
	return out
}

// HasChildElements reports whether n has at least one element child.
func HasChildElements(n *html.Node) bool {
	if n == nil {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if IsElement(c) {
			return true
		}
	}
	return false
}
