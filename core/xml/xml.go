// Package xml provides XML parsing, traversal and serialization for the
// corpus readers and the parse tree enrichment step.
//
// Security Notes:
//   - The xmlquery library is used for parsing, which uses Go's encoding/xml
//     internally and does not fetch external entities.
//
// Element and attribute lookups match on local names so that namespaced
// formats (FoLiA, TEI) and plain ones (Alpino) share the same helpers.
package xml

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/FocuswithJustin/corpus2alpino/core/encoding"
	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"
)

// xmlNamespace is the namespace bound to the reserved xml prefix.
const xmlNamespace = "http://www.w3.org/XML/1998/namespace"

// Document represents a parsed XML document.
type Document struct {
	root *xmlquery.Node

	// declared records whether the source text carried an XML declaration.
	// The parser adds one when it is missing.
	declared bool
}

// Node represents an XML node (element, text, etc.).
type Node struct {
	node *xmlquery.Node
}

// Attribute is a single attribute in document order.
type Attribute struct {
	Name  string
	Value string
}

// Parse parses XML data and returns a Document.
func Parse(data []byte) (*Document, error) {
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}
	declared := bytes.HasPrefix(bytes.TrimLeft(data, "\ufeff \t\r\n"), []byte("<?xml"))
	return &Document{root: root, declared: declared}, nil
}

// ParseString parses an XML string.
func ParseString(s string) (*Document, error) {
	return Parse([]byte(s))
}

// Root returns the root element of the document.
func (d *Document) Root() *Node {
	if d.root == nil {
		return nil
	}
	for child := d.root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return &Node{node: child}
		}
	}
	return nil
}

// XPath executes an XPath query and returns matching nodes.
func (d *Document) XPath(expr string) ([]*Node, error) {
	// Compile the expression to check for errors
	_, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}

	nodes, err := xmlquery.QueryAll(d.root, expr)
	if err != nil {
		return nil, fmt.Errorf("xpath query failed: %w", err)
	}

	result := make([]*Node, len(nodes))
	for i, n := range nodes {
		result[i] = &Node{node: n}
	}
	return result, nil
}

// XPathFirst executes an XPath query and returns the first matching node.
func (d *Document) XPathFirst(expr string) (*Node, error) {
	_, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}

	node, err := xmlquery.Query(d.root, expr)
	if err != nil {
		return nil, fmt.Errorf("xpath query failed: %w", err)
	}
	if node == nil {
		return nil, nil
	}
	return &Node{node: node}, nil
}

// Descendants returns all elements with the given local name in document
// order.
func (d *Document) Descendants(name string) []*Node {
	return (&Node{node: d.root}).Descendants(name)
}

// Serialize converts the document back to XML. Whitespace, attribute order
// and the declaration are preserved. A declaration is only written when the
// source had one.
func (d *Document) Serialize() string {
	if d.root == nil {
		return ""
	}
	var buf bytes.Buffer
	for child := d.root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.DeclarationNode && !d.declared {
			continue
		}
		writeNode(&buf, child)
	}
	return buf.String()
}

// writeNode serializes a node verbatim.
func writeNode(w *bytes.Buffer, n *xmlquery.Node) {
	switch n.Type {
	case xmlquery.DocumentNode:
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			writeNode(w, child)
		}

	case xmlquery.DeclarationNode:
		w.WriteString("<?xml")
		for _, attr := range n.Attr {
			w.WriteString(" ")
			w.WriteString(attr.Name.Local)
			w.WriteString("=\"")
			w.WriteString(encoding.EscapeXMLAttr(attr.Value))
			w.WriteString("\"")
		}
		w.WriteString("?>")

	case xmlquery.ElementNode:
		w.WriteString("<")
		w.WriteString(qualifiedName(n.Prefix, n.Data))
		for _, attr := range n.Attr {
			w.WriteString(" ")
			w.WriteString(qualifiedName(attrPrefix(attr.Name.Space), attr.Name.Local))
			w.WriteString("=\"")
			w.WriteString(encoding.EscapeXMLAttr(attr.Value))
			w.WriteString("\"")
		}
		if n.FirstChild == nil {
			w.WriteString("/>")
			return
		}
		w.WriteString(">")
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			writeNode(w, child)
		}
		w.WriteString("</")
		w.WriteString(qualifiedName(n.Prefix, n.Data))
		w.WriteString(">")

	case xmlquery.TextNode:
		w.WriteString(encoding.EscapeXMLText(n.Data))

	case xmlquery.CharDataNode:
		w.WriteString("<![CDATA[")
		w.WriteString(n.Data)
		w.WriteString("]]>")

	case xmlquery.CommentNode:
		w.WriteString("<!--")
		w.WriteString(n.Data)
		w.WriteString("-->")
	}
}

func qualifiedName(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}

// attrPrefix maps an attribute's name space back to a prefix. The parser
// may leave the namespace URI in place for the reserved xml prefix.
func attrPrefix(space string) string {
	if space == xmlNamespace {
		return "xml"
	}
	return space
}

// Name returns the local element name.
func (n *Node) Name() string {
	if n.node == nil {
		return ""
	}
	return n.node.Data
}

// Text returns all text content of the node and its descendants.
func (n *Node) Text() string {
	if n.node == nil {
		return ""
	}
	return n.node.InnerText()
}

// IsElement reports whether the node is an element.
func (n *Node) IsElement() bool {
	return n.node != nil && n.node.Type == xmlquery.ElementNode
}

// IsText reports whether the node is character data.
func (n *Node) IsText() bool {
	return n.node != nil && (n.node.Type == xmlquery.TextNode || n.node.Type == xmlquery.CharDataNode)
}

// Parent returns the parent element, or nil at the root.
func (n *Node) Parent() *Node {
	if n.node == nil || n.node.Parent == nil || n.node.Parent.Type != xmlquery.ElementNode {
		return nil
	}
	return &Node{node: n.node.Parent}
}

// Children returns the child element nodes.
func (n *Node) Children() []*Node {
	if n.node == nil {
		return nil
	}

	var children []*Node
	for child := n.node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			children = append(children, &Node{node: child})
		}
	}
	return children
}

// Nodes returns the element and text children in document order.
func (n *Node) Nodes() []*Node {
	if n.node == nil {
		return nil
	}

	var nodes []*Node
	for child := n.node.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case xmlquery.ElementNode, xmlquery.TextNode, xmlquery.CharDataNode:
			nodes = append(nodes, &Node{node: child})
		}
	}
	return nodes
}

// Child returns the first child element with the given local name.
func (n *Node) Child(name string) *Node {
	if n.node == nil {
		return nil
	}
	for child := n.node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode && child.Data == name {
			return &Node{node: child}
		}
	}
	return nil
}

// Descendants returns all descendant elements with the given local name in
// document order.
func (n *Node) Descendants(name string) []*Node {
	if n.node == nil {
		return nil
	}
	var result []*Node
	var walk func(*xmlquery.Node)
	walk = func(p *xmlquery.Node) {
		for child := p.FirstChild; child != nil; child = child.NextSibling {
			if child.Type != xmlquery.ElementNode {
				continue
			}
			if child.Data == name {
				result = append(result, &Node{node: child})
			}
			walk(child)
		}
	}
	walk(n.node)
	return result
}

// Attributes returns all attributes of the node in document order.
// Namespace declarations are omitted.
func (n *Node) Attributes() []Attribute {
	if n.node == nil {
		return nil
	}

	var attrs []Attribute
	for _, attr := range n.node.Attr {
		if attr.Name.Space == "xmlns" || attr.Name.Local == "xmlns" {
			continue
		}
		attrs = append(attrs, Attribute{Name: attr.Name.Local, Value: attr.Value})
	}
	return attrs
}

// LookupAttr returns the value of an attribute by local name. An
// unprefixed attribute wins over a prefixed one with the same local name.
func (n *Node) LookupAttr(name string) (string, bool) {
	if n.node == nil {
		return "", false
	}
	value, found := "", false
	for _, attr := range n.node.Attr {
		if attr.Name.Local != name || attr.Name.Space == "xmlns" {
			continue
		}
		if attr.Name.Space == "" {
			return attr.Value, true
		}
		if !found {
			value, found = attr.Value, true
		}
	}
	return value, found
}

// Attr returns the value of an attribute, or "" if it is absent.
func (n *Node) Attr(name string) string {
	value, _ := n.LookupAttr(name)
	return value
}

// SetAttr sets an unprefixed attribute, appending it when absent.
func (n *Node) SetAttr(name, value string) {
	if n.node == nil {
		return
	}
	for i, attr := range n.node.Attr {
		if attr.Name.Space == "" && attr.Name.Local == name {
			n.node.Attr[i].Value = value
			return
		}
	}
	attr := xmlquery.Attr{Value: value}
	attr.Name.Local = name
	n.node.Attr = append(n.node.Attr, attr)
}

// Remove detaches the node from its parent.
func (n *Node) Remove() {
	if n.node == nil || n.node.Parent == nil {
		return
	}
	node := n.node
	if node.PrevSibling != nil {
		node.PrevSibling.NextSibling = node.NextSibling
	} else {
		node.Parent.FirstChild = node.NextSibling
	}
	if node.NextSibling != nil {
		node.NextSibling.PrevSibling = node.PrevSibling
	} else {
		node.Parent.LastChild = node.PrevSibling
	}
	node.Parent, node.PrevSibling, node.NextSibling = nil, nil, nil
}

// XML serializes the node including its own tags.
func (n *Node) XML() string {
	if n.node == nil {
		return ""
	}
	var buf bytes.Buffer
	writeNode(&buf, n.node)
	return buf.String()
}

// CollapseSpace trims the text and replaces runs of whitespace with a
// single space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
