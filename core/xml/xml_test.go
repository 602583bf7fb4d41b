package xml

import (
	"strings"
	"testing"
)

const alpinoDoc = `<?xml version="1.0" encoding="UTF-8"?>
<alpino_ds version="1.3">
  <node begin="0" end="2" cat="top" id="0">
    <node begin="0" end="1" pos="noun" word="hallo" id="1"/>
    <node begin="1" end="2" pos="noun" word="wereld" id="2"/>
  </node>
  <sentence sentid="42">hallo wereld</sentence>
</alpino_ds>`

func TestParseInvalidXML(t *testing.T) {
	tests := []struct {
		name string
		xml  string
	}{
		{"unclosed tag", "<root><element></root>"},
		{"mismatched tags", "<root></other>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.xml)); err == nil {
				t.Error("Parse should fail for invalid XML")
			}
		})
	}
}

func TestSerializePreservesLayout(t *testing.T) {
	doc, err := ParseString(alpinoDoc)
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}
	got := doc.Serialize()
	if !strings.HasPrefix(got, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Errorf("Serialize() lost the declaration:\n%s", got)
	}
	body := alpinoDoc[strings.Index(alpinoDoc, "<alpino_ds"):]
	if root := doc.Root().XML(); root != body {
		t.Errorf("XML() changed the document:\n%s", root)
	}
}

func TestSerializeDeclaration(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		want string
	}{
		{"absent", `<alpino_ds><node id="0"/></alpino_ds>`, `<alpino_ds><node id="0"/></alpino_ds>`},
		{"present", `<?xml version="1.0"?><alpino_ds/>`, `<?xml version="1.0"?><alpino_ds/>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ParseString(tt.xml)
			if err != nil {
				t.Fatalf("ParseString failed: %v", err)
			}
			if got := doc.Serialize(); got != tt.want {
				t.Errorf("Serialize() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestXPathAndSetAttr(t *testing.T) {
	doc, err := ParseString(alpinoDoc)
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}

	nodes, err := doc.XPath("//node[@word]")
	if err != nil {
		t.Fatalf("XPath failed: %v", err)
	}
	if len(nodes) != 2 {
		t.Fatalf("expected 2 word nodes, got %d", len(nodes))
	}

	nodes[0].SetAttr("pos", "tag")
	nodes[0].SetAttr("extra", "x&y")

	out := doc.Serialize()
	if !strings.Contains(out, `pos="tag" word="hallo" id="1" extra="x&amp;y"/>`) {
		t.Errorf("SetAttr result not serialized as expected:\n%s", out)
	}

	if _, err := doc.XPath("//node["); err == nil {
		t.Error("invalid xpath should fail")
	}
}

func TestXPathFirst(t *testing.T) {
	doc, _ := ParseString(alpinoDoc)
	n, err := doc.XPathFirst("//sentence")
	if err != nil || n == nil {
		t.Fatalf("XPathFirst() = %v, %v", n, err)
	}
	if n.Attr("sentid") != "42" || n.Text() != "hallo wereld" {
		t.Errorf("unexpected sentence node: %q %q", n.Attr("sentid"), n.Text())
	}

	missing, err := doc.XPathFirst("//metadata")
	if err != nil || missing != nil {
		t.Errorf("XPathFirst() for missing element = %v, %v", missing, err)
	}
}

func TestNamespacedLookup(t *testing.T) {
	src := `<TEI xmlns="http://www.tei-c.org/ns/1.0"><text><body><p xml:id="p1">een <hi>twee</hi> drie</p></body></text></TEI>`
	doc, err := ParseString(src)
	if err != nil {
		t.Fatalf("ParseString failed: %v", err)
	}

	ps := doc.Descendants("p")
	if len(ps) != 1 {
		t.Fatalf("expected 1 p element, got %d", len(ps))
	}
	if got := ps[0].Attr("id"); got != "p1" {
		t.Errorf("Attr(id) = %q, want p1", got)
	}

	nodes := ps[0].Nodes()
	if len(nodes) != 3 || !nodes[0].IsText() || !nodes[1].IsElement() || nodes[1].Name() != "hi" {
		t.Errorf("unexpected child nodes: %d", len(nodes))
	}
	if ps[0].Parent().Name() != "body" {
		t.Errorf("Parent() = %q", ps[0].Parent().Name())
	}
	if len(ps[0].Attributes()) != 1 {
		t.Errorf("Attributes() = %v", ps[0].Attributes())
	}
}

func TestRemove(t *testing.T) {
	doc, _ := ParseString(`<a><metadata><meta name="x"/></metadata><b/></a>`)
	doc.Root().Child("metadata").Remove()
	if got := doc.Serialize(); got != "<a><b/></a>" {
		t.Errorf("Serialize() after Remove = %q", got)
	}
	if doc.Root().Child("metadata") != nil {
		t.Error("removed node still reachable")
	}
}

func TestNodeXML(t *testing.T) {
	doc, _ := ParseString(`<treebank><alpino_ds id="1"><sentence>a</sentence></alpino_ds></treebank>`)
	items := doc.Root().Children()
	if len(items) != 1 {
		t.Fatalf("expected 1 child, got %d", len(items))
	}
	if got := items[0].XML(); got != `<alpino_ds id="1"><sentence>a</sentence></alpino_ds>` {
		t.Errorf("XML() = %q", got)
	}
}

func TestCollapseSpace(t *testing.T) {
	if got := CollapseSpace("  een\n  twee\tdrie "); got != "een twee drie" {
		t.Errorf("CollapseSpace() = %q", got)
	}
}
