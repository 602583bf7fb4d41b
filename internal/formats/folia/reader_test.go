package folia

import (
	"testing"

	"github.com/FocuswithJustin/corpus2alpino/core/errors"
	"github.com/FocuswithJustin/corpus2alpino/core/ir"
)

const sample = `<?xml version="1.0" encoding="UTF-8"?>
<FoLiA xmlns="http://ilk.uvt.nl/folia" xml:id="verslag" version="2.0">
  <metadata type="native">
    <meta id="title">Een verslag</meta>
    <meta id="year">2001</meta>
  </metadata>
  <text xml:id="verslag.text">
    <p xml:id="verslag.p.1">
      <s xml:id="verslag.p.1.s.1" speaker="A">
        <w xml:id="w1"><t>Het</t><lemma class="het"/><pos class="LID(bep)"/></w>
        <w xml:id="w2"><t>[huis]</t></w>
        <w xml:id="w3">
          <correction>
            <new><t>goed</t></new>
            <original><t>goet</t></original>
          </correction>
        </w>
      </s>
      <s xml:id="verslag.p.1.s.2">
        <t>Nog een zin.</t>
      </s>
    </p>
  </text>
</FoLiA>
`

func TestTestFile(t *testing.T) {
	r := New()
	if !r.TestFile(&ir.CollectedFile{Filename: "a.xml", Content: sample}) {
		t.Error("FoLiA not detected")
	}
	if r.TestFile(&ir.CollectedFile{Filename: "a.xml", Content: "<alpino_ds/>"}) {
		t.Error("Alpino detected as FoLiA")
	}
}

func TestRead(t *testing.T) {
	var docs []*ir.Document
	for doc, err := range New().Read(&ir.CollectedFile{Filename: "verslag.xml", Content: sample}) {
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		docs = append(docs, doc)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	doc := docs[0]

	if doc.Metadata["title"] != ir.Text("Een verslag") || doc.Metadata["year"] != ir.Text("2001") {
		t.Errorf("metadata = %+v", doc.Metadata)
	}
	if len(doc.Utterances) != 2 {
		t.Fatalf("expected 2 utterances, got %d", len(doc.Utterances))
	}

	first := doc.Utterances[0]
	if want := `[ @folia het LID(bep) Het ] \[huis\] [ @add_lex goed goet ]`; first.Text != want {
		t.Errorf("text = %q, want %q", first.Text, want)
	}
	if first.ID != "verslag.p.1.s.1" {
		t.Errorf("id = %q", first.ID)
	}
	if first.Metadata["speaker"] != ir.Text("A") {
		t.Errorf("speaker = %+v", first.Metadata["speaker"])
	}

	if second := doc.Utterances[1]; second.Text != "Nog een zin ." {
		t.Errorf("fallback text = %q", second.Text)
	}
}

func TestReadMalformed(t *testing.T) {
	for _, err := range New().Read(&ir.CollectedFile{Filename: "a.xml", Content: "<FoLiA><text></FoLiA>"}) {
		if !errors.Is(err, errors.ErrInvalidInput) {
			t.Errorf("error = %v, want a parse error", err)
		}
		return
	}
	t.Error("no error yielded")
}
