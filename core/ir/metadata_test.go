package ir

import "testing"

func TestMergeChild(t *testing.T) {
	tests := []struct {
		name   string
		parent Metadata
		child  Metadata
		want   Metadata
	}{
		{
			name:   "child overrides",
			parent: Metadata{"author": Text("p"), "year": Text("1990")},
			child:  Metadata{"author": Text("c")},
			want:   Metadata{"author": Text("c"), "year": Text("1990")},
		},
		{
			name:   "structural key keeps parent",
			parent: Metadata{"id": Text("doc1"), "tei-tag": Text("div")},
			child:  Metadata{"id": Text("p3"), "tei-tag": Text("p")},
			want:   Metadata{"id": Text("doc1"), "tei-tag": Text("div")},
		},
		{
			name:   "structural key only on child",
			parent: Metadata{},
			child:  Metadata{"id": Text("p3")},
			want:   Metadata{"id": Text("p3")},
		},
		{
			name:   "nil inputs",
			parent: nil,
			child:  nil,
			want:   Metadata{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeChild(tt.parent, tt.child)
			if !got.Equal(tt.want) {
				t.Errorf("MergeChild() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMergeChildDoesNotModifyInputs(t *testing.T) {
	parent := Metadata{"a": Text("1")}
	child := Metadata{"a": Text("2"), "b": Text("3")}
	MergeChild(parent, child)
	if len(parent) != 1 || parent["a"].Value != "1" {
		t.Errorf("parent modified: %v", parent)
	}
}

func TestMergeSibling(t *testing.T) {
	tests := []struct {
		name string
		a    Metadata
		b    Metadata
		want Metadata
	}{
		{
			name: "overlapping lists",
			a:    Metadata{"k": Text("a | b")},
			b:    Metadata{"k": Text("b | c")},
			want: Metadata{"k": Text("a | b | c")},
		},
		{
			name: "sorted union",
			a:    Metadata{"k": Text("z")},
			b:    Metadata{"k": Text("m")},
			want: Metadata{"k": Text("m | z")},
		},
		{
			name: "equal values",
			a:    Metadata{"k": Text("x")},
			b:    Metadata{"k": Text("x")},
			want: Metadata{"k": Text("x")},
		},
		{
			name: "one sided keys pass through",
			a:    Metadata{"left": Text("1")},
			b:    Metadata{"right": {Value: "2", Kind: KindInt}},
			want: Metadata{"left": Text("1"), "right": {Value: "2", Kind: KindInt}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeSibling(tt.a, tt.b)
			if !got.Equal(tt.want) {
				t.Errorf("MergeSibling() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppendValue(t *testing.T) {
	m := Metadata{}
	AppendValue(m, "speaker", "B")
	AppendValue(m, "speaker", "A")
	if got := m["speaker"].Value; got != "B | A" {
		t.Errorf("AppendValue() = %q, want %q", got, "B | A")
	}
}

func TestMetadataClone(t *testing.T) {
	m := Metadata{"a": Text("1")}
	c := m.Clone()
	c["b"] = Text("2")
	if _, ok := m["b"]; ok {
		t.Error("Clone shares storage with the original")
	}
	if got := Metadata(nil).Clone(); got == nil {
		t.Error("Clone of nil should be an empty map")
	}
}
