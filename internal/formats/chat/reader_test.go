package chat

import (
	"testing"

	"github.com/FocuswithJustin/corpus2alpino/core/ir"
)

const sample = "@UTF8\n" +
	"@Begin\n" +
	"@Languages:\tnld\n" +
	"@Participants:\tCHI Target_Child, MOT Mother\n" +
	"@ID:\tnld|schlichting|CHI|2;6.|female|||Target_Child|||\n" +
	"@ID:\tnld|schlichting|MOT|||||Mother|||\n" +
	"@Comment:\teerste opname\n" +
	"@Comment:\tthuis\n" +
	"*CHI:\tik wil (.) koek [* 0] . \x15100_200\x15\n" +
	"%mor:\tpro|ik v|wil n|koek .\n" +
	"*MOT:\tnee &-uh dat mag\n" +
	"\tniet xxx .\n" +
	"*CHI:\t&=huilt .\n" +
	"*CHI:\t<mama> [/] mama(')s bal@c +...\n" +
	"@End\n"

func TestTestFile(t *testing.T) {
	r := New()
	if !r.TestFile(&ir.CollectedFile{Filename: "opname.CHA"}) {
		t.Error(".CHA not detected")
	}
	if r.TestFile(&ir.CollectedFile{Filename: "opname.txt", Content: sample}) {
		t.Error(".txt detected as CHAT")
	}
}

func TestRead(t *testing.T) {
	var docs []*ir.Document
	for doc, err := range New().Read(&ir.CollectedFile{Filename: "opname.cha", Content: sample}) {
		if err != nil {
			t.Fatalf("Read failed: %v", err)
		}
		docs = append(docs, doc)
	}
	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	doc := docs[0]

	if doc.Metadata["languages"] != ir.Text("nld") {
		t.Errorf("languages = %+v", doc.Metadata["languages"])
	}
	if doc.Metadata["comment"] != ir.Text("eerste opname | thuis") {
		t.Errorf("comment = %+v", doc.Metadata["comment"])
	}
	if _, ok := doc.Metadata["begin"]; ok {
		t.Error("@Begin stored as metadata")
	}

	tests := []struct {
		id, text, speaker string
		line              int
	}{
		{"1", "ik wil koek .", "CHI", 9},
		{"2", "nee dat mag niet .", "MOT", 11},
		{"3", "mama mama's bal .", "CHI", 14},
	}
	if len(doc.Utterances) != len(tests) {
		t.Fatalf("expected %d utterances, got %d", len(tests), len(doc.Utterances))
	}
	for i, tt := range tests {
		u := doc.Utterances[i]
		if u.ID != tt.id || u.Text != tt.text || u.Line != tt.line {
			t.Errorf("utterance %d = {%q %q %d}, want {%q %q %d}", i, u.ID, u.Text, u.Line, tt.id, tt.text, tt.line)
		}
		if u.Metadata["speaker"] != ir.Text(tt.speaker) {
			t.Errorf("utterance %d speaker = %+v", i, u.Metadata["speaker"])
		}
	}

	chi := doc.Utterances[0].Metadata
	if chi["age"] != ir.Text("2;6.") || chi["sex"] != ir.Text("female") || chi["role"] != ir.Text("Target_Child") {
		t.Errorf("speaker metadata = %+v", chi)
	}
	if _, ok := chi["code"]; ok {
		t.Error("speaker code stored twice")
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"ik wil koek .", "ik wil koek ."},
		{"wat is dat +//?", "wat is dat ?"},
		{"0is die groot ?", "die groot ?"},
		{"[: foo] een hond_en_kat .", "een hond en kat ."},
		{"[huis] www", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
