package tokenize

import (
	"reflect"
	"testing"
)

func TestTokens(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"Hallo wereld!", []string{"Hallo", "wereld", "!"}},
		{"ik wil (koek), nu.", []string{"ik", "wil", "(", "koek", ")", ",", "nu", "."}},
		{`hij zei: "kom."`, []string{"hij", "zei", ":", `"`, "kom", ".", `"`}},
		{"wat?!", []string{"wat", "?!"}},
		{"en toen...", []string{"en", "toen", "..."}},
		{"d.w.z. bijv. 's morgens", []string{"d.w.z.", "bijv.", "'s", "morgens"}},
		{"om 12.30.", []string{"om", "12.30", "."}},
		{"zo'n huis", []string{"zo'n", "huis"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Tokens(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokens(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSentences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"single", "Dit is een zin.", []string{"Dit is een zin ."}},
		{"two", "Dit is een zin. En nog een!", []string{"Dit is een zin .", "En nog een !"}},
		{"no terminal", "geen punt aan het eind", []string{"geen punt aan het eind"}},
		{"quoted", `Hij zei: "Kom." Toen ging hij.`, []string{`Hij zei : " Kom . "`, "Toen ging hij ."}},
		{"abbreviation", "Dhr. Jansen komt bijv. morgen.", []string{"Dhr. Jansen komt bijv. morgen ."}},
		{"empty", "   ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sentences(tt.input); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Sentences(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
