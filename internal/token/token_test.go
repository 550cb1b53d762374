package token

import "testing"

func TestTypeString(t *testing.T) {
	cases := []struct {
		typ  Type
		want string
	}{
		{EOF, "EOF"},
		{WORD, "WORD"},
		{PIPE, "|"},
		{AND_AND, "&&"},
		{IF, "if"},
		{DLBRACK, "[["},
		{ARITH_POW, "**"},
	}
	for _, c := range cases {
		if got := c.typ.String(); got != c.want {
			t.Errorf("Type(%d).String() = %q, want %q", c.typ, got, c.want)
		}
	}
}

func TestTypeStringUnknown(t *testing.T) {
	var unknown Type = 9999
	if got := unknown.String(); got != "Type(9999)" {
		t.Errorf("unknown Type.String() = %q, want %q", got, "Type(9999)")
	}
}

func TestPositionString(t *testing.T) {
	p := Position{Line: 3, Column: 7, Offset: 42}
	if got := p.String(); got != "3:7" {
		t.Errorf("Position.String() = %q, want %q", got, "3:7")
	}
}

func TestPositionIsValid(t *testing.T) {
	cases := []struct {
		name string
		pos  Position
		want bool
	}{
		{"zero value", Position{}, false},
		{"valid", Position{Line: 1, Column: 1}, true},
		{"zero line", Position{Line: 0, Column: 1}, false},
		{"zero column", Position{Line: 1, Column: 0}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.pos.IsValid(); got != c.want {
				t.Errorf("%+v.IsValid() = %v, want %v", c.pos, got, c.want)
			}
		})
	}
}

func TestTokenString(t *testing.T) {
	tok := Token{Type: WORD, Literal: "hello", Pos: Position{Line: 1, Column: 1}}
	want := `WORD("hello")@1:1`
	if got := tok.String(); got != want {
		t.Errorf("Token.String() = %q, want %q", got, want)
	}
}

func TestReservedWords(t *testing.T) {
	cases := map[string]Type{
		"if":   IF,
		"done": DONE,
		"{":    LBRACE,
		"}":    RBRACE,
		"!":    BANG,
	}
	for word, want := range cases {
		got, ok := ReservedWords[word]
		if !ok {
			t.Errorf("ReservedWords[%q] missing", word)
			continue
		}
		if got != want {
			t.Errorf("ReservedWords[%q] = %v, want %v", word, got, want)
		}
	}
	if _, ok := ReservedWords["notareservedword"]; ok {
		t.Error("ReservedWords contains an entry for a non-reserved word")
	}
}
