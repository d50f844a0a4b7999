package syllabus

import "testing"

func TestParseArticleNumberCanonical(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"47", "47"},
		{"47.", "47"},
		{" 47 ", "47"},
		{"47 bis", "47 bis"},
		{"47bis", "47 bis"},
		{"47.bis", "47 bis"},
		{"47 BIS", "47 bis"},
		{"103 ter", "103 ter"},
		{"12 quater", "12 quater"},
		{"9 quinquies", "9 quinquies"},
		{"XIV", "14"},
		{"xlii", "42"},
		{"Artículo 15", "15"},
		{"art. 15", "15"},
		{"primero", "1"},
		{"Tercera", "3"},
		{"décimo", "10"},
		{"único", "1"},
		{"cuarenta y siete", "47"},
		{"cuarenta y siete bis", "47 bis"},
		{"ciento veintitrés", "123"},
		{"doscientos uno", "201"},
		{"veintiséis", "26"},
		{"dieciséis", "16"},
		{"cien", "100"},
		{"preliminar", "preliminar"},
		{"disposicion adicional", "disposicion adicional"},
	}
	for _, c := range cases {
		got := ParseArticleNumber(c.in).Canonical()
		if got != c.want {
			t.Errorf("ParseArticleNumber(%q).Canonical() = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseArticleNumberSuffixVariantsCollide(t *testing.T) {
	variants := []string{"47 bis", "47bis", "47  bis", "47 bis.", "cuarenta y siete bis"}
	want := ParseArticleNumber(variants[0])
	for _, v := range variants[1:] {
		got := ParseArticleNumber(v)
		if got.Canonical() != want.Canonical() {
			t.Errorf("variant %q canonicalized to %q, want %q", v, got.Canonical(), want.Canonical())
		}
		if got.Root != 47 || got.Suffix != SuffixBis {
			t.Errorf("variant %q parsed as root=%d suffix=%q", v, got.Root, got.Suffix)
		}
	}
}

func TestParseArticleNumberBareSuffixIsNotNumeric(t *testing.T) {
	tok := ParseArticleNumber("bis")
	if tok.IsNumeric() || tok.Suffix != SuffixNone {
		t.Errorf("bare %q should stay raw text, got %+v", "bis", tok)
	}
}

func TestParseArticleNumberNonNumericKeepsRaw(t *testing.T) {
	tok := ParseArticleNumber("Disposición Final")
	if tok.IsNumeric() {
		t.Fatalf("expected non-numeric token, got root %d", tok.Root)
	}
	if tok.Canonical() != "disposicion final" {
		t.Errorf("canonical = %q", tok.Canonical())
	}
}
