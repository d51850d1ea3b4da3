package normalize

import "testing"

func TestEmail(t *testing.T) {
	in := "  John.DOE@Example.COM  "
	want := "john.doe@example.com"
	got := Email(in)
	if got != want {
		t.Fatalf("Normalize.Email(%q) = %q, want %q", in, got, want)
	}
}

func TestPhone(t *testing.T) {
	cases := map[string]string{
		"+91 98765-43210": "919876543210",
		"(040) 123 4567":  "0401234567",
		"":                "",
		"n/a":             "",
		"٣٣ 12-34":        "1234",
	}
	for in, want := range cases {
		if got := Phone(in); got != want {
			t.Fatalf("Phone(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestID(t *testing.T) {
	if got := ID("  65A1B2C3D4E5F60718293A4B "); got != "65a1b2c3d4e5f60718293a4b" {
		t.Fatalf("ID returned %q", got)
	}
}

func TestHasDomain(t *testing.T) {
	if !HasDomain(" R170001@RGUKTRKV.AC.IN ", "@rguktrkv.ac.in") {
		t.Fatal("expected mixed-case campus email to match")
	}
	if HasDomain("someone@gmail.com", "@rguktrkv.ac.in") {
		t.Fatal("expected foreign domain to be rejected")
	}
	if HasDomain("x@rguktrkv.ac.in.evil.com", "@rguktrkv.ac.in") {
		t.Fatal("suffix must be anchored at the end")
	}
	if !HasDomain("anyone@anywhere.org", "") {
		t.Fatal("empty suffix should accept every address")
	}
}

func TestConversationKey(t *testing.T) {
	ab := ConversationKey("bbb", "aaa")
	ba := ConversationKey("aaa", "bbb")
	if ab != ba || ab != "aaa-bbb" {
		t.Fatalf("ConversationKey not symmetric: %q vs %q", ab, ba)
	}
	if got := ConversationKey(" AAA ", "bbb"); got != "aaa-bbb" {
		t.Fatalf("ConversationKey did not normalize ids: %q", got)
	}
}
