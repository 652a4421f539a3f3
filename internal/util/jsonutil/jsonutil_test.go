package jsonutil

import (
	"errors"
	"testing"
)

func TestDecode_PlainAndFenced(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"plain", `{"topics":["a","b"]}`},
		{"fenced", "```json\n{\"topics\":[\"a\",\"b\"]}\n```"},
		{"fenced_no_tag", "```\n{\"topics\":[\"a\",\"b\"]}\n```"},
		{"fenced_no_newline", "```json{\"topics\":[\"a\",\"b\"]}```"},
		{"surrounding_space", "  \n{\"topics\":[\"a\",\"b\"]}\n  "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out struct {
				Topics []string `json:"topics"`
			}
			if err := Decode(tc.raw, &out, "failed to parse topic ideas"); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(out.Topics) != 2 || out.Topics[0] != "a" || out.Topics[1] != "b" {
				t.Fatalf("topics: got=%v want=[a b]", out.Topics)
			}
		})
	}
}

func TestDecode_MalformedCarriesCallerMessage(t *testing.T) {
	var out map[string]any
	err := Decode("the model apologises instead of answering", &out, "failed to parse tags")
	if err == nil {
		t.Fatal("expected error for non-JSON text")
	}
	var malformed *MalformedError
	if !errors.As(err, &malformed) {
		t.Fatalf("error type: got=%T want=*MalformedError", err)
	}
	if malformed.Msg != "failed to parse tags" {
		t.Fatalf("message: got=%q want=%q", malformed.Msg, "failed to parse tags")
	}
	if malformed.Unwrap() == nil {
		t.Fatal("expected wrapped parse error")
	}
}

func TestStripFences_LeavesPayloadIntact(t *testing.T) {
	got := StripFences("```json\n{\"html\":\"<b>x</b>\"}\n```")
	if got != `{"html":"<b>x</b>"}` {
		t.Fatalf("strip: got=%q", got)
	}
}

func TestMarshalNoEscape(t *testing.T) {
	b, err := MarshalNoEscape(map[string]string{"md": "a <b> & [x](https://e.com)"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"md":"a <b> & [x](https://e.com)"}` {
		t.Fatalf("got=%s", b)
	}
}
