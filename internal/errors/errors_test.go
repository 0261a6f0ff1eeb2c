package errors

import (
	"bytes"
	stderrors "errors"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{name: "invariant", code: "K001", wantMsg: "Fragment is already mounted", wantCat: CategoryInvariant},
		{name: "host", code: "K102", wantMsg: "Host insert failed", wantCat: CategoryHost},
		{name: "protocol", code: "K201", wantMsg: "Malformed frame", wantCat: CategoryProtocol},
		{name: "config", code: "K301", wantMsg: "Invalid configuration", wantCat: CategoryConfig},
		{name: "unknown code", code: "K999", wantMsg: "Unknown error", wantCat: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestErrorString(t *testing.T) {
	cause := stderrors.New("boom")
	err := New("K102").WithOp("fragment.mount").WithDetail("node %d", 3).Wrap(cause)

	want := "fragment.mount: K102: Host insert failed (node 3): boom"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if !stderrors.Is(err, New("K102")) {
		t.Error("errors.Is should match on code")
	}
	if stderrors.Is(err, New("K103")) {
		t.Error("errors.Is should not match a different code")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "K101") != nil {
		t.Error("FromError(nil) should be nil")
	}

	plain := stderrors.New("plain")
	wrapped := FromError(plain, "K101")
	if wrapped.Code != "K101" || wrapped.Wrapped != plain {
		t.Errorf("FromError did not wrap: %+v", wrapped)
	}

	coded := New("K103")
	if FromError(coded, "K101") != coded {
		t.Error("FromError should return coded errors unchanged")
	}
}

func TestCode(t *testing.T) {
	if got := Code(New("K005")); got != "K005" {
		t.Errorf("Code = %q", got)
	}
	if got := Code(stderrors.New("x")); got != "" {
		t.Errorf("Code of plain error = %q", got)
	}
}

func TestInvariantPanics(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(*KinesisError)
		if !ok {
			t.Fatalf("recovered %T, want *KinesisError", r)
		}
		if err.Code != "K002" || err.Op != "builder.build" {
			t.Errorf("unexpected panic payload: %+v", err)
		}
		if !strings.Contains(err.Detail, "7") {
			t.Errorf("detail = %q", err.Detail)
		}
	}()
	Invariant("K002", "builder.build", "parent index %d", 7)
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	out := New("K001").WithOp("fragment.mount").Wrap(stderrors.New("cause")).Format()
	for _, want := range []string{"ERROR K001: Fragment is already mounted", "fragment.mount", "Caused by: cause", "Hint:"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q:\n%s", want, out)
		}
	}

	if got := New("K004").WithDetail("id 9").FormatCompact(); got != "K004: Unknown dependency id (id 9)" {
		t.Errorf("FormatCompact() = %q", got)
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, stderrors.New("plain failure"))
	if !strings.Contains(buf.String(), "ERROR: plain failure") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText(strings.Repeat("word ", 30), 20)
	for _, l := range lines {
		if len(l) > 20 {
			t.Errorf("line too long: %q", l)
		}
	}
	if wrapText("", 10) != nil {
		t.Error("empty text should produce no lines")
	}
}

func TestRegistryCodesHaveMessages(t *testing.T) {
	for _, code := range GetAllCodes() {
		tmpl, ok := GetTemplate(code)
		if !ok || tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("code %s has incomplete template", code)
		}
	}
}
