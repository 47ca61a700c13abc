package bind

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "codeexplainer/internal/platform/errors"
	kit "codeexplainer/internal/platform/testkit"
)

type payload struct {
	Code     string `json:"code" validate:"required"`
	Language string `json:"language" validate:"required,oneof=javascript python"`
	Mode     string `json:"mode,omitempty" validate:"omitempty,oneof=explain cp"`
}

func post(body string) *http.Request {
	if body == "" {
		return httptest.NewRequest(http.MethodPost, "/", http.NoBody)
	}
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func details(t *testing.T, err error) []perr.FieldDetail {
	t.Helper()
	e, ok := perr.As(err)
	if !ok || e.Code() != perr.ErrorCodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	return e.Details()
}

func TestParseJSON_Success(t *testing.T) {
	got, err := ParseJSON[payload](post(`{"code":"print(1)","language":"python","mode":"cp"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Code != "print(1)" || got.Language != "python" || got.Mode != "cp" {
		t.Fatalf("got %+v", got)
	}
}

func TestParseJSON_UnknownFieldsIgnoredByDefault(t *testing.T) {
	if _, err := ParseJSON[payload](post(`{"code":"x","language":"python","extra":1}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := ParseJSON[payload](post(`{"code":"x","language":"python","extra":1}`), JSONOptions{DisallowUnknown: true})
	if perr.CodeOf(err) != perr.ErrorCodeJSON {
		t.Fatalf("expected JSON error with DisallowUnknown, got %v", err)
	}
}

func TestParseJSON_EmptyBodyReportsRequiredFields(t *testing.T) {
	_, err := ParseJSON[payload](post(""))
	d := details(t, err)
	if len(d) != 2 {
		t.Fatalf("details = %+v", d)
	}
	if d[0].Field != "code" || d[0].Message != "Code is required" {
		t.Fatalf("code detail = %+v", d[0])
	}
	if d[1].Field != "language" || d[1].Message != "Language is required" {
		t.Fatalf("language detail = %+v", d[1])
	}
}

func TestParseJSON_CollectsEveryFailure(t *testing.T) {
	_, err := ParseJSON[payload](post(`{"code":"x","language":"rust","mode":"golf"}`))
	d := details(t, err)
	if len(d) != 2 {
		t.Fatalf("expected 2 details, got %+v", d)
	}
	if d[0].Message != "Invalid language" || d[1].Message != "Invalid mode" {
		t.Fatalf("messages = %+v", d)
	}
}

func TestParseJSON_TypeMismatchIsAFieldError(t *testing.T) {
	_, err := ParseJSON[payload](post(`{"code":42,"language":"python"}`))
	d := details(t, err)
	if len(d) != 1 || d[0].Field != "code" || d[0].Message != "Code must be a string" {
		t.Fatalf("details = %+v", d)
	}

	// the type error does not hide other failures, and code is reported once
	_, err = ParseJSON[payload](post(`{"code":42,"language":"rust"}`))
	d = details(t, err)
	if len(d) != 2 || d[0].Field != "code" || d[1].Field != "language" {
		t.Fatalf("details = %+v", d)
	}
}

func TestParseJSON_InvalidJSON(t *testing.T) {
	_, err := ParseJSON[payload](post(`{`))
	if perr.CodeOf(err) != perr.ErrorCodeJSON {
		t.Fatalf("expected JSON error code, got %v (%v)", perr.CodeOf(err), err)
	}
	// the decoder's text stays out of the wire body
	if w := perr.WireFrom(err); w.Error != "invalid JSON" {
		t.Fatalf("wire = %+v", w)
	}
}

func TestParseJSON_TrailingData_Seam(t *testing.T) {
	kit.Swap(t, &jsonMore, func(*json.Decoder) bool { return true })
	_, err := ParseJSON[payload](post(`{"code":"x","language":"python"}`))
	if perr.CodeOf(err) != perr.ErrorCodeJSON {
		t.Fatalf("expected JSON error code, got %v", err)
	}
}

func TestParseJSON_MaxBytes(t *testing.T) {
	_, err := ParseJSON[payload](post(`{"code":"xxxxxxxxxxxxxxxx","language":"python"}`), JSONOptions{MaxBytes: 10})
	if perr.CodeOf(err) != perr.ErrorCodeJSON {
		t.Fatalf("expected JSON error for truncated body, got %v", err)
	}
}

func TestParseJSON_InvalidValidationTarget(t *testing.T) {
	// validator refuses non-struct targets
	_, err := ParseJSON[int](post(`5`))
	if perr.CodeOf(err) != perr.ErrorCodeUnknown {
		t.Fatalf("expected unknown code, got %v", err)
	}
}

func TestFieldErrors_ForeignError(t *testing.T) {
	if FieldErrors(perr.New(perr.ErrorCodeJSON, "x")) != nil {
		t.Fatalf("expected nil for non-validator error")
	}
}

func TestTagNameFunc_NoTagUsesFieldName(t *testing.T) {
	type noTag struct {
		Name string `validate:"required"`
	}
	_, err := ParseJSON[noTag](post(`{}`))
	d := details(t, err)
	if d[0].Field != "Name" {
		t.Fatalf("field = %q, want Name", d[0].Field)
	}
}
