package toolenv

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSuccess_FormatsOkAndData(t *testing.T) {
	out := Success(map[string]any{"path": "test.txt", "content": "hello"})
	js := out.JSON()
	if !strings.Contains(js, `"ok":true`) || !strings.Contains(js, `"data":`) {
		t.Fatalf("unexpected JSON: %s", js)
	}
	if !out.Ok {
		t.Fatalf("expected Ok=true")
	}
}

func TestFailure_FormatsCodeAndMessage(t *testing.T) {
	out := Failure(CodeNotFound, "file not found: test.txt")
	js := out.JSON()
	if !strings.Contains(js, `"ok":false`) || !strings.Contains(js, `"code":"not_found"`) {
		t.Fatalf("unexpected JSON: %s", js)
	}
	if out.Ok {
		t.Fatalf("expected Ok=false")
	}
}

func TestOutput_RoundTrips(t *testing.T) {
	out := Success([]int{1, 2, 3})
	var decoded Output
	if err := json.Unmarshal([]byte(out.JSON()), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !decoded.Ok {
		t.Fatalf("expected Ok=true after roundtrip")
	}
}
