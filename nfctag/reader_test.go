package nfctag

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestStubReader_AlwaysReportsNoTag(t *testing.T) {
	r := StubReader{}

	for i := 0; i < 3; i++ {
		tag, err := r.Read(context.Background())
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if tag.Payload != NoTagPayload {
			t.Errorf("payload = %q, want %q", tag.Payload, NoTagPayload)
		}
	}
}

func TestEmulator_LogsPayload(t *testing.T) {
	var buf bytes.Buffer
	e := NewEmulator()
	e.logger.SetOutput(&buf)

	e.Emulate("hello")

	if !strings.Contains(buf.String(), `emulating tag payload: "hello"`) {
		t.Errorf("expected emulation log entry, got %q", buf.String())
	}
}
