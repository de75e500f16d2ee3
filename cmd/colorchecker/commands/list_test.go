package commands

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/colorchecker/common"
	"github.com/Carmen-Shannon/colorchecker/engine/picker"
)

func TestPrintWindows(t *testing.T) {
	windows := []picker.WindowInfo{
		{Handle: 0x3a00007, Title: "Editor", Process: "code", PID: 42, Visible: true, Size: common.Size{Width: 800, Height: 600}},
	}

	var table bytes.Buffer
	if err := printWindows(&table, windows, "table"); err != nil {
		t.Fatalf("table: %v", err)
	}
	if !strings.Contains(table.String(), "0x3a00007") || !strings.Contains(table.String(), "800x600") {
		t.Fatalf("table output missing fields:\n%s", table.String())
	}

	var raw bytes.Buffer
	if err := printWindows(&raw, windows, "json"); err != nil {
		t.Fatalf("json: %v", err)
	}
	var decoded []picker.WindowInfo
	if err := json.Unmarshal(raw.Bytes(), &decoded); err != nil {
		t.Fatalf("decoding json output: %v", err)
	}
	if len(decoded) != 1 || decoded[0].Process != "code" {
		t.Fatalf("decoded = %+v", decoded)
	}

	if err := printWindows(&raw, windows, "xml"); err == nil {
		t.Fatalf("expected an error for an unknown format")
	}
}

func TestPrintWindowsEmpty(t *testing.T) {
	var out bytes.Buffer
	if err := printWindows(&out, nil, "table"); err != nil {
		t.Fatalf("table: %v", err)
	}
	if !strings.Contains(out.String(), "No capturable windows") {
		t.Fatalf("output = %q", out.String())
	}
}
