package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func newBufferFormatter(opts ...Option) (*Formatter, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	opts = append([]Option{WithWriter(buf)}, opts...)
	return NewFormatter(opts...), buf
}

func TestFormatter_Format(t *testing.T) {
	f, _ := newBufferFormatter()
	if f.Format() != FormatText {
		t.Errorf("default format = %s, want %s", f.Format(), FormatText)
	}

	f, _ = newBufferFormatter(WithFormat(FormatJSON))
	if f.Format() != FormatJSON {
		t.Errorf("format = %s, want %s", f.Format(), FormatJSON)
	}
}

func TestFormatter_StatusLines(t *testing.T) {
	tests := []struct {
		name  string
		print func(f *Formatter) error
		plain string
		color Color
	}{
		{"success", func(f *Formatter) error { return f.Success("queued %d tasks", 3) }, "✓ queued 3 tasks", ColorGreen},
		{"error", func(f *Formatter) error { return f.Error("drain failed") }, "✗ drain failed", ColorRed},
		{"warning", func(f *Formatter) error { return f.Warning("retrying") }, "⚠ retrying", ColorYellow},
		{"info", func(f *Formatter) error { return f.Info("nothing pending") }, "ℹ nothing pending", ColorBlue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, buf := newBufferFormatter(WithColor(false))
			if err := tt.print(f); err != nil {
				t.Fatalf("print error = %v", err)
			}
			if got := buf.String(); got != tt.plain+"\n" {
				t.Errorf("plain output = %q, want %q", got, tt.plain+"\n")
			}

			f, buf = newBufferFormatter(WithColor(true))
			if err := tt.print(f); err != nil {
				t.Fatalf("print error = %v", err)
			}
			got := buf.String()
			if !strings.Contains(got, string(tt.color)) || !strings.Contains(got, string(ColorReset)) {
				t.Errorf("colored output %q should carry color and reset codes", got)
			}
		})
	}
}

func TestFormatter_Item(t *testing.T) {
	f, buf := newBufferFormatter(WithColor(false))
	if err := f.Item("Pending tasks", "12"); err != nil {
		t.Fatalf("Item() error = %v", err)
	}
	if got := buf.String(); got != "  Pending tasks: 12\n" {
		t.Errorf("Item() output = %q", got)
	}
}

func TestFormatter_Header(t *testing.T) {
	f, buf := newBufferFormatter(WithColor(false))
	if err := f.Header("Sync Status"); err != nil {
		t.Fatalf("Header() error = %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("Header() wrote %d lines, want 2", len(lines))
	}
	if lines[0] != "Sync Status" {
		t.Errorf("header line = %q", lines[0])
	}
	if lines[1] != strings.Repeat("─", len("Sync Status")) {
		t.Errorf("underline = %q", lines[1])
	}
}

func TestFormatter_BoldDim(t *testing.T) {
	f, _ := newBufferFormatter(WithColor(false))
	if got := f.Bold("x"); got != "x" {
		t.Errorf("Bold without color = %q, want plain text", got)
	}
	if got := f.Dim("x"); got != "x" {
		t.Errorf("Dim without color = %q, want plain text", got)
	}

	f, _ = newBufferFormatter(WithColor(true))
	if got := f.Dim("x"); got != string(ColorDim)+"x"+string(ColorReset) {
		t.Errorf("Dim with color = %q", got)
	}
}

func TestFormatter_Table(t *testing.T) {
	f, buf := newBufferFormatter(WithColor(false))

	err := f.Table(TableData{
		Columns: []TableColumn{
			{Header: "TASK"},
			{Header: "PRI", Align: AlignRight},
			{Header: "STATUS"},
		},
		Rows: [][]string{
			{"t_1", "1", "pending"},
			{"t_2", "5", "completed"},
		},
	})
	if err != nil {
		t.Fatalf("Table() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("Table() wrote %d lines, want 4", len(lines))
	}
	if lines[0] != "TASK  PRI  STATUS" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "----  ---  ------" {
		t.Errorf("separator = %q", lines[1])
	}
	// PRI is right-aligned within its column.
	if lines[2] != "t_1     1  pending" {
		t.Errorf("row = %q", lines[2])
	}
	if lines[3] != "t_2     5  completed" {
		t.Errorf("row = %q", lines[3])
	}
}

func TestFormatter_TableEmpty(t *testing.T) {
	f, buf := newBufferFormatter(WithColor(false))
	if err := f.Table(TableData{}); err != nil {
		t.Fatalf("Table() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("empty table wrote %q", buf.String())
	}
}

func TestPadCell(t *testing.T) {
	tests := []struct {
		text  string
		width int
		align Alignment
		want  string
	}{
		{"ab", 5, AlignLeft, "ab   "},
		{"ab", 5, AlignRight, "   ab"},
		{"ab", 6, AlignCenter, "  ab  "},
		{"abcdef", 3, AlignLeft, "abcdef"},
	}

	for _, tt := range tests {
		if got := padCell(tt.text, tt.width, tt.align); got != tt.want {
			t.Errorf("padCell(%q, %d, %d) = %q, want %q", tt.text, tt.width, tt.align, got, tt.want)
		}
	}
}

func TestFormatter_JSON(t *testing.T) {
	f, buf := newBufferFormatter(WithFormat(FormatJSON))

	payload := map[string]any{"processed": 3, "failed": 1}
	if err := f.JSON(payload); err != nil {
		t.Fatalf("JSON() error = %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["processed"] != float64(3) {
		t.Errorf("processed = %v, want 3", decoded["processed"])
	}
	if !strings.Contains(buf.String(), "\n  ") {
		t.Error("JSON output should be indented")
	}
}

func TestSpinner(t *testing.T) {
	t.Run("stop clears the line", func(t *testing.T) {
		buf := &bytes.Buffer{}
		s := NewSpinner("working", WithSpinnerWriter(buf))
		s.Start()
		s.Stop()
		if !strings.HasSuffix(buf.String(), "\r") {
			t.Errorf("Stop() should end with a carriage return, got %q", buf.String())
		}
	})

	t.Run("double start and double stop are safe", func(t *testing.T) {
		buf := &bytes.Buffer{}
		s := NewSpinner("working", WithSpinnerWriter(buf))
		s.Start()
		s.Start()
		s.Stop()
		s.Stop()
	})

	t.Run("stop with error leaves a message", func(t *testing.T) {
		buf := &bytes.Buffer{}
		s := NewSpinner("working", WithSpinnerWriter(buf))
		s.Start()
		s.StopWithError("drain failed")
		got := buf.String()
		if !strings.Contains(got, "✗") || !strings.Contains(got, "drain failed") {
			t.Errorf("StopWithError() output = %q", got)
		}
	})
}
