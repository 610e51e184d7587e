package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/papersync/pkg/locate"
	"github.com/matzehuels/papersync/pkg/scrollsync"
	"github.com/matzehuels/papersync/pkg/transform"
)

func captureStdout(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	return &buf
}

func TestPrintFrame(t *testing.T) {
	buf := captureStdout(t)
	f := scrollsync.Frame{
		Seq:       1,
		Block:     4,
		Position:  locate.Position{Phase: locate.Inside, Block: 4, Rate: 0.25},
		Transform: transform.Transform{Zoom: 2, PanX: 10, PanY: 20},
		Page:      1,
	}
	printFrame(312.4, f, 3)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf)
	}
	for i, want := range []string{"312", "block=4 rate=0.250", "zoom=2.0000 pan=(10.00,20.00)", "2/3"} {
		if !strings.Contains(lines[i], want) {
			t.Errorf("line %d = %q, want it to contain %q", i, lines[i], want)
		}
	}
}

func TestStatusLines(t *testing.T) {
	buf := captureStdout(t)
	printSuccess("Wrote %d frames", 3)
	printWarning("%d steps kept the previous frame", 1)
	printFile("out/")

	got := buf.String()
	for _, want := range []string{iconSuccess + " Wrote 3 frames", iconWarning + " ", "1 steps kept", iconArrow, "out/"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q does not contain %q", got, want)
		}
	}
}
