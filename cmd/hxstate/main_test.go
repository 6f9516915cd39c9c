package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/hxstate/internal/errors"
	"github.com/vango-dev/hxstate/pkg/dom"
	"github.com/vango-dev/hxstate/pkg/render"
)

const counterPage = `<!DOCTYPE html><html><head></head><body>
<article hx-state>
<p id="count" hx-bind="innerText=count:Number">3</p>
<div id="box" hx-effect="style.color = state.count > 4 ? 'red' : 'blue'"></div>
</article>
</body></html>`

func writePage(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--log-level=error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRender(t *testing.T) {
	path := writePage(t, counterPage)

	out, err := execute(t, "render", path)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, `style="color: blue"`) {
		t.Errorf("expected effect output, got:\n%s", out)
	}

	out, err = execute(t, "render", "--set", "box.count=5", "--strip", path)
	if err != nil {
		t.Fatalf("render --set: %v", err)
	}
	if !strings.Contains(out, `<p id="count">5</p>`) {
		t.Errorf("expected stripped paragraph with 5, got:\n%s", out)
	}
	if !strings.Contains(out, `style="color: red"`) {
		t.Errorf("expected effect rerun after --set, got:\n%s", out)
	}
}

func TestRenderToFile(t *testing.T) {
	path := writePage(t, counterPage)
	dest := filepath.Join(t.TempDir(), "out.html")

	if _, err := execute(t, "render", "-o", dest, path); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.HasPrefix(string(data), "<!DOCTYPE html>") {
		t.Errorf("unexpected output file:\n%s", data)
	}
}

// failingCloser buffers writes and fails on Close, like a file whose final
// flush to disk fails.
type failingCloser struct {
	bytes.Buffer
	closed bool
}

func (f *failingCloser) Close() error {
	f.closed = true
	return io.ErrClosedPipe
}

func TestRenderAndCloseReportsCloseError(t *testing.T) {
	doc := dom.El("p", "hi")
	wc := &failingCloser{}

	err := renderAndClose(render.NewRenderer(render.RendererConfig{}), wc, doc)
	if err != io.ErrClosedPipe {
		t.Errorf("expected close error, got %v", err)
	}
	if !wc.closed {
		t.Error("expected writer to be closed")
	}
	if got := wc.String(); got != "<p>hi</p>" {
		t.Errorf("expected rendered output before close, got %q", got)
	}
}

func TestCheckJSON(t *testing.T) {
	path := writePage(t, `<div hx-state>
<span hx-bind="innerText=n:Number">1</span>
<i hx-bind="innerText"></i>
</div>`)

	out, err := execute(t, "--policy=skip", "check", "--json", path)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	var report checkReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report: %v\n%s", err, out)
	}
	if report.Stores != 1 || report.Bindings != 1 || len(report.Skipped) != 1 {
		t.Errorf("unexpected report %+v", report)
	}

	_, err = execute(t, "--policy=skip", "check", "--strict", path)
	if he, ok := err.(*errors.HxError); !ok || he.Code != "H100" {
		t.Errorf("expected H100 under --strict, got %v", err)
	}
}

func TestCheckAbortsOnMalformedBind(t *testing.T) {
	path := writePage(t, `<div hx-state><i hx-bind="innerText"></i></div>`)
	_, err := execute(t, "check", path)
	if got := errors.FromError(err, "H199").Code; got != "H101" {
		t.Errorf("expected H101, got %s (%v)", got, err)
	}
}

func TestEngineFlag(t *testing.T) {
	path := writePage(t, `<div hx-state><p hx-bind="innerText=n:Number">2</p><b id="b" hx-effect="this.title = state(&quot;n&quot;) * 2.0"></b></div>`)

	out, err := execute(t, "--engine=cel", "render", path)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, `title="4"`) {
		t.Errorf("expected cel effect output, got:\n%s", out)
	}

	_, err = execute(t, "--engine=lua", "render", path)
	if he, ok := err.(*errors.HxError); !ok || he.Code != "H112" {
		t.Errorf("expected H112 for unknown engine, got %v", err)
	}
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "hxstate.yaml")
	if err := os.WriteFile(cfgPath, []byte("attrs:\n  bind: data-bind\n"), 0644); err != nil {
		t.Fatal(err)
	}
	path := writePage(t, `<div hx-state><p data-bind="innerText=n:Number">7</p></div>`)

	out, err := execute(t, "--config", cfgPath, "check", path)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.Contains(out, "bindings: 1") {
		t.Errorf("expected custom bind attribute to be used, got:\n%s", out)
	}
}

func TestParseAssignment(t *testing.T) {
	tests := []struct {
		in   string
		want assignment
	}{
		{"count.count=5", assignment{target: "count", state: "count", value: 5.0}},
		{"f.name=bob", assignment{target: "f", state: "name", value: "bob"}},
		{`f.name="bob"`, assignment{target: "f", state: "name", value: "bob"}},
		{"f.on=true", assignment{target: "f", state: "on", value: true}},
	}
	for _, tt := range tests {
		got, err := parseAssignment(tt.in)
		if err != nil {
			t.Errorf("parseAssignment(%q): %v", tt.in, err)
			continue
		}
		if diff := cmp.Diff(tt.want, got, cmp.AllowUnexported(assignment{})); diff != "" {
			t.Errorf("parseAssignment(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}

	for _, bad := range []string{"count", "count=5", ".x=1", "x.=1"} {
		if _, err := parseAssignment(bad); err == nil {
			t.Errorf("parseAssignment(%q): expected error", bad)
		}
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version", "--short")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if strings.TrimSpace(out) != "dev" {
		t.Errorf("expected dev, got %q", out)
	}
}
