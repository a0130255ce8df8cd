package cmd

import (
	"bytes"
	"runtime"
	"strings"
	"testing"
)

func TestVersionOutput(t *testing.T) {
	old := version
	t.Cleanup(func() { version = old })
	version = "v1.4.0"

	var out bytes.Buffer
	versionCmd.SetOut(&out)
	t.Cleanup(func() { versionCmd.SetOut(nil) })
	versionCmd.Run(versionCmd, nil)

	got := out.String()
	if !strings.HasPrefix(got, "studyloop v1.4.0 (") {
		t.Errorf("output = %q, want studyloop v1.4.0 prefix", got)
	}
	if !strings.Contains(got, runtime.GOOS+"/"+runtime.GOARCH) {
		t.Errorf("output = %q, want platform", got)
	}
}

func TestBuildVersionFallback(t *testing.T) {
	old := version
	t.Cleanup(func() { version = old })
	version = ""

	if got := buildVersion(); got == "" {
		t.Error("buildVersion() is empty without ldflags")
	}
}
