package version

import (
	"strings"
	"testing"
)

func TestTag(t *testing.T) {
	if got, want := Tag(), "v"+Version; got != want {
		t.Errorf("Tag() = %q, want %q", got, want)
	}
}

func TestVerifyTag(t *testing.T) {
	tests := []struct {
		name    string
		tag     string
		wantErr string
	}{
		{name: "matching tag", tag: "v" + Version},
		{name: "empty tag", tag: "", wantErr: "empty"},
		{name: "missing prefix", tag: Version, wantErr: "missing the v prefix"},
		{name: "wrong version", tag: "v999.0.0", wantErr: "does not match project version"},
		{name: "double prefix", tag: "vv" + Version, wantErr: "does not match project version"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyTag(tt.tag)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("VerifyTag(%q) = %v, want nil", tt.tag, err)
				}
				return
			}
			if err == nil {
				t.Fatalf("VerifyTag(%q) = nil, want error containing %q", tt.tag, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("VerifyTag(%q) = %q, want error containing %q", tt.tag, err, tt.wantErr)
			}
		})
	}
}

func TestVerifyTagDiagnosticNamesBothValues(t *testing.T) {
	err := VerifyTag("v999.0.0")
	if err == nil {
		t.Fatal("expected error for mismatched tag")
	}
	msg := err.Error()
	if !strings.Contains(msg, "v999.0.0") || !strings.Contains(msg, Version) {
		t.Errorf("diagnostic %q should name both the tag and the project version", msg)
	}
}

func TestFullIncludesVersion(t *testing.T) {
	if !strings.Contains(Full(), Version) {
		t.Errorf("Full() = %q, want it to contain %q", Full(), Version)
	}
}
