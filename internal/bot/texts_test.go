package bot

import (
	"strings"
	"testing"

	"github.com/rohits-web03/sitedrop/internal/deploy"
	"github.com/rohits-web03/sitedrop/internal/session"
)

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{50 << 20, "50.0 MB"},
		{3 << 30, "3.0 GB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.in); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{59, "0m"},
		{3 * 60, "3m"},
		{2*3600 + 5*60, "2h 5m"},
		{3*86400 + 4*3600, "3d 4h"},
	}
	for _, tt := range tests {
		if got := formatUptime(tt.in); got != tt.want {
			t.Errorf("formatUptime(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderAdminApplied(t *testing.T) {
	got := renderAdminApplied(deploy.AdminApplied{Action: session.ActionRestore, Slug: "s", Accepted: true, Found: true})
	if !strings.Contains(got, "restored") {
		t.Errorf("got %q", got)
	}
	got = renderAdminApplied(deploy.AdminApplied{Action: session.ActionDelete, Slug: "s", Message: "gone"})
	if !strings.Contains(got, "Could not delete") || !strings.Contains(got, "gone") {
		t.Errorf("got %q", got)
	}
}

func TestUserStatsWithoutUsage(t *testing.T) {
	got := renderUserStats(deploy.UserStats{ActiveSites: 2})
	if strings.Contains(got, "Platform") {
		t.Errorf("usage section should be omitted: %q", got)
	}
}
