package classify

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/marcelocantos/elevate/internal/operation"
)

func TestClassifyBuiltin(t *testing.T) {
	c := Default()
	tests := []struct {
		name string
		argv []string
		want operation.Tier
	}{
		{"empty", nil, operation.Basic},
		{"plain command", []string{"ls", "-la"}, operation.Basic},
		{"crontab", []string{"crontab", "-e"}, operation.Administrative},
		{"iptables any args", []string{"iptables", "-L", "/tmp/file"}, operation.Administrative},
		{"admin beats path", []string{"sysctl", "-p", "/etc/sysctl.conf"}, operation.Administrative},
		{"case insensitive admin", []string{"UFW", "enable"}, operation.Administrative},
		{"apt", []string{"apt", "install", "curl"}, operation.Elevated},
		{"chmod", []string{"chmod", "755", "/tmp/x"}, operation.Elevated},
		{"pip", []string{"pip", "install", "requests"}, operation.Elevated},
		{"case insensitive elevated", []string{"SystemCtl", "restart", "nginx"}, operation.Elevated},
		{"absolute path to tool", []string{"/usr/sbin/iptables", "-F"}, operation.Administrative},
		{"etc path", []string{"cat", "/etc/shadow"}, operation.Elevated},
		{"usr local path", []string{"cp", "bin", "/usr/local/bin/tool"}, operation.Elevated},
		{"opt path", []string{"ls", "/opt"}, operation.Elevated},
		{"var path", []string{"tail", "/var/log/syslog"}, operation.Elevated},
		{"root path", []string{"ls", "/root/.ssh"}, operation.Elevated},
		{"path as argv0", []string{"/opt/tool/run"}, operation.Elevated},
		{"usr not local", []string{"ls", "/usr/bin"}, operation.Basic},
		{"relative etc", []string{"cat", "etc/passwd"}, operation.Basic},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.Classify(tc.argv); got != tc.want {
				t.Errorf("Classify(%q) = %s, want %s", tc.argv, got, tc.want)
			}
		})
	}
}

func TestAdministrativeSetIgnoresArgs(t *testing.T) {
	c := Default()
	for _, name := range administrativeCommands {
		for _, rest := range [][]string{nil, {"-x"}, {"/home/u/file"}} {
			argv := append([]string{name}, rest...)
			if got := c.Classify(argv); got != operation.Administrative {
				t.Errorf("Classify(%q) = %s, want administrative", argv, got)
			}
		}
	}
}

func TestElevatedSet(t *testing.T) {
	c := Default()
	for _, name := range elevatedCommands {
		if got := c.Classify([]string{name, "arg"}); got != operation.Elevated {
			t.Errorf("Classify(%q) = %s, want elevated", name, got)
		}
	}
}

func TestPrivilegedRootsAtLeastElevated(t *testing.T) {
	c := Default()
	for _, root := range PrivilegedRoots {
		argv := []string{"touch", root + "/something"}
		if got := c.Classify(argv); got < operation.Elevated {
			t.Errorf("Classify(%q) = %s, want at least elevated", argv, got)
		}
	}
}

func TestConfiguredCommandsAndPaths(t *testing.T) {
	c, err := New(
		WithAdministrative("docker"),
		WithElevated("Brew"),
		WithPrivilegedPaths("/srv/**", "/data/*/secrets"),
	)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		argv []string
		want operation.Tier
	}{
		{[]string{"docker", "run", "x"}, operation.Administrative},
		{[]string{"brew", "install", "x"}, operation.Elevated},
		{[]string{"cat", "/srv/www/index.html"}, operation.Elevated},
		{[]string{"cat", "/data/team/secrets"}, operation.Elevated},
		{[]string{"cat", "/data/team/a/secrets"}, operation.Basic},
		{[]string{"apt", "update"}, operation.Elevated},
	}
	for _, tc := range tests {
		if got := c.Classify(tc.argv); got != tc.want {
			t.Errorf("Classify(%q) = %s, want %s", tc.argv, got, tc.want)
		}
	}
}

func TestInvalidGlob(t *testing.T) {
	if _, err := New(WithPrivilegedPaths("/srv/[")); err == nil {
		t.Fatal("expected error for invalid glob")
	}
}

func writeScript(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "classify.star")
	if err := os.WriteFile(path, []byte(src), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestScriptRaisesTier(t *testing.T) {
	path := writeScript(t, `
def classify(argv):
    if len(argv) > 0 and argv[0] == "docker":
        return ADMINISTRATIVE
    if "--system" in argv:
        return ELEVATED
    if len(argv) > 0 and argv[0] == "chmod":
        return BASIC
    return None
`)
	c, err := New(WithScript(path))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		argv []string
		want operation.Tier
	}{
		{[]string{"docker", "ps"}, operation.Administrative},
		{[]string{"git", "config", "--system", "x"}, operation.Elevated},
		{[]string{"ls"}, operation.Basic},
		// Scripts cannot lower a built-in classification.
		{[]string{"chmod", "755", "x"}, operation.Elevated},
		{nil, operation.Basic},
	}
	for _, tc := range tests {
		if got := c.Classify(tc.argv); got != tc.want {
			t.Errorf("Classify(%q) = %s, want %s", tc.argv, got, tc.want)
		}
	}
}

func TestScriptErrorFallsBack(t *testing.T) {
	path := writeScript(t, `
def classify(argv):
    return 1 // 0
`)
	c, err := New(WithScript(path))
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Classify([]string{"apt", "update"}); got != operation.Elevated {
		t.Errorf("got %s, want elevated", got)
	}
	if got := c.Classify([]string{"ls"}); got != operation.Basic {
		t.Errorf("got %s, want basic", got)
	}
}

func TestScriptBadReturn(t *testing.T) {
	s, err := loadScript("inline.star", `
def classify(argv):
    return "root"
`)
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.Eval([]string{"x"}); err == nil {
		t.Fatal("expected error for unknown tier name")
	}
}

func TestScriptWithoutClassify(t *testing.T) {
	path := writeScript(t, "x = 1\n")
	if _, err := New(WithScript(path)); err == nil {
		t.Fatal("expected error for missing classify function")
	}
}

func TestScriptMissingFile(t *testing.T) {
	if _, err := LoadScript(filepath.Join(t.TempDir(), "nope.star")); err == nil {
		t.Fatal("expected error for missing script")
	}
}

func TestCommands(t *testing.T) {
	c, err := New(WithAdministrative("zpool"))
	if err != nil {
		t.Fatal(err)
	}
	admin := c.Commands(operation.Administrative)
	if !slices.Contains(admin, "zpool") || !slices.Contains(admin, "ufw") || !slices.IsSorted(admin) {
		t.Errorf("administrative = %v", admin)
	}
	if !slices.Contains(c.Commands(operation.Elevated), "chmod") {
		t.Error("chmod missing from elevated")
	}
	if c.Commands(operation.Basic) != nil {
		t.Error("basic should have no list")
	}
}
