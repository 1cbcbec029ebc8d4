package ops

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/marcelocantos/elevate/internal/escalate"
	"github.com/marcelocantos/elevate/internal/operation"
)

// fakeExec records operations and fails any whose argv[0] is in fail.
type fakeExec struct {
	ops  []operation.Operation
	fail map[string]bool
	// onExec, when set, runs before the result is produced.
	onExec func(op operation.Operation)
}

func (f *fakeExec) Execute(_ context.Context, op operation.Operation) escalate.Result {
	f.ops = append(f.ops, op)
	if f.onExec != nil {
		f.onExec(op)
	}
	outcome := operation.Success
	if f.fail[op.Argv[0]] {
		outcome = operation.OperationFailed
	}
	return escalate.Result{
		Result: operation.Result{Outcome: outcome, Message: op.CommandLine()},
		Tier:   op.Tier,
	}
}

func (f *fakeExec) argvs() [][]string {
	var out [][]string
	for _, op := range f.ops {
		out = append(out, op.Argv)
	}
	return out
}

func TestInstallPackage(t *testing.T) {
	tests := []struct {
		manager string
		argv    []string
	}{
		{"", []string{"pip", "install", "requests"}},
		{"pip", []string{"pip", "install", "requests"}},
		{"conda", []string{"conda", "install", "-y", "requests"}},
	}
	for _, tc := range tests {
		f := &fakeExec{}
		res, err := New(f, "alice").InstallPackage(context.Background(), "requests", tc.manager)
		if err != nil {
			t.Fatalf("%q: %v", tc.manager, err)
		}
		if !res.OK() || len(f.ops) != 1 {
			t.Fatalf("%q: result = %+v ops = %d", tc.manager, res.Result, len(f.ops))
		}
		op := f.ops[0]
		if !slices.Equal(op.Argv, tc.argv) || op.Tier != operation.Elevated || op.Timeout != 600*time.Second {
			t.Errorf("%q: op = %+v", tc.manager, op)
		}
		if !op.RequiresApproval {
			t.Errorf("%q: install must require approval", tc.manager)
		}
	}
}

func TestInstallPackageRejectsUnknownManager(t *testing.T) {
	f := &fakeExec{}
	if _, err := New(f, "").InstallPackage(context.Background(), "requests", "brew"); err == nil {
		t.Fatal("expected error")
	}
	if len(f.ops) != 0 {
		t.Error("nothing should run")
	}
}

func TestSetPermissions(t *testing.T) {
	f := &fakeExec{}
	res, err := New(f, "").SetPermissions(context.Background(), "/etc/app.conf", "640", "root:app")
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{{"chmod", "640", "/etc/app.conf"}, {"chown", "root:app", "/etc/app.conf"}}
	if !slices.EqualFunc(f.argvs(), want, slices.Equal) {
		t.Errorf("argvs = %v", f.argvs())
	}
	if !res.OK() || res.Message != "Permissions updated successfully" {
		t.Errorf("result = %+v", res.Result)
	}
}

func TestSetPermissionsStopsAtFirstFailure(t *testing.T) {
	f := &fakeExec{fail: map[string]bool{"chmod": true}}
	res, err := New(f, "").SetPermissions(context.Background(), "/x", "755", "bob")
	if err != nil {
		t.Fatal(err)
	}
	if res.Outcome != operation.OperationFailed || len(f.ops) != 1 {
		t.Errorf("outcome = %s ops = %d", res.Outcome, len(f.ops))
	}

	if _, err := New(&fakeExec{}, "").SetPermissions(context.Background(), "/x", "", ""); err == nil {
		t.Error("expected error when nothing to change")
	}
}

func TestRunScript(t *testing.T) {
	script := filepath.Join(t.TempDir(), "job.py")
	if err := os.WriteFile(script, []byte("print('hi')\n"), 0600); err != nil {
		t.Fatal(err)
	}
	f := &fakeExec{}
	res := New(f, "").RunScript(context.Background(), script, []string{"--fast"}, "")
	if !res.OK() {
		t.Fatalf("result = %+v", res.Result)
	}
	op := f.ops[0]
	if !slices.Equal(op.Argv, []string{"python3", script, "--fast"}) || !op.AutoClassify {
		t.Errorf("op = %+v", op)
	}
	if op.Timeout != operation.DefaultTimeout {
		t.Errorf("timeout = %v", op.Timeout)
	}
}

func TestRunScriptUnreadable(t *testing.T) {
	f := &fakeExec{}
	missing := filepath.Join(t.TempDir(), "missing.sh")
	res := New(f, "").RunScript(context.Background(), missing, nil, "sh")
	if res.Outcome != operation.PermissionDenied || !strings.Contains(res.Message, missing) {
		t.Errorf("result = %+v", res.Result)
	}
	if len(f.ops) != 0 {
		t.Error("unreadable script must not run")
	}
}

func TestInstallRequirements(t *testing.T) {
	dir := t.TempDir()
	req := filepath.Join(dir, "requirements.txt")
	if err := os.WriteFile(req, []byte("requests\n"), 0600); err != nil {
		t.Fatal(err)
	}
	f := &fakeExec{}
	if _, err := New(f, "").InstallRequirements(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(f.ops[0].Argv, []string{"pip", "install", "-r", req}) || f.ops[0].Timeout != InstallTimeout {
		t.Errorf("op = %+v", f.ops[0])
	}

	f = &fakeExec{}
	if _, err := New(f, "").InstallRequirements(context.Background(), filepath.Join(dir, "nope.txt")); err == nil {
		t.Error("expected error for missing file")
	}
	if len(f.ops) != 0 {
		t.Error("nothing should run")
	}
}

func TestCreateService(t *testing.T) {
	var unit string
	var staged string
	f := &fakeExec{onExec: func(op operation.Operation) {
		if op.Argv[0] == "cp" {
			staged = op.Argv[1]
			data, err := os.ReadFile(staged)
			if err != nil {
				t.Errorf("staged unit unreadable: %v", err)
			}
			unit = string(data)
		}
	}}
	o := New(f, "alice")
	o.ServiceDir = "/etc/systemd/system"
	res, err := o.CreateService(context.Background(), "agent", "/srv/agent/main.py")
	if err != nil {
		t.Fatal(err)
	}
	if !res.OK() {
		t.Fatalf("result = %+v", res.Result)
	}
	want := [][]string{
		{"cp", staged, "/etc/systemd/system/agent.service"},
		{"systemctl", "daemon-reload"},
		{"systemctl", "enable", "agent"},
	}
	if !slices.EqualFunc(f.argvs(), want, slices.Equal) {
		t.Errorf("argvs = %v", f.argvs())
	}
	for _, op := range f.ops {
		if op.Tier != operation.Administrative {
			t.Errorf("%v tier = %s", op.Argv, op.Tier)
		}
	}
	for _, line := range []string{
		"User=alice",
		"WorkingDirectory=/srv/agent",
		"ExecStart=/usr/bin/python3 /srv/agent/main.py",
		"WantedBy=multi-user.target",
	} {
		if !strings.Contains(unit, line) {
			t.Errorf("unit missing %q:\n%s", line, unit)
		}
	}
	if _, err := os.Stat(staged); !os.IsNotExist(err) {
		t.Error("staged unit was not cleaned up")
	}
}

func TestCreateServiceStopsWhenCopyFails(t *testing.T) {
	f := &fakeExec{fail: map[string]bool{"cp": true}}
	res, err := New(f, "").CreateService(context.Background(), "agent", "/srv/agent/main.py")
	if err != nil {
		t.Fatal(err)
	}
	if res.OK() || len(f.ops) != 1 {
		t.Errorf("outcome = %s ops = %d", res.Outcome, len(f.ops))
	}
}

func TestCreateServiceRejectsBadNames(t *testing.T) {
	for _, name := range []string{"", "../evil", "a/b", ".hidden"} {
		if _, err := New(&fakeExec{}, "").CreateService(context.Background(), name, "/x.py"); err == nil {
			t.Errorf("expected error for %q", name)
		}
	}
}
