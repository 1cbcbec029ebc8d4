package operation

import (
	"encoding/json"
	"testing"
)

func TestTierOrdering(t *testing.T) {
	tests := []struct {
		name   string
		a, b   Tier
		expect bool
	}{
		{"administrative > elevated", Administrative, Elevated, true},
		{"administrative > basic", Administrative, Basic, true},
		{"elevated > basic", Elevated, Basic, true},
		{"basic < elevated", Basic, Elevated, false},
		{"same tier", Elevated, Elevated, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Exceeds(tc.b); got != tc.expect {
				t.Errorf("%s.Exceeds(%s) = %v, want %v", tc.a, tc.b, got, tc.expect)
			}
		})
	}
	if Max(Basic, Administrative) != Administrative || Max(Elevated, Basic) != Elevated {
		t.Error("Max returned the lower tier")
	}
}

func TestParseTier(t *testing.T) {
	for _, tier := range []Tier{Basic, Elevated, Administrative} {
		got, err := ParseTier(tier.String())
		if err != nil {
			t.Fatalf("ParseTier(%q): %v", tier, err)
		}
		if got != tier {
			t.Errorf("ParseTier(%q) = %v", tier, got)
		}
	}
	if _, err := ParseTier("root"); err == nil {
		t.Error("expected error for unknown tier")
	}
}

func TestParseOutcome(t *testing.T) {
	for _, o := range []Outcome{Success, PermissionDenied, EscalationFailed, OperationFailed, UserCancelled} {
		got, err := ParseOutcome(o.String())
		if err != nil {
			t.Fatalf("ParseOutcome(%q): %v", o, err)
		}
		if got != o {
			t.Errorf("ParseOutcome(%q) = %v", o, got)
		}
	}
	if _, err := ParseOutcome("crashed"); err == nil {
		t.Error("expected error for unknown outcome")
	}
}

func TestTierJSONRejectsUnknown(t *testing.T) {
	var v struct {
		Tier Tier `json:"tier"`
	}
	if err := json.Unmarshal([]byte(`{"tier":"superuser"}`), &v); err == nil {
		t.Fatal("expected unmarshal error")
	}
	if err := json.Unmarshal([]byte(`{"tier":"administrative"}`), &v); err != nil {
		t.Fatal(err)
	}
	if v.Tier != Administrative {
		t.Errorf("got %v", v.Tier)
	}
}

func TestNewDefaults(t *testing.T) {
	op := New("fix perms", Elevated, "chmod", "755", "/tmp/x")
	if !op.RequiresApproval {
		t.Error("expected approval to be required by default")
	}
	if op.Timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", op.Timeout, DefaultTimeout)
	}
	if got := op.CommandLine(); got != "chmod 755 /tmp/x" {
		t.Errorf("CommandLine() = %q", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	op := New("x", Basic, "echo", "hi")
	op.Env = map[string]string{"A": "1"}
	c := op.Clone()
	c.Argv[1] = "bye"
	c.Env["A"] = "2"
	if op.Argv[1] != "hi" || op.Env["A"] != "1" {
		t.Error("clone shares state with the original")
	}
}

func TestParseRequest(t *testing.T) {
	for _, s := range []string{"", "auto"} {
		if _, auto, err := ParseRequest(s); err != nil || !auto {
			t.Errorf("%q: auto = %v err = %v", s, auto, err)
		}
	}
	tier, auto, err := ParseRequest("administrative")
	if err != nil || auto || tier != Administrative {
		t.Errorf("administrative: %v %v %v", tier, auto, err)
	}
	if _, _, err := ParseRequest("root"); err == nil {
		t.Error("expected error")
	}
}
