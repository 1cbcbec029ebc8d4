package consent

import (
	"context"
	"errors"
	"testing"

	"github.com/marcelocantos/elevate/internal/operation"
)

func TestGuardRefusesCatastrophicCommands(t *testing.T) {
	blocked := [][]string{
		{"rm", "-rf", "/"},
		{"rm", "-r", "--", "/"},
		{"rm", "-Rf", "."},
		{"rm", "--recursive", ".."},
		{"rm", "-rf", "~"},
		{"rm", "-rf", "~/"},
		{"sudo", "rm", "-rf", "/"},
		{"/bin/chmod", "-R", "777", "/"},
		{"chown", "-R", "nobody", "//"},
	}
	for _, argv := range blocked {
		asked := false
		g := Guard{Next: Func(func(context.Context, operation.Operation) (bool, error) {
			asked = true
			return true, nil
		})}
		ok, err := g.Approve(context.Background(), operation.New("", operation.Elevated, argv...))
		var refusal *Refusal
		if ok || !errors.As(err, &refusal) {
			t.Errorf("%v: ok = %v err = %v", argv, ok, err)
		}
		if asked {
			t.Errorf("%v: inner gate consulted", argv)
		}
	}
}

func TestGuardPassesEverythingElse(t *testing.T) {
	allowed := [][]string{
		{"rm", "/tmp/file"},
		{"rm", "-rf", "/tmp/build"},
		{"rm", "-f", "/"},
		{"chmod", "755", "/"},
		{"rm", "-rf", "~/scratch"},
		{"apt", "install", "-y", "curl"},
		{},
	}
	for _, argv := range allowed {
		ok, err := Guard{Next: AlwaysAllow}.Approve(context.Background(), operation.New("", operation.Elevated, argv...))
		if !ok || err != nil {
			t.Errorf("%v: ok = %v err = %v", argv, ok, err)
		}
	}
	ok, _ := Guard{Next: AlwaysDeny}.Approve(context.Background(), operation.New("", operation.Elevated, "apt", "update"))
	if ok {
		t.Error("inner deny ignored")
	}
}
