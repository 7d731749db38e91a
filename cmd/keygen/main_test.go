package main

import (
	"errors"
	"strings"
	"testing"
)

func TestResolveTarget(t *testing.T) {
	if got := resolveTarget(nil); got != "all" {
		t.Fatalf("expected all, got %s", got)
	}
	if got := resolveTarget([]string{"signer"}); got != "signer" {
		t.Fatalf("expected signer, got %s", got)
	}
}

func TestEmit(t *testing.T) {
	var out strings.Builder
	origPrintf, origGen := printfFn, generateKeyFn
	t.Cleanup(func() { printfFn, generateKeyFn = origPrintf, origGen })

	printfFn = func(format string, a ...interface{}) (int, error) {
		out.WriteString(format)
		for _, v := range a {
			out.WriteString(v.(string))
		}
		return 0, nil
	}

	emit("SIGNER_TOKEN_KEY", 32)
	if !strings.Contains(out.String(), "SIGNER_TOKEN_KEY") {
		t.Fatalf("key name missing from output: %s", out.String())
	}
}

func TestEmitFailure(t *testing.T) {
	origGen, origFatal := generateKeyFn, fatalfFn
	t.Cleanup(func() { generateKeyFn, fatalfFn = origGen, origFatal })

	generateKeyFn = func(int) (string, error) { return "", errors.New("entropy exhausted") }
	fatal := false
	fatalfFn = func(string, ...interface{}) { fatal = true }

	emit("JWT_SECRET", 32)
	if !fatal {
		t.Fatal("expected fatal on generator failure")
	}
}
