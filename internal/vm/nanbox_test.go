//go:build nanbox

package vm

import (
	"runtime"
	"testing"
)

// TestNanboxObjectRoundTrip exercises the nanbox backend's refs side table
// (value_nanbox.go) under both our own stress-GC and Go's real collector,
// confirming a boxed Value still reads back its exact Obj after garbage
// has been allocated and collected around it on both sides. Run with
// `go test -tags nanbox ./internal/vm/...`.
func TestNanboxObjectRoundTrip(t *testing.T) {
	v := newBareVM()
	v.SetStressGC(true)

	kept := v.newString("kept-alive")
	val := ObjValue(kept)
	// Root the value on the VM stack: an unrooted object is swept by our own
	// collector, which also drops its refs entry.
	v.push(val)

	for i := 0; i < 200; i++ {
		v.newString("garbage")
		if i%20 == 0 {
			runtime.GC()
		}
	}

	got, ok := val.AsObject().(*ObjString)
	if !ok || got != kept || got.Chars != "kept-alive" {
		t.Fatalf("expected the boxed Value to still read back %q, got %v", "kept-alive", got)
	}
	v.pop()
}

// TestNanboxRunsEndToEndScenarios re-runs spec.md §8's scenario table under
// the nanbox backend specifically, since scenarios_test.go's table is
// backend-agnostic and only actually exercises this backend when the
// nanbox build tag is present.
func TestNanboxRunsEndToEndScenarios(t *testing.T) {
	for _, scenario := range endToEndScenarios {
		t.Run(scenario.name, func(t *testing.T) {
			out, result := runScript(t, scenario.source, true)
			if result != scenario.result {
				t.Fatalf("expected result %v, got %v", scenario.result, result)
			}
			if out != scenario.output {
				t.Fatalf("expected output %q, got %q", scenario.output, out)
			}
		})
	}
}
