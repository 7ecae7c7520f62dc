package reflector

import (
	"testing"
)

type testStruct struct {
	A int
}

func TestTypeInfoFor(t *testing.T) {
	ti := TypeInfoFor[testStruct]()
	if ti.Name != "github.com/codewandler/gensrv-go/internal/reflector.testStruct" {
		t.Fatalf("unexpected name: %s", ti.Name)
	}
}

func TestTypeInfoOf(t *testing.T) {
	ti := TypeInfoOf(testStruct{})
	if ti.Name != "github.com/codewandler/gensrv-go/internal/reflector.testStruct" {
		t.Fatalf("unexpected name: %s", ti.Name)
	}

	// pointer follows one level of indirection
	tp := TypeInfoOf(&testStruct{})
	if tp.Name != ti.Name {
		t.Fatalf("pointer name mismatch: %s != %s", tp.Name, ti.Name)
	}
}

func TestTypeInfoOf_unnamed(t *testing.T) {
	ti := TypeInfoOf(map[string]any{})
	if ti.Name != "map[string]interface {}" {
		t.Fatalf("unexpected name for unnamed type: %s", ti.Name)
	}
}

func TestTypeInfoOf_cached(t *testing.T) {
	a := TypeInfoOf(testStruct{})
	b := TypeInfoOf(testStruct{})
	if a != b {
		t.Fatal("expected cached TypeInfo to be identical")
	}
}
