package engine

import (
	"reflect"
	"testing"
)

type nullEngine struct{}

func (nullEngine) Open(string) (Document, error)  { return nil, nil }
func (nullEngine) NewDocument() (Document, error) { return nil, nil }

func factory() (Engine, error) { return nullEngine{}, nil }

func resetBackends() {
	backendsMu.Lock()
	backends = make(map[string]func() (Engine, error))
	backendsMu.Unlock()
}

func TestBackendRegistry(t *testing.T) {
	resetBackends()
	defer resetBackends()

	if _, err := Backend(""); err == nil {
		t.Error("Backend(\"\") succeeded with nothing registered")
	}

	RegisterBackend("null", factory)

	// Sole backend is the default.
	eng, err := Backend("")
	if err != nil {
		t.Fatalf("Backend(\"\") error: %v", err)
	}
	if _, ok := eng.(nullEngine); !ok {
		t.Errorf("Backend(\"\") = %T, want nullEngine", eng)
	}

	if _, err := Backend("null"); err != nil {
		t.Errorf("Backend(\"null\") error: %v", err)
	}
	if _, err := Backend("missing"); err == nil {
		t.Error("Backend(\"missing\") succeeded")
	}

	RegisterBackend("other", factory)
	if _, err := Backend(""); err == nil {
		t.Error("Backend(\"\") succeeded with two backends registered")
	}
	if got := Backends(); !reflect.DeepEqual(got, []string{"null", "other"}) {
		t.Errorf("Backends() = %v, want sorted names", got)
	}
}

func TestRegisterBackendDuplicatePanics(t *testing.T) {
	resetBackends()
	defer resetBackends()

	RegisterBackend("dup", factory)
	defer func() {
		if recover() == nil {
			t.Error("duplicate registration did not panic")
		}
	}()
	RegisterBackend("dup", factory)
}
