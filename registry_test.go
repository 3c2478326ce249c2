package omf

import (
	"testing"

	"github.com/HK47196/go-omf/types"
)

func TestRegistryMostSpecificWins(t *testing.T) {
	// Use a type byte outside the registered universe to keep the global
	// tables clean for other tests.
	const testType = types.RecordType(0x01)
	defer delete(recordHandlers, testType)

	base := func(f *File, rec *Record) (Payload, error) { return &Theadr{ModuleName: "base"}, nil }
	gated := func(f *File, rec *Record) (Payload, error) { return &Theadr{ModuleName: "gated"}, nil }

	registerRecord(base, nil, testType)
	registerRecord(gated, []string{"easy_omf"}, testType)

	if got := lookupRecord(testType, NewFeatureSet()); got == nil {
		t.Fatal("no handler without features")
	} else if p, _ := got(nil, nil); p.(*Theadr).ModuleName != "base" {
		t.Error("default handler not selected without features")
	}

	if got := lookupRecord(testType, NewFeatureSet("easy_omf", "pharlap")); got == nil {
		t.Fatal("no handler with features")
	} else if p, _ := got(nil, nil); p.(*Theadr).ModuleName != "gated" {
		t.Error("feature-gated handler did not shadow the default")
	}
}

func TestRegistryDuplicatePanics(t *testing.T) {
	const testType = types.RecordType(0x03)
	defer delete(recordHandlers, testType)

	decode := func(f *File, rec *Record) (Payload, error) { return nil, nil }
	registerRecord(decode, []string{"x"}, testType)

	defer func() {
		if recover() == nil {
			t.Error("duplicate registration did not panic")
		}
	}()
	registerRecord(decode, []string{"x"}, testType)
}

func TestComentRegistryFeatureGate(t *testing.T) {
	const testClass = types.CommentClass(0x42)
	defer delete(comentHandlers, testClass)

	registerComent(func(f *File, com *Coment, text []byte) ComentContent {
		return &ComentComment{Comment: "default"}
	}, nil, testClass)
	registerComent(func(f *File, com *Coment, text []byte) ComentContent {
		return &ComentComment{Comment: "borland"}
	}, []string{"borland"}, testClass)

	h := lookupComent(testClass, NewFeatureSet("borland"))
	if got := h(nil, nil, nil).(*ComentComment).Comment; got != "borland" {
		t.Errorf("got %q, want the borland-gated handler", got)
	}

	h = lookupComent(testClass, NewFeatureSet())
	if got := h(nil, nil, nil).(*ComentComment).Comment; got != "default" {
		t.Errorf("got %q, want the default handler", got)
	}
}
