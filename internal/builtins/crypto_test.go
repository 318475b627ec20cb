package builtins

import (
	"encoding/hex"
	"testing"

	"flan/internal/heap"
	"flan/internal/value"
)

type noRoots struct{}

func (noRoots) WalkRoots(func(value.Value)) {}

func TestHashRipemd160OfEmptyStringMatchesKnownVector(t *testing.T) {
	h := heap.New(noRoots{})
	s := h.AllocString("")

	got, err := builtinHashRipemd160(h, []value.Value{value.FromObject(s)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	digest := got.AsObject().(*value.String).Bytes
	want, _ := hex.DecodeString("9c1185a5c5e9fc54612808977ee8f548b2258d31")
	if hex.EncodeToString(digest) != hex.EncodeToString(want) {
		t.Fatalf("RIPEMD-160(\"\") = %x, want %x", digest, want)
	}
}

func TestEncodeDecodeBase64RoundTrips(t *testing.T) {
	h := heap.New(noRoots{})
	s := h.AllocString("flan")

	encoded, err := builtinEncodeBase64(h, []value.Value{value.FromObject(s)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	encodedStr := encoded.AsObject().(*value.String).Text()

	decoded, err := builtinDecodeBase64(h, []value.Value{encoded})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := decoded.AsObject().(*value.String).Text(); got != "flan" {
		t.Fatalf("round trip = %q (via %q), want %q", got, encodedStr, "flan")
	}
}

func TestDecodeBase64RejectsInvalidInput(t *testing.T) {
	h := heap.New(noRoots{})
	bad := h.AllocString("not valid base64!!")
	if _, err := builtinDecodeBase64(h, []value.Value{value.FromObject(bad)}); err == nil {
		t.Fatal("expected a DomainError decoding invalid base64")
	}
}

func TestArgStringRejectsNonStringArgument(t *testing.T) {
	if _, err := argString([]value.Value{value.Int(1)}, 0); err == nil {
		t.Fatal("expected a TypeMismatch for a non-string argument")
	}
}

func TestCryptProducesANonEmptyHash(t *testing.T) {
	h := heap.New(noRoots{})
	pass := h.AllocString("secret")
	salt := h.AllocString("ab")

	got, err := builtinCrypt(h, []value.Value{value.FromObject(pass), value.FromObject(salt)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AsObject().(*value.String).Text() == "" {
		t.Fatal("crypt(secret, ab) returned an empty hash")
	}
}
