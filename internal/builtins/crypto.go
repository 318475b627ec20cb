package builtins

import (
	"encoding/base64"

	gocrypt "github.com/amoghe/go-crypt"
	sergeycrypt "github.com/sergeymakinen/go-crypt"
	"golang.org/x/crypto/ripemd160"

	"flan/internal/heap"
	"flan/internal/value"
	"flan/internal/vmerror"
)

func argString(args []value.Value, i int) (string, error) {
	if i >= len(args) || !args[i].IsObject() {
		return "", vmerror.New(vmerror.TypeMismatch, "argument %d must be a string", i)
	}
	s, ok := args[i].AsObject().(*value.String)
	if !ok {
		return "", vmerror.New(vmerror.TypeMismatch, "argument %d must be a string", i)
	}
	return s.Text(), nil
}

// builtinHashRipemd160 implements hash_ripemd160(s) -> str, mirroring
// barn/builtins/crypto.go's getHasher("ripemd160") path but fixed to one
// algorithm since this VM's call hooks take a fixed arity.
func builtinHashRipemd160(h *heap.Heap, args []value.Value) (value.Value, error) {
	s, err := argString(args, 0)
	if err != nil {
		return value.Empty, err
	}
	digester := ripemd160.New()
	digester.Write([]byte(s))
	result := h.AllocString(string(digester.Sum(nil)))
	return value.FromObject(result), nil
}

// builtinCrypt implements crypt(s, salt) -> str via go-crypt's traditional
// DES/MD5/SHA2-crypt dispatch (algorithm selected by the salt's prefix,
// exactly as glibc's crypt(3) and barn/builtins/crypto.go's builtinCrypt
// do), falling back to sergeymakinen/go-crypt's implementations for salt
// prefixes go-crypt itself doesn't recognize.
func builtinCrypt(h *heap.Heap, args []value.Value) (value.Value, error) {
	pass, err := argString(args, 0)
	if err != nil {
		return value.Empty, err
	}
	salt, err := argString(args, 1)
	if err != nil {
		return value.Empty, err
	}

	result, cryptErr := gocrypt.Crypt(pass, salt)
	if cryptErr != nil {
		result, cryptErr = sergeycrypt.Crypt(pass, salt)
	}
	if cryptErr != nil {
		return value.Empty, vmerror.New(vmerror.DomainError, "crypt failed: %v", cryptErr)
	}
	return value.FromObject(h.AllocString(result)), nil
}

// builtinEncodeBase64 implements encode_base64(s) -> str, same stdlib
// codec barn/builtins/crypto.go uses.
func builtinEncodeBase64(h *heap.Heap, args []value.Value) (value.Value, error) {
	s, err := argString(args, 0)
	if err != nil {
		return value.Empty, err
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(s))
	return value.FromObject(h.AllocString(encoded)), nil
}

// builtinDecodeBase64 implements decode_base64(s) -> str.
func builtinDecodeBase64(h *heap.Heap, args []value.Value) (value.Value, error) {
	s, err := argString(args, 0)
	if err != nil {
		return value.Empty, err
	}
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return value.Empty, vmerror.New(vmerror.DomainError, "invalid base64 input: %v", err)
	}
	return value.FromObject(h.AllocString(string(decoded))), nil
}
