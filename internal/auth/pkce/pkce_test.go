package pkce

import (
	"encoding/base64"
	"testing"
)

func TestTokensDecodeToFullEntropy(t *testing.T) {
	for name, generate := range map[string]func() (string, error){
		"state":    NewState,
		"verifier": NewCodeVerifier,
	} {
		t.Run(name, func(t *testing.T) {
			value, err := generate()
			if err != nil {
				t.Fatalf("generate: %v", err)
			}
			decoded, err := base64.RawURLEncoding.DecodeString(value)
			if err != nil {
				t.Fatalf("decode %q: %v", value, err)
			}
			if len(decoded) < 32 {
				t.Fatalf("decoded entropy = %d bytes, want at least 32", len(decoded))
			}
		})
	}
}

func TestTokensAreUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 512; i++ {
		state, err := NewState()
		if err != nil {
			t.Fatalf("new state: %v", err)
		}
		verifier, err := NewCodeVerifier()
		if err != nil {
			t.Fatalf("new verifier: %v", err)
		}
		for _, value := range []string{state, verifier} {
			if _, dup := seen[value]; dup {
				t.Fatalf("duplicate token %q after %d generations", value, i)
			}
			seen[value] = struct{}{}
		}
	}
}
