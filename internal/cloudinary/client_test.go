package cloudinary

import "testing"

func TestSignExcludesAPIKeyAndFile(t *testing.T) {
	c := New("demo", "key123", "secret", "portal")

	withKey := c.sign(map[string]string{"timestamp": "1700000000", "api_key": "key123", "folder": "portal"})
	withoutKey := c.sign(map[string]string{"timestamp": "1700000000", "folder": "portal"})
	if withKey != withoutKey {
		t.Error("api_key leaked into the signature payload")
	}

	withFile := c.sign(map[string]string{"timestamp": "1700000000", "file": "data:..."})
	withoutFile := c.sign(map[string]string{"timestamp": "1700000000"})
	if withFile != withoutFile {
		t.Error("file leaked into the signature payload")
	}
}

func TestSignDependsOnSecret(t *testing.T) {
	a := New("demo", "k", "secret-a", "")
	b := New("demo", "k", "secret-b", "")
	params := map[string]string{"timestamp": "1700000000"}
	if a.sign(params) == b.sign(params) {
		t.Error("signature independent of API secret")
	}
}

func TestSignIsOrderIndependent(t *testing.T) {
	c := New("demo", "k", "s", "")
	// Maps iterate randomly; the signature sorts pairs, so repeated calls
	// must agree.
	params := map[string]string{"timestamp": "1700000000", "folder": "portal", "public_id": "x"}
	first := c.sign(params)
	for i := 0; i < 10; i++ {
		if got := c.sign(params); got != first {
			t.Fatalf("unstable signature: %s vs %s", got, first)
		}
	}
}
