package redis

import "testing"

func TestKey_Namespaced(t *testing.T) {
	if got := key("revoked", "abc"); got != "cms:revoked:abc" {
		t.Fatalf("unexpected key %q", got)
	}
	if got := key("ratelimit", "10.0.0.1", "1700000000"); got != "cms:ratelimit:10.0.0.1:1700000000" {
		t.Fatalf("unexpected key %q", got)
	}
}
