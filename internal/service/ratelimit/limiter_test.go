package ratelimit

import "testing"

func TestLimiterExhaustsBucket(t *testing.T) {
	l := New()
	for i := 0; i < 2; i++ {
		if !l.Allow("client:train", 2, 0.0001) {
			t.Fatalf("call %d rejected with tokens remaining", i+1)
		}
	}
	if l.Allow("client:train", 2, 0.0001) {
		t.Fatalf("allowed past capacity")
	}
}

func TestLimiterKeysAreIndependent(t *testing.T) {
	l := New()
	if !l.Allow("a:backtest", 1, 0.0001) {
		t.Fatalf("first key rejected")
	}
	if l.Allow("a:backtest", 1, 0.0001) {
		t.Fatalf("first key not exhausted")
	}
	if !l.Allow("b:backtest", 1, 0.0001) {
		t.Fatalf("second key throttled by first")
	}
}
