package mypenweb

import (
	"testing"
	"time"
)

func TestLoginLimiterBlocksAfterMax(t *testing.T) {
	l := NewLoginLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !l.Check("1.2.3.4") {
			t.Fatalf("Check blocked after %d recorded attempts, max is 3", i)
		}
		l.Record("1.2.3.4")
	}
	if l.Check("1.2.3.4") {
		t.Error("Check allowed after max attempts")
	}
	if !l.Check("5.6.7.8") {
		t.Error("Check blocked an unrelated IP")
	}
}

func TestLoginLimiterWindowExpiry(t *testing.T) {
	l := NewLoginLimiter(1, 10*time.Millisecond)

	l.Record("1.2.3.4")
	if l.Check("1.2.3.4") {
		t.Fatal("Check allowed while attempt is fresh")
	}
	time.Sleep(20 * time.Millisecond)
	if !l.Check("1.2.3.4") {
		t.Error("Check blocked after window expired")
	}
}
