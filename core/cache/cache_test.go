package cache

import (
	"testing"
	"time"
)

func TestSetGetDelete(t *testing.T) {
	c := NewCache()
	c.Set("k", "v", 0)
	if v, ok := c.Get("k"); !ok || v != "v" {
		t.Errorf("Get = %v, %v", v, ok)
	}
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("value survived Delete")
	}
}

func TestTTLExpiry(t *testing.T) {
	c := NewCache()
	c.Set("k", "v", 1)
	if _, ok := c.Get("k"); !ok {
		t.Fatal("value expired immediately")
	}
	time.Sleep(1100 * time.Millisecond)
	if _, ok := c.Get("k"); ok {
		t.Error("value did not expire")
	}
}

func TestCompositeKeys(t *testing.T) {
	c := NewCache()
	c.SetN([]interface{}{"stats", uint(7), "2026-09-01"}, 42, 0)
	if v, ok := c.GetN("stats", uint(7), "2026-09-01"); !ok || v != 42 {
		t.Errorf("GetN = %v, %v", v, ok)
	}
	if _, ok := c.GetN("stats", uint(8), "2026-09-01"); ok {
		t.Error("composite key collision")
	}
	c.DeleteN("stats", uint(7), "2026-09-01")
	if _, ok := c.GetN("stats", uint(7), "2026-09-01"); ok {
		t.Error("value survived DeleteN")
	}
}

func TestGetInstanceSingleton(t *testing.T) {
	if GetInstance() != GetInstance() {
		t.Error("GetInstance not a singleton")
	}
}
