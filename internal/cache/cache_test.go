package cache

import (
	"strings"
	"testing"
	"time"
)

func TestKey_DeterministicAndPrefixed(t *testing.T) {
	a := Key([]byte("record"))
	b := Key([]byte("record"))
	if a != b {
		t.Errorf("Same content must produce the same key: %s vs %s", a, b)
	}
	if !strings.HasPrefix(a, "hkp:v1:") {
		t.Errorf("Key missing version prefix: %s", a)
	}
	if a == Key([]byte("record2")) {
		t.Error("Different content must produce different keys")
	}
}

func TestMemoryCache_RoundTrip(t *testing.T) {
	c := NewMemoryCache(time.Minute, time.Minute)

	if _, found := c.Get("missing"); found {
		t.Error("Unexpected hit for missing key")
	}

	if err := c.Set("k", []byte("summary"), 0); err != nil {
		t.Fatal(err)
	}
	val, found := c.Get("k")
	if !found || string(val) != "summary" {
		t.Errorf("Expected summary, got %q (found=%v)", val, found)
	}

	if err := c.Delete("k"); err != nil {
		t.Fatal(err)
	}
	if _, found := c.Get("k"); found {
		t.Error("Deleted key still present")
	}
}

func TestDiskCache_RoundTrip(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)

	if err := c.Set("k", []byte("summary"), 0); err != nil {
		t.Fatal(err)
	}
	val, found := c.Get("k")
	if !found || string(val) != "summary" {
		t.Errorf("Expected summary, got %q (found=%v)", val, found)
	}
}

func TestDiskCache_Expiry(t *testing.T) {
	c := NewDiskCache(t.TempDir(), time.Hour)

	if err := c.Set("k", []byte("stale"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, found := c.Get("k"); found {
		t.Error("Expired entry must miss")
	}
}

func TestLayeredCache_PromotesDiskHits(t *testing.T) {
	dir := t.TempDir()

	// Seed only the disk layer, then read through a fresh layered cache
	if err := NewDiskCache(dir, time.Hour).Set("k", []byte("persisted"), 0); err != nil {
		t.Fatal(err)
	}

	c := NewLayeredCache(time.Minute, dir, time.Hour)
	val, found := c.Get("k")
	if !found || string(val) != "persisted" {
		t.Fatalf("Expected disk hit, got %q (found=%v)", val, found)
	}

	// Promotion: the memory layer now answers even after the disk copy goes
	if err := NewDiskCache(dir, time.Hour).Delete("k"); err != nil {
		t.Fatal(err)
	}
	if _, found := c.Get("k"); !found {
		t.Error("Expected promoted memory hit after disk delete")
	}
}

func TestLayeredCache_ClearEmptiesBothLayers(t *testing.T) {
	c := NewLayeredCache(time.Minute, t.TempDir(), time.Hour)

	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, found := c.Get("k"); found {
		t.Error("Cleared key still present")
	}
}
