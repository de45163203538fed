// util/cache_test.go
// Copyright(c) 2022-2026 atcsim contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"testing"
	"time"
)

func TestCacheStoreRetrieve(t *testing.T) {
	type record struct {
		Name  string
		Count int
		Tags  []string
	}

	stored := record{Name: "test", Count: 3, Tags: []string{"a", "b"}}
	if err := CacheStoreObject("test/cache_test.msgpack", stored); err != nil {
		t.Fatal(err)
	}

	var got record
	mtime, err := CacheRetrieveObject("test/cache_test.msgpack", &got)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != stored.Name || got.Count != stored.Count || len(got.Tags) != 2 {
		t.Errorf("got %+v, want %+v", got, stored)
	}
	if time.Since(mtime) > time.Minute {
		t.Errorf("implausible modification time %v", mtime)
	}
}

func TestCacheRetrieveMissing(t *testing.T) {
	var got struct{}
	if _, err := CacheRetrieveObject("test/nonexistent.msgpack", &got); err == nil {
		t.Error("expected error for missing cache entry")
	}
}
