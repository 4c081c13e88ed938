package cache

import (
	"errors"
	"path/filepath"
	"testing"
)

type entry struct {
	Name   string
	Values map[string]float64
}

func TestHash(tst *testing.T) {
	a, err := Hash(entry{"a", map[string]float64{"x": 1, "y": 2}}, 3)
	if err != nil {
		tst.Fatal("hash error:", err)
	}
	b, _ := Hash(entry{"a", map[string]float64{"y": 2, "x": 1}}, 3)
	c, _ := Hash(entry{"a", map[string]float64{"x": 1, "y": 2}}, 4)
	if a != b {
		tst.Error("hash depends on map order")
	}
	if a == c {
		tst.Error("hash ignores inputs")
	}
	if len(a) != 16 {
		tst.Error("wrong hash length:", a)
	}
}

func TestStore(tst *testing.T) {
	s, err := Open(filepath.Join(tst.TempDir(), "cache.db"))
	if err != nil {
		tst.Fatal("open error:", err)
	}
	defer s.Close()

	var e entry
	if ok, err := s.Load("main", "k", &e); ok || err != nil {
		tst.Error("empty cache must miss:", ok, err)
	}
	in := entry{"a", map[string]float64{"x": 0.5}}
	if err := s.Save("main", "k", in); err != nil {
		tst.Fatal("save error:", err)
	}
	if ok, err := s.Load("main", "k", &e); !ok || err != nil {
		tst.Fatal("cache must hit:", ok, err)
	}
	if e.Name != "a" || e.Values["x"] != 0.5 {
		tst.Error("wrong cached value:", e)
	}
	if ok, _ := s.Load("other", "k", &e); ok {
		tst.Error("buckets must be separate")
	}
}

func TestMemo(tst *testing.T) {
	s, err := Open(filepath.Join(tst.TempDir(), "cache.db"))
	if err != nil {
		tst.Fatal("open error:", err)
	}
	defer s.Close()

	calls := 0
	compute := func() (entry, error) {
		calls++
		return entry{Name: "computed"}, nil
	}
	for i := 0; i < 3; i++ {
		e, err := Memo(s, "main", compute, "input", 1)
		if err != nil || e.Name != "computed" {
			tst.Error("wrong memo result:", e, err)
		}
	}
	if calls != 1 {
		tst.Error("result must be computed once, got", calls)
	}
	if _, err := Memo(s, "main", compute, "input", 2); err != nil || calls != 2 {
		tst.Error("different inputs must be computed:", calls, err)
	}

	failure := errors.New("failure")
	fail := func() (entry, error) { return entry{}, failure }
	if _, err := Memo(s, "main", fail, "bad"); err != failure {
		tst.Error("compute errors must propagate:", err)
	}
	if ok, _ := s.Load("main", mustHash(tst, "bad"), &entry{}); ok {
		tst.Error("failed results must not be cached")
	}
}

func TestNilStore(tst *testing.T) {
	var s *Store
	calls := 0
	compute := func() (int, error) {
		calls++
		return 42, nil
	}
	for i := 0; i < 2; i++ {
		if v, err := Memo(s, "main", compute, 1); v != 42 || err != nil {
			tst.Error("wrong result:", v, err)
		}
	}
	if calls != 2 {
		tst.Error("nil store must not cache")
	}
	if err := s.Close(); err != nil {
		tst.Error("closing nil store:", err)
	}
}

func mustHash(tst *testing.T, v ...interface{}) string {
	h, err := Hash(v...)
	if err != nil {
		tst.Fatal("hash error:", err)
	}
	return h
}
