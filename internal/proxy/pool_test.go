package proxy

import (
	"testing"
)

func TestPoolRotation(t *testing.T) {
	pool := NewPool([]string{"p1", "p2", "p3"})

	if pool.Size() != 3 {
		t.Errorf("Expected size 3, got %d", pool.Size())
	}

	// Round-robin order
	if p := pool.Next(); p != "p1" {
		t.Errorf("Expected p1, got %s", p)
	}
	if p := pool.Next(); p != "p2" {
		t.Errorf("Expected p2, got %s", p)
	}
	if p := pool.Next(); p != "p3" {
		t.Errorf("Expected p3, got %s", p)
	}
	if p := pool.Next(); p != "p1" {
		t.Errorf("Expected p1, got %s", p)
	}
}

func TestPoolFailureBenching(t *testing.T) {
	pool := NewPool([]string{"p1", "p2", "p3"})

	if p := pool.Next(); p != "p1" {
		t.Fatalf("Expected p1, got %s", p)
	}

	pool.MarkFailed("p2")

	// p2 is benched, rotation skips it
	if p := pool.Next(); p != "p3" {
		t.Errorf("Expected p3 (skipping p2), got %s", p)
	}
	if p := pool.Next(); p != "p1" {
		t.Errorf("Expected p1, got %s", p)
	}
	if p := pool.Next(); p != "p3" {
		t.Errorf("Expected p3, got %s", p)
	}

	pool.MarkHealthy("p2")

	// p2 rejoins the rotation
	if p := pool.Next(); p != "p1" {
		t.Errorf("Expected p1, got %s", p)
	}
	if p := pool.Next(); p != "p2" {
		t.Errorf("Expected p2, got %s", p)
	}
}

func TestPoolEmpty(t *testing.T) {
	pool := NewPool(nil)
	if p := pool.Next(); p != "" {
		t.Errorf("Expected empty proxy for empty pool, got %s", p)
	}
}
