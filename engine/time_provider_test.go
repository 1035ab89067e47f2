package engine

import (
	"testing"
	"time"
)

func TestMonotonicTimeProvider(t *testing.T) {
	provider := NewMonotonicTimeProvider()

	t1 := provider.Now()
	time.Sleep(10 * time.Millisecond)
	t2 := provider.Now()

	if !t2.After(t1) {
		t.Errorf("Expected t2 to be after t1, but got t1=%v, t2=%v", t1, t2)
	}
	if diff := t2.Sub(t1); diff < 10*time.Millisecond {
		t.Errorf("Expected at least 10ms difference, got %v", diff)
	}
}

func TestTimeProviderInterface(t *testing.T) {
	var _ TimeProvider = NewMonotonicTimeProvider()
	var _ TimeProvider = &manualTime{}
}
