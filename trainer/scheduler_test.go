package trainer

import (
	"errors"
	"sync/atomic"
	"testing"
)

func TestSchedulerVisitsEveryIndex(t *testing.T) {
	tests := []struct {
		name      string
		workers   int
		threshold int
		n         int
	}{
		{"single worker", 1, 1, 100},
		{"below threshold", 4, 64, 10},
		{"parallel", 4, 2, 103},
		{"more workers than items", 8, 1, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(tt.workers, tt.threshold)
			defer s.Close()

			visits := make([]int32, tt.n)
			err := s.ForEach(tt.n, func(i int) error {
				atomic.AddInt32(&visits[i], 1)
				return nil
			})
			if err != nil {
				t.Fatal(err)
			}
			for i, v := range visits {
				if v != 1 {
					t.Errorf("index %d visited %d times", i, v)
				}
			}
		})
	}
}

func TestSchedulerReturnsError(t *testing.T) {
	s := NewScheduler(4, 1)
	defer s.Close()

	boom := errors.New("boom")
	var calls atomic.Int32
	err := s.ForEach(40, func(i int) error {
		calls.Add(1)
		if i == 7 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
	if calls.Load() != 40 {
		t.Errorf("ran %d items, want all 40", calls.Load())
	}

	// The pool stays usable after an error.
	if err := s.ForEach(40, func(int) error { return nil }); err != nil {
		t.Errorf("second ForEach: %v", err)
	}
}

func TestSchedulerCloseIdempotent(t *testing.T) {
	s := NewScheduler(2, 1)
	if err := s.ForEach(10, func(int) error { return nil }); err != nil {
		t.Fatal(err)
	}
	s.Close()
	s.Close()

	if s.Workers() != 2 {
		t.Errorf("workers = %d", s.Workers())
	}
	if NewScheduler(0, 0).Workers() < 1 {
		t.Error("default workers should be at least 1")
	}
}
