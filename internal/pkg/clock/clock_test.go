package clock

import (
	"testing"
	"time"
)

func TestTimeClocker_Now(t *testing.T) {
	t.Parallel()

	if loc := New().Now().Location(); loc != time.UTC {
		t.Fatalf("Now().Location() = %v, want UTC", loc)
	}
}

func TestManual(t *testing.T) {
	t.Parallel()

	// Arrange
	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	c := NewManual(start)

	// Act & Assert
	if got := c.Now(); !got.Equal(start) {
		t.Fatalf("Now() = %v, want %v", got, start)
	}

	c.Advance(90 * time.Second)
	if got, want := c.Now(), start.Add(90*time.Second); !got.Equal(want) {
		t.Fatalf("after Advance Now() = %v, want %v", got, want)
	}

	c.Set(start)
	if got := c.Now(); !got.Equal(start) {
		t.Fatalf("after Set Now() = %v, want %v", got, start)
	}
}
