// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/ik5/loopmix/internal/audiotest"
)

func mustClip(t testing.TB, head, tail []float32, fade int) *Clip {
	t.Helper()

	c, err := NewClip("test", head, tail, fade)
	if err != nil {
		t.Fatalf("NewClip() error = %v", err)
	}
	return c
}

func TestNewClip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		head     int
		tail     int
		fade     int
		wantFade int
		wantTail int
	}{
		{"no tail", 1000, 0, 100, 100, 0},
		{"short tail kept", 1000, 300, 100, 100, 300},
		{"long tail clamped to fade begin", 1000, 950, 100, 100, 900},
		{"fade clamped to head", 100, 50, 500, 100, 0},
		{"negative fade", 100, 50, -3, 0, 50},
		{"zero fade", 100, 200, 0, 0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := mustClip(t, audiotest.Constant(tt.head, 1), audiotest.Constant(tt.tail, 1), tt.fade)

			if c.NumFadeSamples() != tt.wantFade {
				t.Errorf("NumFadeSamples() = %d, want %d", c.NumFadeSamples(), tt.wantFade)
			}
			if c.TailLen() != tt.wantTail {
				t.Errorf("TailLen() = %d, want %d", c.TailLen(), tt.wantTail)
			}
			if c.NumSamples(false) != tt.head {
				t.Errorf("NumSamples(false) = %d, want %d", c.NumSamples(false), tt.head)
			}
			if c.NumSamples(true) != tt.head+tt.wantTail {
				t.Errorf("NumSamples(true) = %d, want %d", c.NumSamples(true), tt.head+tt.wantTail)
			}
		})
	}
}

func TestNewClip_EmptyHead(t *testing.T) {
	t.Parallel()

	for _, head := range [][]float32{nil, {}} {
		if _, err := NewClip("empty", head, []float32{1}, 0); !errors.Is(err, ErrEmptyHead) {
			t.Errorf("NewClip() error = %v, want ErrEmptyHead", err)
		}
	}
}

func TestNewClip_TailFadesToZero(t *testing.T) {
	t.Parallel()

	c := mustClip(t, audiotest.Constant(100, 0), audiotest.Constant(40, 1), 10)
	data := c.Data()

	// untouched before the tail fade
	for i := range 30 {
		if data[100+i] != 1 {
			t.Fatalf("tail[%d] = %v, want 1", i, data[100+i])
		}
	}

	// ramp from 1 toward 0 over the last 10 samples
	for i := 30; i < 40; i++ {
		want := 1 - float32(i-30)/10
		if diff := data[100+i] - want; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("tail[%d] = %v, want %v", i, data[100+i], want)
		}
	}
}

func TestNewClip_FadeLongerThanTail(t *testing.T) {
	t.Parallel()

	// every tail sample fades when the fade is longer than the tail
	c := mustClip(t, audiotest.Constant(100, 0), audiotest.Constant(4, 1), 50)
	want := []float32{1, 0.75, 0.5, 0.25}
	for i, w := range want {
		if got := c.tailAt(i); got != w {
			t.Errorf("tail[%d] = %v, want %v", i, got, w)
		}
	}
}

func TestNewClip_CopiesInput(t *testing.T) {
	t.Parallel()

	head := audiotest.Constant(10, 0.5)
	tail := audiotest.Constant(2, 0.5)
	c := mustClip(t, head, tail, 0)

	head[0] = 9
	tail[0] = 9

	if c.Data()[0] != 0.5 || c.tailAt(0) != 0.5 {
		t.Error("NewClip() kept a reference to the caller's buffers")
	}
}

func TestNewClip_TailInvariant(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))
	for range 500 {
		head := rng.IntN(2000) + 1
		tail := rng.IntN(3000)
		fade := rng.IntN(2500) - 100

		c := mustClip(t, make([]float32, head), make([]float32, tail), fade)
		if c.TailLen() > c.NumSamples(false)-c.NumFadeSamples() {
			t.Fatalf("head=%d tail=%d fade=%d: TailLen() = %d exceeds head-fade = %d",
				head, tail, fade, c.TailLen(), c.NumSamples(false)-c.NumFadeSamples())
		}
	}
}

func TestClipTable(t *testing.T) {
	t.Parallel()

	var empty *clipTable
	if empty.get(0) != nil || empty.len() != 0 {
		t.Fatal("nil table is not empty")
	}

	a := mustClip(t, make([]float32, 10), nil, 0)
	b, _ := NewClip("b", make([]float32, 30), nil, 0)

	t1 := empty.with(a)
	t2 := t1.with(b)

	if t1.len() != 1 || t2.len() != 2 {
		t.Fatalf("len = %d, %d, want 1, 2", t1.len(), t2.len())
	}
	if _, ok := t1.lookup("b"); ok {
		t.Error("with() mutated the previous snapshot")
	}

	id, ok := t2.lookup("b")
	if !ok || t2.get(id) != b {
		t.Errorf("lookup(b) = %d, %v", id, ok)
	}
	if t2.maxHead != 30 {
		t.Errorf("maxHead = %d, want 30", t2.maxHead)
	}
	if t2.get(-1) != nil || t2.get(2) != nil {
		t.Error("get() accepted an out of range id")
	}
}
