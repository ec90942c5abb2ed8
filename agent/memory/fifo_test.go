package memory

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestFIFO_Basics(t *testing.T) {
	f := NewFIFO[int](3)
	assert.Equal(t, 3, f.Cap())
	assert.False(t, f.Push(1))
	assert.False(t, f.Push(2))
	assert.False(t, f.Push(3))
	assert.True(t, f.Push(4))
	assert.Equal(t, []int{2, 3, 4}, f.Items())
	assert.Equal(t, []int{3, 4}, f.Last(2))
	assert.Equal(t, []int{2, 3, 4}, f.Last(10))
	assert.Nil(t, f.Last(0))

	f.Clear()
	assert.Equal(t, 0, f.Len())
	assert.Empty(t, f.Items())
}

func TestFIFO_ZeroCapacity(t *testing.T) {
	f := NewFIFO[string](0)
	f.Push("a")
	f.Push("b")
	assert.Equal(t, []string{"b"}, f.Items())
}

// 任意推入序列之后，缓冲区恰好保存最近的 10 个元素且保持顺序
func TestProperty_FIFOHoldsMostRecent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		pushed := rapid.SliceOf(rapid.String()).Draw(rt, "pushed")

		f := NewFIFO[string](BufferCapacity)
		for _, p := range pushed {
			f.Push(p)
		}

		want := pushed
		if len(want) > BufferCapacity {
			want = want[len(want)-BufferCapacity:]
		}
		got := f.Items()
		if len(got) != len(want) {
			rt.Fatalf("len %d, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				rt.Fatalf("item %d = %q, want %q", i, got[i], want[i])
			}
		}
	})
}

func TestProperty_FIFOLast(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("Last(n) is the tail of Items", prop.ForAll(
		func(values []int, n int) bool {
			f := NewFIFO[int](BufferCapacity)
			for _, v := range values {
				f.Push(v)
			}
			items := f.Items()
			last := f.Last(n)
			if n <= 0 {
				return len(last) == 0
			}
			k := n
			if k > len(items) {
				k = len(items)
			}
			if len(last) != k {
				return false
			}
			for i := 0; i < k; i++ {
				if last[i] != items[len(items)-k+i] {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Int()),
		gen.IntRange(-2, 15),
	))

	properties.TestingRun(t)
}
