package confgate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestCheckWirePrimitives(t *testing.T) {
	for _, value := range []any{
		nil,
		"text",
		"",
		42,
		int64(-7),
		uint8(255),
		3.14,
		float32(1.5),
		true,
		false,
	} {
		assert.Nil(t, CheckWire(value), "%#v must be wire-safe", value)
	}
}

func TestCheckWireSequencesAndMappings(t *testing.T) {
	t.Run("CleanNesting", func(t *testing.T) {
		value := map[string]any{
			"list": []any{1, "two", true, nil},
			"nested": map[string]any{
				"deep": []float64{1.0, 2.0},
			},
		}
		assert.Nil(t, CheckWire(value))
	})

	t.Run("NilContainers", func(t *testing.T) {
		assert.Nil(t, CheckWire([]any(nil)))
		assert.Nil(t, CheckWire(map[string]any(nil)))
	})

	t.Run("ArraysPass", func(t *testing.T) {
		assert.Nil(t, CheckWire([3]int{1, 2, 3}))
	})

	t.Run("SharedButAcyclicIsFine", func(t *testing.T) {
		shared := map[string]any{"x": 1}
		value := map[string]any{"a": shared, "b": shared}
		assert.Nil(t, CheckWire(value), "diamond sharing is not a cycle")
	})
}

func TestCheckWireCallable(t *testing.T) {
	t.Run("BareFunction", func(t *testing.T) {
		viol := CheckWire(func() {})
		require.NotNil(t, viol)
		assert.Equal(t, ReasonCallable, viol.Reason)
	})

	t.Run("FunctionInsideMapping", func(t *testing.T) {
		value := map[string]any{"a": 1, "b": func() {}}
		viol := CheckWire(value)
		require.NotNil(t, viol)
		assert.Equal(t, ReasonCallable, viol.Reason)
		assert.Equal(t, "b", viol.Path)
	})

	t.Run("FunctionInsideSequence", func(t *testing.T) {
		value := []any{"ok", fmt.Println}
		viol := CheckWire(value)
		require.NotNil(t, viol)
		assert.Equal(t, ReasonCallable, viol.Reason)
		assert.Equal(t, "1", viol.Path)
	})
}

func TestCheckWireUnsupported(t *testing.T) {
	type opaque struct{ X int }

	tests := []struct {
		name  string
		value any
	}{
		{"Struct", opaque{X: 1}},
		{"StructPointer", &opaque{X: 1}},
		{"Channel", make(chan int)},
		{"Complex", complex(1, 2)},
		{"IntKeyedMap", map[int]string{1: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viol := CheckWire(tt.value)
			require.NotNil(t, viol)
			assert.Equal(t, ReasonUnsupportedType, viol.Reason)
		})
	}
}

func TestCheckWireCyclic(t *testing.T) {
	t.Run("SelfReferentialMap", func(t *testing.T) {
		m := map[string]any{}
		m["self"] = m
		viol := CheckWire(m)
		require.NotNil(t, viol)
		assert.Equal(t, ReasonCyclic, viol.Reason)
	})

	t.Run("SelfReferentialSlice", func(t *testing.T) {
		s := make([]any, 1)
		s[0] = s
		viol := CheckWire(s)
		require.NotNil(t, viol)
		assert.Equal(t, ReasonCyclic, viol.Reason)
	})

	t.Run("IndirectCycle", func(t *testing.T) {
		a := map[string]any{}
		b := map[string]any{"back": a}
		a["forward"] = b
		viol := CheckWire(a)
		require.NotNil(t, viol)
		assert.Equal(t, ReasonCyclic, viol.Reason)
	})

	t.Run("DeepButAcyclic", func(t *testing.T) {
		value := any("leaf")
		for i := 0; i < 100; i++ {
			value = []any{value}
		}
		assert.Nil(t, CheckWire(value))
	})

	t.Run("DepthBound", func(t *testing.T) {
		value := any("leaf")
		for i := 0; i <= maxWalkDepth; i++ {
			value = []any{value}
		}
		viol := CheckWire(value)
		require.NotNil(t, viol)
		assert.Equal(t, ReasonCyclic, viol.Reason)
	})
}

// drawWireSafe generates an arbitrary value composed entirely of primitives,
// sequences, and string-keyed mappings.
func drawWireSafe(t *rapid.T, depth int) any {
	upper := 4
	if depth <= 0 {
		upper = 2
	}
	switch rapid.IntRange(0, upper).Draw(t, "shape") {
	case 0:
		return rapid.String().Draw(t, "str")
	case 1:
		return rapid.Float64().Draw(t, "num")
	case 2:
		return rapid.Bool().Draw(t, "bool")
	case 3:
		n := rapid.IntRange(0, 3).Draw(t, "seqlen")
		seq := make([]any, n)
		for i := range seq {
			seq[i] = drawWireSafe(t, depth-1)
		}
		return seq
	default:
		n := rapid.IntRange(0, 3).Draw(t, "maplen")
		m := make(map[string]any, n)
		for i := 0; i < n; i++ {
			key := rapid.StringN(1, 6, 6).Draw(t, "key")
			m[key] = drawWireSafe(t, depth-1)
		}
		return m
	}
}

// Property: any value composed of primitives, sequences, and string-keyed
// mappings always passes the guard.
func TestCheckWireCompositionProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		value := drawWireSafe(t, 3)
		if viol := CheckWire(value); viol != nil {
			t.Fatalf("wire-safe composition rejected at %q: %s", viol.Path, viol.Reason)
		}
	})
}
