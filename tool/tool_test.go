package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/ragmesh/internal/util"
)

// -------------------- Schema & Validation Tests --------------------

type sampleSchema struct {
	A string `json:"a" description:"Field A"`
	B *int   `json:"b" description:"Optional pointer field"`
	C int    `json:"c,omitempty" description:"Omit empty field"`
}

func TestCreateSchema(t *testing.T) {
	schema := util.CreateSchema(sampleSchema{})
	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "a")
	assert.Contains(t, props, "b")
	assert.Contains(t, props, "c")

	// Required only includes non-pointer, non-omitempty exported fields.
	req, _ := schema["required"].([]string)
	assert.ElementsMatch(t, []string{"a"}, req)
}

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"x":    map[string]any{"type": "integer"},
			"mode": map[string]any{"type": "string", "enum": []any{"fast", "slow"}},
		},
		// Use []any to mirror a JSON decoded schema shape.
		"required": []any{"x"},
	}

	assert.NoError(t, util.ValidateParameters(map[string]any{"x": 5}, schema))
	assert.NoError(t, util.ValidateParameters(map[string]any{"x": float64(5), "mode": "fast"}, schema))

	err := util.ValidateParameters(map[string]any{}, schema)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "x", vErr.Field)

	err = util.ValidateParameters(map[string]any{"x": "not-int"}, schema)
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Message, "expected type integer")

	err = util.ValidateParameters(map[string]any{"x": 1, "mode": "warp"}, schema)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "mode", vErr.Field)
}

// -------------------- FunctionTool Tests --------------------

func sumParams() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
			"b": map[string]any{"type": "number"},
		},
		"required": []string{"a", "b"},
	}
}

func TestFunctionToolSuccess(t *testing.T) {
	sumTool := NewFunctionTool("sum", "Add numbers", sumParams(), func(_ context.Context, args map[string]any) (any, error) {
		return args["a"].(float64) + args["b"].(float64), nil
	})

	result, err := sumTool.Call(context.Background(), map[string]any{"a": 2.0, "b": 3.0})
	require.NoError(t, err)
	assert.Equal(t, 5.0, result)
}

func TestFunctionToolValidationError(t *testing.T) {
	sumTool := NewFunctionTool("sum", "Add numbers", sumParams(), func(_ context.Context, _ map[string]any) (any, error) {
		t.Fatal("handler must not run on invalid arguments")
		return nil, nil
	})

	_, err := sumTool.Call(context.Background(), map[string]any{"a": 2.0})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeValidationError, toolErr.Code)
}

func TestFunctionToolExecutionError(t *testing.T) {
	failing := NewFunctionTool("boom", "Always fails", map[string]any{"type": "object", "properties": map[string]any{}},
		func(_ context.Context, _ map[string]any) (any, error) {
			return nil, errors.New("backend unavailable")
		})

	_, err := failing.Call(context.Background(), map[string]any{})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeExecutionError, toolErr.Code)
	assert.Contains(t, toolErr.Message, "backend unavailable")
}

func TestFunctionToolPreservesCustomToolError(t *testing.T) {
	custom := NewToolError("custom", "quota exceeded", "QUOTA")
	failing := NewFunctionTool("custom", "Custom failure", map[string]any{"type": "object", "properties": map[string]any{}},
		func(_ context.Context, _ map[string]any) (any, error) { return nil, custom })

	_, err := failing.Call(context.Background(), map[string]any{})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "QUOTA", toolErr.Code)
}

func TestFunctionToolFromStruct(t *testing.T) {
	type args struct {
		City string `json:"city" description:"City name"`
	}
	weather := NewFunctionToolFromStruct("get_weather", "Get weather", args{},
		func(_ context.Context, a map[string]any) (any, error) {
			return "sunny in " + a["city"].(string), nil
		})

	result, err := weather.Call(context.Background(), map[string]any{"city": "Berlin"})
	require.NoError(t, err)
	assert.Equal(t, "sunny in Berlin", result)

	_, err = weather.Call(context.Background(), map[string]any{})
	assert.Error(t, err)
}

// -------------------- Registry Tests --------------------

func TestRegistry(t *testing.T) {
	echo := NewFunctionTool("echo", "Echo", map[string]any{"type": "object", "properties": map[string]any{}},
		func(_ context.Context, args map[string]any) (any, error) { return args, nil })

	reg := NewRegistry()
	require.NoError(t, reg.Register(echo))
	assert.Error(t, reg.Register(echo), "duplicate names are rejected")

	got, ok := reg.Lookup("echo")
	require.True(t, ok)
	assert.Equal(t, "echo", got.Name())

	_, ok = reg.Lookup("missing")
	assert.False(t, ok)

	reg.Freeze()
	other := NewFunctionTool("other", "Other", map[string]any{"type": "object", "properties": map[string]any{}},
		func(_ context.Context, _ map[string]any) (any, error) { return nil, nil })
	assert.Error(t, reg.Register(other), "frozen registry rejects registration")

	assert.Equal(t, []string{"echo"}, reg.Names())
	assert.Equal(t, 1, reg.Len())
}
