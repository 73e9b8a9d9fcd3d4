package schema

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var noteSchema = Schema{
	F("title", String().Required("Title is required")),
	F("content", String().Required("Content is required")),
	F("category", String()),
	F("published", Bool()),
}

func TestParse_RequiredMissing(t *testing.T) {
	_, err := noteSchema.Parse(map[string]any{"content": "x"})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Title is required", verr.Error())
	assert.Equal(t, []string{"title"}, verr.Fields())
}

func TestParse_NilIsEmptyObject(t *testing.T) {
	_, err := noteSchema.Parse(nil)
	require.Error(t, err)
	assert.Equal(t, "Title is required", err.Error())

	filter := Schema{F("limit", Int().Default(10)), F("page", Int().Default(1))}
	out, err := filter.Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"limit": 10, "page": 1}, out)
}

func TestParse_TypeMismatch(t *testing.T) {
	_, err := noteSchema.Parse(map[string]any{"title": 12.0, "content": "x"})
	require.Error(t, err)
	assert.Equal(t, "Expected string, received number", err.Error())

	_, err = noteSchema.Parse(map[string]any{"title": "a", "content": "x", "published": "yes"})
	require.Error(t, err)
	assert.Equal(t, "Expected boolean, received string", err.Error())

	_, err = noteSchema.Parse([]any{"a"})
	require.Error(t, err)
	assert.Equal(t, "Expected object, received array", err.Error())
}

func TestParse_UnknownFieldsIgnoredAndOptionalAbsent(t *testing.T) {
	out, err := noteSchema.Parse(map[string]any{"title": "a", "content": "b", "extra": true})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"title": "a", "content": "b"}, out)
}

func TestParse_NullCountsAsAbsent(t *testing.T) {
	out, err := noteSchema.Parse(map[string]any{"title": "a", "content": "b", "category": nil})
	require.NoError(t, err)
	_, present := out["category"]
	assert.False(t, present)
}

func TestParse_IntCoercion(t *testing.T) {
	s := Schema{F("limit", Int())}

	out, err := s.Parse(map[string]any{"limit": json.Number("5")})
	require.NoError(t, err)
	assert.Equal(t, 5, out["limit"])

	out, err = s.Parse(map[string]any{"limit": 7.0})
	require.NoError(t, err)
	assert.Equal(t, 7, out["limit"])

	_, err = s.Parse(map[string]any{"limit": 7.5})
	assert.Error(t, err)

	_, err = s.Parse(map[string]any{"limit": json.Number("7.5")})
	assert.Error(t, err)

	// integers beyond the int range clamp to its bounds
	out, err = s.Parse(map[string]any{"limit": 1e30})
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, out["limit"])

	out, err = s.Parse(map[string]any{"limit": json.Number("-100000000000000000000000")})
	require.NoError(t, err)
	assert.Equal(t, math.MinInt, out["limit"])
}

func TestParse_NestedObject(t *testing.T) {
	s := Schema{
		F("noteId", String().Required("Note Id is required")),
		F("body", Object(Schema{F("title", String()), F("published", Bool())})),
	}

	out, err := s.Parse(map[string]any{"noteId": "n1", "body": map[string]any{"title": "B"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"noteId": "n1", "body": map[string]any{"title": "B"}}, out)

	_, err = s.Parse(map[string]any{"noteId": "n1", "body": map[string]any{"published": 1.0}})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "body.published", verr.Issues[0].Field)

	_, err = s.Parse(map[string]any{"noteId": "n1", "body": "x"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "body", verr.Issues[0].Field)
}

func TestParse_CollectsAllIssues(t *testing.T) {
	_, err := noteSchema.Parse(map[string]any{"published": "no"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Issues, 3)
}
