// Package schema validates untrusted JSON trees against typed field rules
// Package schema 按类型化字段规则校验不可信的 JSON 数据树
package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Kind is the expected type of a field
// Kind 字段期望的类型
type Kind int

const (
	KindString Kind = iota + 1
	KindBool
	KindInt
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	case KindInt:
		return "number"
	case KindObject:
		return "object"
	}
	return "unknown"
}

// Rule describes one field: its kind, whether it is required and its default
// Rule 描述单个字段：类型、是否必填以及默认值
type Rule struct {
	kind        Kind
	required    bool
	requiredMsg string
	hasDefault  bool
	def         any
	fields      Schema
}

func String() Rule { return Rule{kind: KindString} }
func Bool() Rule   { return Rule{kind: KindBool} }
func Int() Rule    { return Rule{kind: KindInt} }

// Object nests a schema, used for payloads such as {noteId, body:{...}}
// Object 嵌套子结构，用于 {noteId, body:{...}} 这类载荷
func Object(fields Schema) Rule { return Rule{kind: KindObject, fields: fields} }

// Required marks the field as required, msg is reported when it is missing
// Required 标记字段必填，缺失时返回 msg
func (r Rule) Required(msg string) Rule {
	r.required = true
	r.requiredMsg = msg
	return r
}

// Default sets the value used when the field is absent
// Default 设置字段缺失时使用的默认值
func (r Rule) Default(v any) Rule {
	r.hasDefault = true
	r.def = v
	return r
}

func (r Rule) Kind() Kind { return r.kind }

func (r Rule) IsRequired() bool { return r.required }

// Field pairs a name with its rule
type Field struct {
	Name string
	Rule Rule
}

// Schema is an ordered list of fields, the order decides which issue is reported first
// Schema 有序字段列表，顺序决定首个报告的错误
type Schema []Field

// F 构造字段
func F(name string, r Rule) Field {
	return Field{Name: name, Rule: r}
}

// Issue a single validation failure
// Issue 单个校验失败项
type Issue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every offending field
// ValidationError 列出所有不合法的字段
type ValidationError struct {
	Issues []Issue `json:"issues"`
}

// Error returns the first issue message, which is what clients see
// Error 返回首个错误消息，即客户端看到的内容
func (e *ValidationError) Error() string {
	if e == nil || len(e.Issues) == 0 {
		return "invalid input"
	}
	return e.Issues[0].Message
}

// Fields returns the offending field paths
// Fields 返回出错字段路径
func (e *ValidationError) Fields() []string {
	out := make([]string, 0, len(e.Issues))
	for _, i := range e.Issues {
		out = append(out, i.Field)
	}
	return out
}

// Parse evaluates raw against the schema.
// A nil raw counts as an empty object, unknown keys are dropped, null values count as absent.
// Parse 按结构校验 raw。
// nil 视为空对象，未知字段会被丢弃，null 视为缺失。
func (s Schema) Parse(raw any) (map[string]any, error) {
	out, issues := s.parse(raw, "")
	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return out, nil
}

func (s Schema) parse(raw any, prefix string) (map[string]any, []Issue) {
	var obj map[string]any
	switch v := raw.(type) {
	case nil:
		obj = map[string]any{}
	case map[string]any:
		obj = v
	default:
		field := strings.TrimSuffix(prefix, ".")
		return nil, []Issue{{Field: field, Message: invalidType(KindObject, raw)}}
	}

	out := make(map[string]any, len(s))
	var issues []Issue
	for _, f := range s {
		path := prefix + f.Name
		v, present := obj[f.Name]
		if !present || v == nil {
			switch {
			case f.Rule.required:
				msg := f.Rule.requiredMsg
				if msg == "" {
					msg = "Required"
				}
				issues = append(issues, Issue{Field: path, Message: msg})
			case f.Rule.hasDefault:
				out[f.Name] = f.Rule.def
			}
			continue
		}

		if f.Rule.kind == KindObject {
			nested, nestedIssues := f.Rule.fields.parse(v, path+".")
			if len(nestedIssues) > 0 {
				issues = append(issues, nestedIssues...)
				continue
			}
			out[f.Name] = nested
			continue
		}

		coerced, ok := coerce(f.Rule.kind, v)
		if !ok {
			issues = append(issues, Issue{Field: path, Message: invalidType(f.Rule.kind, v)})
			continue
		}
		out[f.Name] = coerced
	}
	return out, issues
}

func coerce(kind Kind, v any) (any, bool) {
	switch kind {
	case KindString:
		s, ok := v.(string)
		return s, ok
	case KindBool:
		b, ok := v.(bool)
		return b, ok
	case KindInt:
		return toInt(v)
	}
	return nil, false
}

func toInt(v any) (any, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return nil, false
		}
		// 超出 int 范围的整数取边界值
		switch {
		case n >= math.MaxInt64:
			return math.MaxInt, true
		case n <= math.MinInt64:
			return math.MinInt, true
		}
		return int(n), true
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i), true
		}
		f, err := n.Float64()
		if err != nil {
			return nil, false
		}
		return toInt(f)
	}
	return nil, false
}

func invalidType(want Kind, got any) string {
	return fmt.Sprintf("Expected %s, received %s", want, received(got))
}

func received(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case int, int64, float64, json.Number:
		return "number"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	}
	return fmt.Sprintf("%T", v)
}
