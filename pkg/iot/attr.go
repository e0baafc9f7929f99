package iot

import (
	"strconv"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// RawValue is a decoded feed value: either plain JSON or a DynamoDB attribute such as {"N":"21.5"}.
type RawValue struct {
	plain any
	attr  types.AttributeValue
}

func ParseRawValue(v any) RawValue {
	if av, ok := toAttributeValue(v); ok {
		return RawValue{attr: av}
	}
	return RawValue{plain: v}
}

func (r RawValue) IsDynamoAttr() bool {
	return r.attr != nil
}

// Plain returns the JSON-equivalent value. Attributes that fail to decode become nil.
func (r RawValue) Plain() any {
	if r.attr == nil {
		return r.plain
	}
	var out any
	if err := attributevalue.Unmarshal(r.attr, &out); err != nil {
		return nil
	}
	return out
}

// UnwrapAttrs returns a copy of fields with every attribute-typed value replaced by its plain form.
func UnwrapAttrs(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = ParseRawValue(v).Plain()
	}
	return out
}

func toAttributeValue(v any) (types.AttributeValue, bool) {
	obj, ok := v.(map[string]any)
	if !ok || len(obj) != 1 {
		return nil, false
	}

	for tag, inner := range obj {
		switch tag {
		case "S":
			if s, ok := inner.(string); ok {
				return &types.AttributeValueMemberS{Value: s}, true
			}
		case "N":
			switch n := inner.(type) {
			case string:
				if _, err := strconv.ParseFloat(n, 64); err == nil {
					return &types.AttributeValueMemberN{Value: n}, true
				}
			case float64:
				return &types.AttributeValueMemberN{Value: strconv.FormatFloat(n, 'f', -1, 64)}, true
			}
		case "BOOL":
			if b, ok := inner.(bool); ok {
				return &types.AttributeValueMemberBOOL{Value: b}, true
			}
		case "NULL":
			if b, ok := inner.(bool); ok && b {
				return &types.AttributeValueMemberNULL{Value: true}, true
			}
		case "M":
			m, ok := inner.(map[string]any)
			if !ok {
				return nil, false
			}
			members := make(map[string]types.AttributeValue, len(m))
			for k, child := range m {
				av, ok := toAttributeValue(child)
				if !ok {
					return nil, false
				}
				members[k] = av
			}
			return &types.AttributeValueMemberM{Value: members}, true
		}
	}
	return nil, false
}
