package document

import (
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// AttributeValue converts a Go value into a DynamoDB attribute. Times are
// stored as Unix milliseconds so range conditions compare numerically.
func AttributeValue(v any) (types.AttributeValue, error) {
	switch value := v.(type) {
	case nil:
		return &types.AttributeValueMemberNULL{Value: true}, nil
	case string:
		return &types.AttributeValueMemberS{Value: value}, nil
	case bool:
		return &types.AttributeValueMemberBOOL{Value: value}, nil
	case int:
		return number(strconv.FormatInt(int64(value), 10)), nil
	case int32:
		return number(strconv.FormatInt(int64(value), 10)), nil
	case int64:
		return number(strconv.FormatInt(value, 10)), nil
	case uint:
		return number(strconv.FormatUint(uint64(value), 10)), nil
	case uint64:
		return number(strconv.FormatUint(value, 10)), nil
	case float32:
		return number(strconv.FormatFloat(float64(value), 'f', -1, 32)), nil
	case float64:
		return number(strconv.FormatFloat(value, 'f', -1, 64)), nil
	case time.Time:
		return number(strconv.FormatInt(value.UnixMilli(), 10)), nil
	case *time.Time:
		if value == nil {
			return &types.AttributeValueMemberNULL{Value: true}, nil
		}
		return number(strconv.FormatInt(value.UnixMilli(), 10)), nil
	case []byte:
		return &types.AttributeValueMemberB{Value: value}, nil
	default:
		return nil, fmt.Errorf("unsupported attribute type %T", v)
	}
}

func number(s string) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: s}
}

// StringAttr reads a string attribute. Missing or NULL attributes read as "".
func StringAttr(item map[string]types.AttributeValue, name string) (string, error) {
	switch av := item[name].(type) {
	case nil, *types.AttributeValueMemberNULL:
		return "", nil
	case *types.AttributeValueMemberS:
		return av.Value, nil
	default:
		return "", fmt.Errorf("attribute %s: expected string, got %T", name, av)
	}
}

// Int64Attr reads a numeric attribute. Missing or NULL attributes read as 0.
func Int64Attr(item map[string]types.AttributeValue, name string) (int64, error) {
	switch av := item[name].(type) {
	case nil, *types.AttributeValueMemberNULL:
		return 0, nil
	case *types.AttributeValueMemberN:
		n, err := strconv.ParseInt(av.Value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("attribute %s: %w", name, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("attribute %s: expected number, got %T", name, av)
	}
}

func BoolAttr(item map[string]types.AttributeValue, name string) (bool, error) {
	switch av := item[name].(type) {
	case nil, *types.AttributeValueMemberNULL:
		return false, nil
	case *types.AttributeValueMemberBOOL:
		return av.Value, nil
	default:
		return false, fmt.Errorf("attribute %s: expected bool, got %T", name, av)
	}
}

// TimeAttr reads a Unix milliseconds attribute. Missing or NULL attributes
// read as nil.
func TimeAttr(item map[string]types.AttributeValue, name string) (*time.Time, error) {
	if _, null := item[name].(*types.AttributeValueMemberNULL); null || item[name] == nil {
		return nil, nil
	}
	ms, err := Int64Attr(item, name)
	if err != nil {
		return nil, err
	}
	t := time.UnixMilli(ms).UTC()
	return &t, nil
}
