package document

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

func TestAttributeValue_TimeIsNumericMillis(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	av, err := AttributeValue(at)
	if err != nil {
		t.Fatalf("AttributeValue() error = %v", err)
	}
	n, ok := av.(*types.AttributeValueMemberN)
	if !ok {
		t.Fatalf("AttributeValue() = %T, want N", av)
	}
	if n.Value != "1709294400000" {
		t.Errorf("N = %s", n.Value)
	}

	got, err := TimeAttr(map[string]types.AttributeValue{"at": av}, "at")
	if err != nil {
		t.Fatalf("TimeAttr() error = %v", err)
	}
	if got == nil || !got.Equal(at) {
		t.Errorf("TimeAttr() = %v, want %v", got, at)
	}
}

func TestAttributeReaders_MissingAndNull(t *testing.T) {
	item := map[string]types.AttributeValue{"gone": &types.AttributeValueMemberNULL{Value: true}}

	if s, err := StringAttr(item, "gone"); err != nil || s != "" {
		t.Errorf("StringAttr() = %q, %v", s, err)
	}
	if n, err := Int64Attr(item, "absent"); err != nil || n != 0 {
		t.Errorf("Int64Attr() = %d, %v", n, err)
	}
	if ts, err := TimeAttr(item, "gone"); err != nil || ts != nil {
		t.Errorf("TimeAttr() = %v, %v", ts, err)
	}
	if _, err := Int64Attr(map[string]types.AttributeValue{"x": &types.AttributeValueMemberS{Value: "1"}}, "x"); err == nil {
		t.Error("Int64Attr(string) expected error")
	}
}

func TestAttributeValue_Unsupported(t *testing.T) {
	if _, err := AttributeValue(struct{}{}); err == nil {
		t.Error("expected error for struct value")
	}
}
