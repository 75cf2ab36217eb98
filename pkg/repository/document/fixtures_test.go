package document

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/HarshaM0211/jira-software/pkg/query"
	"github.com/HarshaM0211/jira-software/pkg/repository"
)

type ticket struct {
	ID      int64  `bson:"_id"`
	Title   string `bson:"title"`
	Points  int64  `bson:"points"`
	Version int64  `bson:"version"`
}

func (t *ticket) GetVersion() int64  { return t.Version }
func (t *ticket) SetVersion(v int64) { t.Version = v }

type ticketMapper struct{}

func (ticketMapper) GetID(t *ticket) int64        { return t.ID }
func (ticketMapper) SetID(t *ticket, id int64)    { t.ID = id }
func (ticketMapper) KeyAttribute() string         { return "id" }
func (ticketMapper) Field(p string) (string, bool) { return ticketField(p) }
func (ticketMapper) Attribute(p string) (string, bool) {
	if p == "id" {
		return "id", true
	}
	return ticketField(p)
}

func ticketField(property string) (string, bool) {
	switch property {
	case "id":
		return "_id", true
	case "title", "points":
		return property, true
	}
	return "", false
}

func (ticketMapper) ToDocument(t *ticket) (interface{}, error) {
	return bson.D{
		{Key: "_id", Value: t.ID},
		{Key: "title", Value: t.Title},
		{Key: "points", Value: t.Points},
		{Key: "version", Value: t.Version},
	}, nil
}

func (ticketMapper) FromDocument(raw bson.Raw) (*ticket, error) {
	var t ticket
	if err := bson.Unmarshal(raw, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (ticketMapper) ToItem(t *ticket) (map[string]types.AttributeValue, error) {
	item := map[string]types.AttributeValue{}
	for name, v := range map[string]any{"id": t.ID, "title": t.Title, "points": t.Points, "version": t.Version} {
		av, err := AttributeValue(v)
		if err != nil {
			return nil, err
		}
		item[name] = av
	}
	return item, nil
}

func (ticketMapper) FromItem(item map[string]types.AttributeValue) (*ticket, error) {
	var t ticket
	var err error
	if t.ID, err = Int64Attr(item, "id"); err != nil {
		return nil, err
	}
	if t.Title, err = StringAttr(item, "title"); err != nil {
		return nil, err
	}
	if t.Points, err = Int64Attr(item, "points"); err != nil {
		return nil, err
	}
	if t.Version, err = Int64Attr(item, "version"); err != nil {
		return nil, err
	}
	return &t, nil
}

func ticketAccessor(t *ticket, property string) (any, bool) {
	switch property {
	case "id":
		return t.ID, true
	case "title":
		return t.Title, true
	case "points":
		return t.Points, true
	}
	return nil, false
}

func mustEquals(t *testing.T, name string, value any, ignoreCase bool) query.Criteria {
	t.Helper()
	c, err := query.NewEqualsIgnoreCase(name, value, ignoreCase)
	if err != nil {
		t.Fatalf("NewEqualsIgnoreCase() error = %v", err)
	}
	return c
}

func mustMin(t *testing.T, name string, value any) query.Criteria {
	t.Helper()
	c, err := query.NewMin(name, value)
	if err != nil {
		t.Fatalf("NewMin() error = %v", err)
	}
	return c
}

func mustMax(t *testing.T, name string, value any) query.Criteria {
	t.Helper()
	c, err := query.NewMax(name, value)
	if err != nil {
		t.Fatalf("NewMax() error = %v", err)
	}
	return c
}

func mustOrderBy(t *testing.T, ascending bool, properties ...string) query.OrderBy {
	t.Helper()
	o, err := query.NewOrderBy(ascending, properties...)
	if err != nil {
		t.Fatalf("NewOrderBy() error = %v", err)
	}
	return o
}

func counterKeys() KeyFunc[int64] {
	return FromGenerator(repository.SequenceKeys())
}
