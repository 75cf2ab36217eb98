package project

import (
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.mongodb.org/mongo-driver/bson"
)

func sampleProject() *Project {
	stamp := time.Date(2024, 5, 17, 9, 45, 12, 345000000, time.UTC)
	return &Project{
		ID:        42,
		Key:       "OPS",
		Name:      "Operations",
		Type:      TypeServiceDesk,
		Lead:      "bob",
		Active:    true,
		CreatedAt: stamp,
		UpdatedAt: stamp.Add(time.Hour),
		Version:   4,
	}
}

func assertSameProject(t *testing.T, got, want *Project) {
	t.Helper()
	if got.ID != want.ID || got.Key != want.Key || got.Name != want.Name || got.Type != want.Type ||
		got.Lead != want.Lead || got.Active != want.Active || got.Version != want.Version {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if !got.CreatedAt.Equal(want.CreatedAt) || !got.UpdatedAt.Equal(want.UpdatedAt) {
		t.Fatalf("timestamps = %v / %v, want %v / %v", got.CreatedAt, got.UpdatedAt, want.CreatedAt, want.UpdatedAt)
	}
	if got.CreatedAt.Location() != time.UTC {
		t.Fatalf("timestamps must be UTC, got %v", got.CreatedAt.Location())
	}
}

func TestDocumentMapperMongoRoundTrip(t *testing.T) {
	want := sampleProject()
	doc, err := DocumentMapper{}.ToDocument(want)
	if err != nil {
		t.Fatalf("ToDocument: %v", err)
	}
	raw, err := bson.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if id := bson.Raw(raw).Lookup("_id").Int64(); id != 42 {
		t.Fatalf("_id = %d, want 42", id)
	}
	got, err := DocumentMapper{}.FromDocument(raw)
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	assertSameProject(t, got, want)
}

func TestDocumentMapperDynamoRoundTrip(t *testing.T) {
	want := sampleProject()
	item, err := DocumentMapper{}.ToItem(want)
	if err != nil {
		t.Fatalf("ToItem: %v", err)
	}
	id, ok := item["id"].(*types.AttributeValueMemberN)
	if !ok || id.Value != "42" {
		t.Fatalf("id attribute = %#v", item["id"])
	}
	created, ok := item[PropertyCreatedAt].(*types.AttributeValueMemberN)
	if !ok || created.Value != "1715939112345" {
		t.Fatalf("created_at attribute = %#v, want unix milliseconds", item[PropertyCreatedAt])
	}

	got, err := DocumentMapper{}.FromItem(item)
	if err != nil {
		t.Fatalf("FromItem: %v", err)
	}
	assertSameProject(t, got, want)
}

func TestDocumentMapperFieldNames(t *testing.T) {
	m := DocumentMapper{}
	if f, ok := m.Field(PropertyID); !ok || f != "_id" {
		t.Fatalf("Field(id) = %q, %v", f, ok)
	}
	if a, ok := m.Attribute(PropertyID); !ok || a != "id" {
		t.Fatalf("Attribute(id) = %q, %v", a, ok)
	}
	if f, ok := m.Field(PropertyCreatedAt); !ok || f != "created_at" {
		t.Fatalf("Field(created_at) = %q, %v", f, ok)
	}
	if _, ok := m.Attribute("version"); ok {
		t.Fatal("version must not be searchable")
	}
	if m.KeyAttribute() != "id" {
		t.Fatalf("KeyAttribute = %q", m.KeyAttribute())
	}
}

func TestSQLMapperColumns(t *testing.T) {
	m := NewSQLMapper()
	if col, ok := m.Column(PropertyLead); !ok || col != "lead_account" {
		t.Fatalf("Column(lead) = %q, %v", col, ok)
	}
	if col, ok := m.Column(PropertyKey); !ok || col != "project_key" {
		t.Fatalf("Column(key) = %q, %v", col, ok)
	}
	row, err := m.ToRow(sampleProject())
	if err != nil {
		t.Fatalf("ToRow: %v", err)
	}
	if len(row) != len(m.Columns()) {
		t.Fatalf("row has %d values for %d columns", len(row), len(m.Columns()))
	}
}
