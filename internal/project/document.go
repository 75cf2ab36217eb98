package project

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/HarshaM0211/jira-software/pkg/repository/document"
)

// DocumentMapper maps projects to MongoDB documents and DynamoDB items.
// Documents key on _id, items on "id"; the remaining fields share names.
type DocumentMapper struct{}

var (
	_ document.MongoMapper[int64, Project] = DocumentMapper{}
	_ document.ItemMapper[int64, Project]  = DocumentMapper{}
)

// GetID implements repository.Identity.
func (DocumentMapper) GetID(p *Project) int64 { return p.ID }

// SetID implements repository.Identity.
func (DocumentMapper) SetID(p *Project, id int64) { p.ID = id }

// Field implements document.MongoMapper.
func (DocumentMapper) Field(property string) (string, bool) {
	if property == PropertyID {
		return "_id", true
	}
	return documentField(property)
}

// Attribute implements document.ItemMapper.
func (DocumentMapper) Attribute(property string) (string, bool) {
	if property == PropertyID {
		return "id", true
	}
	return documentField(property)
}

// KeyAttribute implements document.ItemMapper.
func (DocumentMapper) KeyAttribute() string { return "id" }

func documentField(property string) (string, bool) {
	switch property {
	case PropertyKey, PropertyName, PropertyType, PropertyLead, PropertyActive, PropertyCreatedAt, PropertyUpdatedAt:
		return property, true
	}
	return "", false
}

// ToDocument implements document.MongoMapper.
func (DocumentMapper) ToDocument(p *Project) (interface{}, error) {
	return bson.D{
		{Key: "_id", Value: p.ID},
		{Key: PropertyKey, Value: p.Key},
		{Key: PropertyName, Value: p.Name},
		{Key: PropertyType, Value: string(p.Type)},
		{Key: PropertyLead, Value: p.Lead},
		{Key: PropertyActive, Value: p.Active},
		{Key: PropertyCreatedAt, Value: p.CreatedAt.UTC()},
		{Key: PropertyUpdatedAt, Value: p.UpdatedAt.UTC()},
		{Key: "version", Value: p.Version},
	}, nil
}

// FromDocument implements document.MongoMapper.
func (DocumentMapper) FromDocument(raw bson.Raw) (*Project, error) {
	var p Project
	if err := bson.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode project document: %w", err)
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

// ToItem implements document.ItemMapper.
func (DocumentMapper) ToItem(p *Project) (map[string]types.AttributeValue, error) {
	values := map[string]any{
		"id":              p.ID,
		PropertyKey:       p.Key,
		PropertyName:      p.Name,
		PropertyType:      string(p.Type),
		PropertyLead:      p.Lead,
		PropertyActive:    p.Active,
		PropertyCreatedAt: p.CreatedAt,
		PropertyUpdatedAt: p.UpdatedAt,
		"version":         p.Version,
	}
	item := make(map[string]types.AttributeValue, len(values))
	for name, v := range values {
		av, err := document.AttributeValue(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", name, err)
		}
		item[name] = av
	}
	return item, nil
}

// FromItem implements document.ItemMapper.
func (DocumentMapper) FromItem(item map[string]types.AttributeValue) (*Project, error) {
	var (
		p   Project
		err error
	)
	if p.ID, err = document.Int64Attr(item, "id"); err != nil {
		return nil, err
	}
	if p.Key, err = document.StringAttr(item, PropertyKey); err != nil {
		return nil, err
	}
	if p.Name, err = document.StringAttr(item, PropertyName); err != nil {
		return nil, err
	}
	projectType, err := document.StringAttr(item, PropertyType)
	if err != nil {
		return nil, err
	}
	p.Type = Type(projectType)
	if p.Lead, err = document.StringAttr(item, PropertyLead); err != nil {
		return nil, err
	}
	if p.Active, err = document.BoolAttr(item, PropertyActive); err != nil {
		return nil, err
	}
	created, err := document.TimeAttr(item, PropertyCreatedAt)
	if err != nil {
		return nil, err
	}
	if created != nil {
		p.CreatedAt = *created
	}
	updated, err := document.TimeAttr(item, PropertyUpdatedAt)
	if err != nil {
		return nil, err
	}
	if updated != nil {
		p.UpdatedAt = *updated
	}
	if p.Version, err = document.Int64Attr(item, "version"); err != nil {
		return nil, err
	}
	return &p, nil
}
