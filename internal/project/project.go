// Package project is the reference domain of the service: Jira-style
// projects stored through the generic repository, service and controller
// layers on any configured backend.
package project

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/HarshaM0211/jira-software/pkg/apperror"
)

// Resource is the route segment and the entity name used in errors.
const (
	Resource   = "projects"
	EntityName = "project"
)

// Type classifies a project the way Jira templates do.
type Type string

const (
	TypeSoftware    Type = "software"
	TypeBusiness    Type = "business"
	TypeServiceDesk Type = "service_desk"
)

// Valid reports whether t is one of the known project types.
func (t Type) Valid() bool {
	switch t {
	case TypeSoftware, TypeBusiness, TypeServiceDesk:
		return true
	}
	return false
}

const maxNameLength = 255

var keyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{1,9}$`)

// Project is the stored entity.
type Project struct {
	ID        int64     `json:"id" bson:"_id"`
	Key       string    `json:"key" bson:"key"`
	Name      string    `json:"name" bson:"name"`
	Type      Type      `json:"type" bson:"type"`
	Lead      string    `json:"lead" bson:"lead"`
	Active    bool      `json:"active" bson:"active"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
	Version   int64     `json:"version" bson:"version"`
}

// GetVersion implements repository.Versioned.
func (p *Project) GetVersion() int64 { return p.Version }

// SetVersion implements repository.Versioned.
func (p *Project) SetVersion(v int64) { p.Version = v }

// Bean is the write payload of POST and PUT. Nil fields are left unchanged
// on update; Version, when set, must match the stored version.
type Bean struct {
	Key     *string `json:"key"`
	Name    *string `json:"name"`
	Type    *Type   `json:"type"`
	Lead    *string `json:"lead"`
	Active  *bool   `json:"active"`
	Version *int64  `json:"version"`
}

// Validate checks the fields the bean carries. Required fields are checked
// by Mapper.CreateFromBean, since an update may omit them.
func (b *Bean) Validate() error {
	if b.Key != nil && !keyPattern.MatchString(strings.TrimSpace(*b.Key)) {
		return apperror.Validation("key must be 2 to 10 uppercase letters or digits, starting with a letter",
			map[string]interface{}{"field": "key"})
	}
	if b.Name != nil {
		name := strings.TrimSpace(*b.Name)
		if name == "" {
			return apperror.Validation("name must not be blank", map[string]interface{}{"field": "name"})
		}
		if len(name) > maxNameLength {
			return apperror.Validation(fmt.Sprintf("name must be at most %d characters", maxNameLength),
				map[string]interface{}{"field": "name"})
		}
	}
	if b.Type != nil && !b.Type.Valid() {
		return apperror.Validation(fmt.Sprintf("unknown project type %q", *b.Type),
			map[string]interface{}{"field": "type"})
	}
	if b.Version != nil && *b.Version < 0 {
		return apperror.Validation("version must not be negative", map[string]interface{}{"field": "version"})
	}
	return nil
}

// DTO is the read projection returned by the API.
type DTO struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	Type      Type      `json:"type"`
	Lead      string    `json:"lead,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int64     `json:"version"`
}

// Mapper implements service.Mapper for projects.
type Mapper struct {
	now func() time.Time
}

// NewMapper returns a Mapper stamping times with now. The zero Mapper uses
// the wall clock.
func NewMapper(now func() time.Time) Mapper {
	return Mapper{now: now}
}

// CreateFromBean builds a new project. Key and name are required; type
// defaults to software and active to true.
func (m Mapper) CreateFromBean(b *Bean) (*Project, error) {
	if b.Key == nil {
		return nil, apperror.Validation("key is required", map[string]interface{}{"field": "key"})
	}
	if b.Name == nil {
		return nil, apperror.Validation("name is required", map[string]interface{}{"field": "name"})
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}

	stamp := m.clock()
	p := &Project{
		Key:       strings.TrimSpace(*b.Key),
		Name:      strings.TrimSpace(*b.Name),
		Type:      TypeSoftware,
		Active:    true,
		CreatedAt: stamp,
		UpdatedAt: stamp,
	}
	if b.Type != nil {
		p.Type = *b.Type
	}
	if b.Lead != nil {
		p.Lead = strings.TrimSpace(*b.Lead)
	}
	if b.Active != nil {
		p.Active = *b.Active
	}
	return p, nil
}

// CopyFromBean merges the set fields of b into p and refreshes UpdatedAt.
func (m Mapper) CopyFromBean(p *Project, b *Bean) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if b.Key != nil {
		p.Key = strings.TrimSpace(*b.Key)
	}
	if b.Name != nil {
		p.Name = strings.TrimSpace(*b.Name)
	}
	if b.Type != nil {
		p.Type = *b.Type
	}
	if b.Lead != nil {
		p.Lead = strings.TrimSpace(*b.Lead)
	}
	if b.Active != nil {
		p.Active = *b.Active
	}
	if b.Version != nil {
		p.Version = *b.Version
	}
	p.UpdatedAt = m.clock()
	return nil
}

// ToDTO projects p.
func (Mapper) ToDTO(p *Project) DTO {
	return DTO{
		ID:        p.ID,
		Key:       p.Key,
		Name:      p.Name,
		Type:      p.Type,
		Lead:      p.Lead,
		Active:    p.Active,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
		Version:   p.Version,
	}
}

// clock truncates to milliseconds, the finest precision every backend keeps.
func (m Mapper) clock() time.Time {
	now := time.Now
	if m.now != nil {
		now = m.now
	}
	return now().UTC().Truncate(time.Millisecond)
}

// Accessor exposes project properties to ports that evaluate criteria in
// process (memory and DynamoDB).
func Accessor(p *Project, property string) (any, bool) {
	switch property {
	case PropertyID:
		return p.ID, true
	case PropertyKey:
		return p.Key, true
	case PropertyName:
		return p.Name, true
	case PropertyType:
		return string(p.Type), true
	case PropertyLead:
		return p.Lead, true
	case PropertyActive:
		return p.Active, true
	case PropertyCreatedAt:
		return p.CreatedAt, true
	case PropertyUpdatedAt:
		return p.UpdatedAt, true
	}
	return nil, false
}

// Searchable properties.
const (
	PropertyID        = "id"
	PropertyKey       = "key"
	PropertyName      = "name"
	PropertyType      = "type"
	PropertyLead      = "lead"
	PropertyActive    = "active"
	PropertyCreatedAt = "created_at"
	PropertyUpdatedAt = "updated_at"
)
