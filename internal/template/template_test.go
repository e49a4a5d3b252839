package template

import (
	"strings"
	"testing"

	"github.com/Infisical/pki-issuance/internal/certreq"
)

func TestValidate_NameRequired(t *testing.T) {
	tmpl := &Template{}
	if err := tmpl.Validate(); err == nil || !strings.Contains(err.Error(), "name is required") {
		t.Errorf("expected name error, got %v", err)
	}
}

func TestValidate_Minimal(t *testing.T) {
	tmpl := &Template{Name: "web-server"}
	if err := tmpl.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidAttributeIncludeMode(t *testing.T) {
	tmpl := &Template{
		Name: "web-server",
		Attributes: []AttributePolicy{
			{Type: AttrCommonName, Include: "required"},
		},
	}
	if err := tmpl.Validate(); err == nil || !strings.Contains(err.Error(), "invalid include mode") {
		t.Errorf("expected include mode error, got %v", err)
	}
}

func TestValidate_DuplicateMandatoryAttribute(t *testing.T) {
	tmpl := &Template{
		Name: "web-server",
		Attributes: []AttributePolicy{
			{Type: AttrCommonName, Include: IncludeMandatory, Values: []string{"a.example.com"}},
			{Type: AttrCommonName, Include: IncludeMandatory, Values: []string{"b.example.com"}},
		},
	}
	if err := tmpl.Validate(); err == nil || !strings.Contains(err.Error(), "only one mandatory policy") {
		t.Errorf("expected duplicate mandatory error, got %v", err)
	}
}

func TestValidate_MandatoryExcludesOtherPolicies(t *testing.T) {
	tmpl := &Template{
		Name: "web-server",
		Attributes: []AttributePolicy{
			{Type: AttrCommonName, Include: IncludeMandatory, Values: []string{"a.example.com"}},
			{Type: AttrCommonName, Include: IncludeOptional, Values: []string{"b.example.com"}},
		},
	}
	if err := tmpl.Validate(); err == nil || !strings.Contains(err.Error(), "excludes other policies") {
		t.Errorf("expected exclusion error, got %v", err)
	}
}

func TestValidate_MultipleOptionalPoliciesAllowed(t *testing.T) {
	tmpl := &Template{
		Name: "web-server",
		Attributes: []AttributePolicy{
			{Type: AttrOrganization, Include: IncludeOptional, Values: []string{"Example Corp"}},
			{Type: AttrOrganization, Include: IncludeOptional, Values: []string{"Example Labs"}},
		},
	}
	if err := tmpl.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_UnknownSANType(t *testing.T) {
	tmpl := &Template{
		Name: "web-server",
		SANs: []SANPolicy{
			{Type: "hostname", Include: IncludeOptional},
		},
	}
	if err := tmpl.Validate(); err == nil || !strings.Contains(err.Error(), "unknown type") {
		t.Errorf("expected unknown SAN type error, got %v", err)
	}
}

func TestValidate_InvalidSANIncludeMode(t *testing.T) {
	tmpl := &Template{
		Name: "web-server",
		SANs: []SANPolicy{
			{Type: certreq.SANTypeDNS, Include: "forbid"},
		},
	}
	if err := tmpl.Validate(); err == nil || !strings.Contains(err.Error(), "invalid include mode") {
		t.Errorf("expected include mode error, got %v", err)
	}
}

func TestAttributeTypes(t *testing.T) {
	tmpl := &Template{
		Name: "web-server",
		Attributes: []AttributePolicy{
			{Type: AttrCommonName, Include: IncludeMandatory},
			{Type: AttrOrganization, Include: IncludeOptional},
			{Type: AttrOrganization, Include: IncludeOptional},
		},
	}
	types := tmpl.AttributeTypes()
	if len(types) != 2 || !types[AttrCommonName] || !types[AttrOrganization] {
		t.Errorf("unexpected attribute types: %v", types)
	}
}

func TestSANTypes(t *testing.T) {
	tmpl := &Template{
		Name: "web-server",
		SANs: []SANPolicy{
			{Type: certreq.SANTypeDNS, Include: IncludeOptional},
			{Type: certreq.SANTypeIP, Include: IncludeOptional},
		},
	}
	types := tmpl.SANTypes()
	if len(types) != 2 || !types[certreq.SANTypeDNS] || !types[certreq.SANTypeIP] {
		t.Errorf("unexpected SAN types: %v", types)
	}
}
