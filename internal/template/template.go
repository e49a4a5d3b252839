// Package template defines certificate templates: the policy a certificate
// request must satisfy before it reaches the signer. A template constrains
// subject attributes, subject alternative names, key usages and validity.
package template

import (
	"fmt"

	"github.com/Infisical/pki-issuance/internal/certreq"
)

// IncludeMode controls how an attribute or SAN policy applies to a request.
type IncludeMode string

const (
	// IncludeMandatory requires the field to be present.
	IncludeMandatory IncludeMode = "mandatory"

	// IncludeOptional allows the field; allowed values still apply.
	IncludeOptional IncludeMode = "optional"

	// IncludeProhibit rejects any request carrying the field.
	IncludeProhibit IncludeMode = "prohibit"
)

// IsValid reports whether m is a known include mode.
func (m IncludeMode) IsValid() bool {
	switch m {
	case IncludeMandatory, IncludeOptional, IncludeProhibit:
		return true
	}
	return false
}

// Subject attribute types understood by templates.
const (
	AttrCommonName         = "common_name"
	AttrOrganization       = "organization"
	AttrOrganizationalUnit = "organizational_unit"
	AttrCountry            = "country"
	AttrProvince           = "state_or_province_name"
	AttrLocality           = "locality_name"
	AttrEmail              = "email"
)

// AttributePolicy constrains one subject attribute type. Values, when
// non-empty, is the allowed-value list; entries may contain "*" wildcards.
type AttributePolicy struct {
	Type    string      `json:"type"`
	Include IncludeMode `json:"include"`
	Values  []string    `json:"values,omitempty"`
}

// SANPolicy constrains one SAN type the same way AttributePolicy constrains
// a subject attribute.
type SANPolicy struct {
	Type    certreq.SANType `json:"type"`
	Include IncludeMode     `json:"include"`
	Values  []string        `json:"values,omitempty"`
}

// KeyUsagePolicy splits key usages into a required set (every request must
// carry all of them) and an optional set (the permissive remainder). A
// request usage outside the union is rejected.
type KeyUsagePolicy struct {
	Required []certreq.KeyUsage `json:"required,omitempty"`
	Optional []certreq.KeyUsage `json:"optional,omitempty"`
}

// ExtKeyUsagePolicy is KeyUsagePolicy for extended key usages.
type ExtKeyUsagePolicy struct {
	Required []certreq.ExtKeyUsage `json:"required,omitempty"`
	Optional []certreq.ExtKeyUsage `json:"optional,omitempty"`
}

// ValidityPolicy bounds the requested validity period. Both fields use the
// TTL grammar ("90d", "1y"); MinTTL may be empty.
type ValidityPolicy struct {
	MaxTTL string `json:"maxTtl"`
	MinTTL string `json:"minTtl,omitempty"`
}

// Template is the full policy bound to a certificate profile.
type Template struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Name      string `json:"name"`

	Attributes        []AttributePolicy  `json:"attributes,omitempty"`
	SANs              []SANPolicy        `json:"sans,omitempty"`
	KeyUsages         *KeyUsagePolicy    `json:"keyUsages,omitempty"`
	ExtendedKeyUsages *ExtKeyUsagePolicy `json:"extendedKeyUsages,omitempty"`
	Validity          *ValidityPolicy    `json:"validity,omitempty"`

	// SignatureAlgorithms and KeyAlgorithms are allow-lists for the
	// algorithms a request may name. A request naming an algorithm when the
	// matching list is empty fails validation.
	SignatureAlgorithms []string `json:"signatureAlgorithms,omitempty"`
	KeyAlgorithms       []string `json:"keyAlgorithms,omitempty"`
}

// Validate checks the template's own consistency: include modes must be
// known, and an attribute type with a mandatory policy admits no other
// policies for the same type.
func (t *Template) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("template name is required")
	}

	byType := make(map[string][]AttributePolicy)
	for _, attr := range t.Attributes {
		if !attr.Include.IsValid() {
			return fmt.Errorf("attribute %s: invalid include mode %q", attr.Type, attr.Include)
		}
		byType[attr.Type] = append(byType[attr.Type], attr)
	}
	for attrType, policies := range byType {
		mandatory := 0
		for _, p := range policies {
			if p.Include == IncludeMandatory {
				mandatory++
			}
		}
		if mandatory > 1 {
			return fmt.Errorf("attribute %s: only one mandatory policy is allowed per type", attrType)
		}
		if mandatory == 1 && len(policies) > 1 {
			return fmt.Errorf("attribute %s: a mandatory policy excludes other policies for the same type", attrType)
		}
	}

	for _, san := range t.SANs {
		if !san.Type.IsValid() {
			return fmt.Errorf("san policy: unknown type %q", san.Type)
		}
		if !san.Include.IsValid() {
			return fmt.Errorf("san policy %s: invalid include mode %q", san.Type, san.Include)
		}
	}

	return nil
}

// AttributeTypes returns the set of subject attribute types the template
// defines policies for.
func (t *Template) AttributeTypes() map[string]bool {
	types := make(map[string]bool, len(t.Attributes))
	for _, attr := range t.Attributes {
		types[attr.Type] = true
	}
	return types
}

// SANTypes returns the set of SAN types the template defines policies for.
func (t *Template) SANTypes() map[certreq.SANType]bool {
	types := make(map[certreq.SANType]bool, len(t.SANs))
	for _, san := range t.SANs {
		types[san.Type] = true
	}
	return types
}
