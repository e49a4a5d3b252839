// Package policy validates normalized certificate requests against the
// template bound to a profile. Syntactic checks (TTL, country, email) always
// apply; template checks apply only when a template is bound.
package policy

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/Infisical/pki-issuance/internal/ca"
	"github.com/Infisical/pki-issuance/internal/certreq"
	"github.com/Infisical/pki-issuance/internal/template"
)

// ValidationError carries every rule the request violated, in evaluation
// order. It maps to a 400 response.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "certificate request validation failed: " + strings.Join(e.Violations, ", ")
}

// Validate checks req against tmpl. A nil template means no policy beyond
// the basic syntactic checks. The returned error, if any, is a
// *ValidationError listing all violations.
func Validate(tmpl *template.Template, req *certreq.Request) error {
	var violations []string

	if req.IsEmpty() {
		return &ValidationError{Violations: []string{"certificate request is empty"}}
	}

	violations = append(violations, validateSyntax(req)...)

	if tmpl != nil {
		violations = append(violations, validateAttributes(tmpl, req)...)
		violations = append(violations, validateKeyUsages(tmpl, req)...)
		violations = append(violations, validateExtKeyUsages(tmpl, req)...)
		violations = append(violations, validateSANs(tmpl, req)...)
		violations = append(violations, validateValidity(tmpl, req)...)
		violations = append(violations, validateAlgorithms(tmpl, req)...)
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// validateSyntax applies the template-independent checks: TTL must parse to
// a positive duration, country must be exactly two letters, email must have
// a standard address shape, and every enumerated field (SAN types, usages,
// algorithms) must name a known member.
func validateSyntax(req *certreq.Request) []string {
	var violations []string

	if req.Validity.TTL == "" {
		violations = append(violations, "validity TTL is required")
	} else if _, err := ParseTTL(req.Validity.TTL); err != nil {
		violations = append(violations, err.Error())
	}

	if req.Country != "" && !isValidCountry(req.Country) {
		violations = append(violations, fmt.Sprintf("country must be a 2-letter code, got %q", req.Country))
	}

	if req.Email != "" {
		if _, err := mail.ParseAddress(req.Email); err != nil {
			violations = append(violations, fmt.Sprintf("invalid email address %q", req.Email))
		}
	}

	for _, san := range req.SANs {
		if !san.Type.IsValid() {
			violations = append(violations, fmt.Sprintf("unknown SAN type %q", san.Type))
			continue
		}
		if san.Type == certreq.SANTypeEmail {
			if _, err := mail.ParseAddress(san.Value); err != nil {
				violations = append(violations, fmt.Sprintf("invalid email SAN %q", san.Value))
			}
		}
	}

	for _, usage := range req.KeyUsages {
		if !usage.IsValid() {
			violations = append(violations, fmt.Sprintf("unknown key usage %q", usage))
		}
	}
	for _, usage := range req.ExtendedKeyUsages {
		if !usage.IsValid() {
			violations = append(violations, fmt.Sprintf("unknown extended key usage %q", usage))
		}
	}

	if req.SignatureAlgorithm != "" && !ca.IsSupportedSignatureAlgorithm(req.SignatureAlgorithm) {
		violations = append(violations, fmt.Sprintf("unsupported signature algorithm %q", req.SignatureAlgorithm))
	}
	if req.KeyAlgorithm != "" && !ca.IsSupportedKeyAlgorithm(req.KeyAlgorithm) {
		violations = append(violations, fmt.Sprintf("unsupported key algorithm %q", req.KeyAlgorithm))
	}

	return violations
}

func isValidCountry(country string) bool {
	if len(country) != 2 {
		return false
	}
	for _, r := range country {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}

func requestAttributeValue(req *certreq.Request, attrType string) string {
	switch attrType {
	case template.AttrCommonName:
		return req.CommonName
	case template.AttrOrganization:
		return req.Organization
	case template.AttrOrganizationalUnit:
		return req.OrganizationalUnit
	case template.AttrCountry:
		return req.Country
	case template.AttrProvince:
		return req.Province
	case template.AttrLocality:
		return req.Locality
	case template.AttrEmail:
		return req.Email
	default:
		return ""
	}
}

func validateAttributes(tmpl *template.Template, req *certreq.Request) []string {
	var violations []string

	byType := make(map[string][]template.AttributePolicy)
	for _, attr := range tmpl.Attributes {
		byType[attr.Type] = append(byType[attr.Type], attr)
	}

	for attrType, policies := range byType {
		value := requestAttributeValue(req, attrType)

		var mandatory, prohibit bool
		for _, p := range policies {
			switch p.Include {
			case template.IncludeMandatory:
				mandatory = true
			case template.IncludeProhibit:
				prohibit = true
			}
		}

		if prohibit && value != "" {
			violations = append(violations, fmt.Sprintf("%s is prohibited by template policy", attrType))
			continue
		}
		if mandatory && value == "" {
			violations = append(violations, fmt.Sprintf("%s is mandatory but not provided in request", attrType))
			continue
		}

		if value != "" {
			allowed := collectAllowedValues(policies)
			if len(allowed) > 0 {
				if msg := matchAllowedValues(value, allowed, attrType); msg != "" {
					violations = append(violations, msg)
				}
			}
		}
	}

	// The common name must be covered by a template policy to be usable.
	if req.CommonName != "" && !tmpl.AttributeTypes()[template.AttrCommonName] {
		violations = append(violations, "common_name is not allowed by template policy (not defined in template)")
	}

	return violations
}

func collectAllowedValues(policies []template.AttributePolicy) []string {
	var allowed []string
	for _, p := range policies {
		if p.Include == template.IncludeProhibit {
			continue
		}
		allowed = append(allowed, p.Values...)
	}
	return allowed
}

func validateKeyUsages(tmpl *template.Template, req *certreq.Request) []string {
	var violations []string

	if tmpl.KeyUsages == nil {
		if len(req.KeyUsages) > 0 {
			violations = append(violations, "key usages are not allowed by template policy (not defined in template)")
		}
		return violations
	}

	have := make(map[certreq.KeyUsage]bool, len(req.KeyUsages))
	for _, u := range req.KeyUsages {
		have[u] = true
	}

	var missing []string
	for _, required := range tmpl.KeyUsages.Required {
		if !have[required] {
			missing = append(missing, string(required))
		}
	}
	if len(missing) > 0 {
		violations = append(violations, "missing required key usages: "+strings.Join(missing, ", "))
	}

	allowed := make(map[certreq.KeyUsage]bool)
	for _, u := range tmpl.KeyUsages.Required {
		allowed[u] = true
	}
	for _, u := range tmpl.KeyUsages.Optional {
		allowed[u] = true
	}
	if len(allowed) > 0 {
		var invalid []string
		for _, u := range req.KeyUsages {
			if !allowed[u] {
				invalid = append(invalid, string(u))
			}
		}
		if len(invalid) > 0 {
			violations = append(violations, "invalid key usages: "+strings.Join(invalid, ", "))
		}
	}

	return violations
}

func validateExtKeyUsages(tmpl *template.Template, req *certreq.Request) []string {
	var violations []string

	if tmpl.ExtendedKeyUsages == nil {
		if len(req.ExtendedKeyUsages) > 0 {
			violations = append(violations, "extended key usages are not allowed by template policy (not defined in template)")
		}
		return violations
	}

	have := make(map[certreq.ExtKeyUsage]bool, len(req.ExtendedKeyUsages))
	for _, u := range req.ExtendedKeyUsages {
		have[u] = true
	}

	var missing []string
	for _, required := range tmpl.ExtendedKeyUsages.Required {
		if !have[required] {
			missing = append(missing, string(required))
		}
	}
	if len(missing) > 0 {
		violations = append(violations, "missing required extended key usages: "+strings.Join(missing, ", "))
	}

	allowed := make(map[certreq.ExtKeyUsage]bool)
	for _, u := range tmpl.ExtendedKeyUsages.Required {
		allowed[u] = true
	}
	for _, u := range tmpl.ExtendedKeyUsages.Optional {
		allowed[u] = true
	}
	if len(allowed) > 0 {
		var invalid []string
		for _, u := range req.ExtendedKeyUsages {
			if !allowed[u] {
				invalid = append(invalid, string(u))
			}
		}
		if len(invalid) > 0 {
			violations = append(violations, "invalid extended key usages: "+strings.Join(invalid, ", "))
		}
	}

	return violations
}

func validateSANs(tmpl *template.Template, req *certreq.Request) []string {
	var violations []string

	byType := make(map[certreq.SANType][]template.SANPolicy)
	for _, san := range tmpl.SANs {
		byType[san.Type] = append(byType[san.Type], san)
	}

	for sanType, policies := range byType {
		var values []string
		for _, san := range req.SANs {
			if san.Type == sanType {
				values = append(values, san.Value)
			}
		}

		var mandatory, prohibit bool
		for _, p := range policies {
			switch p.Include {
			case template.IncludeMandatory:
				mandatory = true
			case template.IncludeProhibit:
				prohibit = true
			}
		}

		if prohibit && len(values) > 0 {
			violations = append(violations, fmt.Sprintf("%s SAN is prohibited by template policy", sanType))
			continue
		}
		if mandatory && len(values) == 0 {
			violations = append(violations, fmt.Sprintf("%s SAN is mandatory but not provided in request", sanType))
			continue
		}

		var allowed []string
		for _, p := range policies {
			if p.Include == template.IncludeProhibit {
				continue
			}
			allowed = append(allowed, p.Values...)
		}
		if len(allowed) > 0 {
			for _, value := range values {
				if msg := matchAllowedValues(value, allowed, string(sanType)+" SAN"); msg != "" {
					violations = append(violations, msg)
				}
			}
		}
	}

	templateTypes := tmpl.SANTypes()
	seen := make(map[certreq.SANType]bool)
	for _, san := range req.SANs {
		if seen[san.Type] {
			continue
		}
		seen[san.Type] = true
		if !templateTypes[san.Type] {
			violations = append(violations, fmt.Sprintf("%s SAN is not allowed by template policy (not defined in template)", san.Type))
		}
	}

	return violations
}

func validateValidity(tmpl *template.Template, req *certreq.Request) []string {
	if tmpl.Validity == nil || req.Validity.TTL == "" {
		return nil
	}

	requested, err := ParseTTL(req.Validity.TTL)
	if err != nil {
		// Already reported by the syntactic pass.
		return nil
	}

	var violations []string

	if tmpl.Validity.MaxTTL != "" {
		max, err := ParseTTL(tmpl.Validity.MaxTTL)
		if err == nil && requested > max {
			violations = append(violations, "requested validity period exceeds maximum allowed duration")
		}
	}
	if tmpl.Validity.MinTTL != "" {
		min, err := ParseTTL(tmpl.Validity.MinTTL)
		if err == nil && requested < min {
			violations = append(violations, "requested validity period is below minimum required duration")
		}
	}

	return violations
}

// validateAlgorithms checks the requested signature and key algorithms
// against the template's allow-lists. Naming an algorithm when the template
// defines no list for it is a violation.
func validateAlgorithms(tmpl *template.Template, req *certreq.Request) []string {
	var violations []string

	if req.SignatureAlgorithm != "" {
		if len(tmpl.SignatureAlgorithms) == 0 {
			violations = append(violations, fmt.Sprintf("signature algorithm %q is not allowed by template policy (not defined in template)", req.SignatureAlgorithm))
		} else if !containsString(tmpl.SignatureAlgorithms, req.SignatureAlgorithm) {
			violations = append(violations, fmt.Sprintf("signature algorithm %q is not allowed by template policy", req.SignatureAlgorithm))
		}
	}

	if req.KeyAlgorithm != "" {
		if len(tmpl.KeyAlgorithms) == 0 {
			violations = append(violations, fmt.Sprintf("key algorithm %q is not allowed by template policy (not defined in template)", req.KeyAlgorithm))
		} else if !containsString(tmpl.KeyAlgorithms, req.KeyAlgorithm) {
			violations = append(violations, fmt.Sprintf("key algorithm %q is not allowed by template policy", req.KeyAlgorithm))
		}
	}

	return violations
}

func containsString(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

// matchAllowedValues checks value against the allowed list, honoring "*"
// wildcards in patterns. Returns an empty string on match, the violation
// message otherwise.
func matchAllowedValues(value string, allowed []string, fieldName string) string {
	hasWildcards := false
	for _, pattern := range allowed {
		if strings.Contains(pattern, "*") {
			hasWildcards = true
			if wildcardRegex(pattern).MatchString(value) {
				return ""
			}
		} else if pattern == value {
			return ""
		}
	}

	if hasWildcards {
		return fmt.Sprintf("%s value %q does not match allowed patterns: %s", fieldName, value, strings.Join(allowed, ", "))
	}
	return fmt.Sprintf("%s value %q is not in allowed values list", fieldName, value)
}

func wildcardRegex(pattern string) *regexp.Regexp {
	escaped := regexp.QuoteMeta(pattern)
	return regexp.MustCompile("^" + strings.ReplaceAll(escaped, `\*`, ".*") + "$")
}
