package openapi

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/lucasjones/reggen"

	"github.com/oalang/apic/internal/specmodel"
)

// exampleFor synthesizes a representative example value for a schema that
// declares no explicit example of its own, following pb33f/libopenapi's
// DiveIntoSchema: an explicit Example always wins, then a format-specific
// synthesizer, then (for a pattern-constrained string with no matching
// format) a regex-driven value via reggen. Returns ok=false when the schema
// gives no basis to synthesize one (e.g. an object or $ref).
func exampleFor(s specmodel.Schema) (string, bool) {
	if len(s.Examples) == 1 {
		for _, v := range s.Examples {
			return v, true
		}
	}

	switch s.Expr.Kind {
	case specmodel.ExprStr:
		return stringExample(s.Expr.Str)
	case specmodel.ExprNum:
		if s.Expr.Num.Example != nil {
			return fmt.Sprintf("%g", *s.Expr.Num.Example), true
		}
	case specmodel.ExprInt:
		if s.Expr.Int.Example != nil {
			return fmt.Sprintf("%d", *s.Expr.Int.Example), true
		}
	}
	return "", false
}

// stringExample mirrors the teacher example renderer's string-type switch on
// schema.Format, falling back to reggen.Generate against schema.Pattern when
// no format matches and a pattern is present.
func stringExample(p specmodel.PrimString) (string, bool) {
	if p.Example != "" {
		return p.Example, true
	}
	if len(p.Enumeration) > 0 {
		return p.Enumeration[0], true
	}

	switch p.Format {
	case "date-time":
		return "2024-01-01T00:00:00Z", true
	case "date":
		return "2024-01-01", true
	case "time":
		return "00:00:00Z", true
	case "email":
		return "user@example.com", true
	case "hostname":
		return "example.com", true
	case "ipv4":
		return "192.0.2.1", true
	case "ipv6":
		return "2001:db8::1", true
	case "uri", "uri-reference":
		return "https://example.com/resource", true
	case "uuid":
		return randomUUID(), true
	case "byte":
		return base64.StdEncoding.EncodeToString([]byte("example")), true
	case "password":
		return "********", true
	case "binary":
		return hex.EncodeToString([]byte("example")), true
	}

	if p.Pattern != "" {
		if out, err := reggen.Generate(p.Pattern, 32); err == nil {
			return out, true
		}
	}

	return "", false
}

// randomUUID produces a syntactically valid (but non-random-source-critical)
// example UUID using crypto/rand, matching OpenAPI's uuid format without
// pulling in a dedicated UUID library the corpus never imports.
func randomUUID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "00000000-0000-4000-8000-000000000000"
	}
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	var sb strings.Builder
	hexStr := hex.EncodeToString(b)
	sb.WriteString(hexStr[0:8])
	sb.WriteByte('-')
	sb.WriteString(hexStr[8:12])
	sb.WriteByte('-')
	sb.WriteString(hexStr[12:16])
	sb.WriteByte('-')
	sb.WriteString(hexStr[16:20])
	sb.WriteByte('-')
	sb.WriteString(hexStr[20:32])
	return sb.String()
}
