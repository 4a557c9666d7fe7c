// Package errors provides centralized error code definitions for the
// compiler, one numeric family per phase, following the same taxonomy
// shape as AILANG's internal/errors (see DESIGN.md).
package errors

// Error code constants organized by phase. Each constant represents a
// specific error condition a Report may carry as its Code.
const (
	// ============================================================================
	// Loader Errors (LDR###)
	// ============================================================================

	// LDR001 indicates a module file could not be read
	LDR001 = "LDR001"

	// LDR002 indicates a circular module dependency (CycleDetected)
	LDR002 = "LDR002"

	// LDR003 indicates an import path that resolves to no known module
	LDR003 = "LDR003"

	// LDR004 indicates the same locator was inserted twice with different trees
	LDR004 = "LDR004"

	// ============================================================================
	// Parser Errors (PAR###)
	// ============================================================================

	// PAR001 indicates a syntax error: an unexpected or missing token
	PAR001 = "PAR001"

	// ============================================================================
	// Resolver Errors (RES###)
	// ============================================================================

	// RES001 indicates an identifier not in scope (NotInScope)
	RES001 = "RES001"

	// RES002 indicates an unknown module alias in a qualified reference
	RES002 = "RES002"

	// RES003 indicates a name not exported by the module it was qualified into
	RES003 = "RES003"

	// ============================================================================
	// Inference Errors (INF###)
	// ============================================================================

	// INF001 indicates a unification failure between incompatible tags
	INF001 = "INF001"

	// INF002 indicates the occurs check rejected a recursive type
	INF002 = "INF002"

	// INF003 indicates a tag left incomplete after substitution
	INF003 = "INF003"

	// ============================================================================
	// Type Checker Errors (TYP###)
	// ============================================================================

	// TYP001 indicates a well-formedness rule violation (InvalidType)
	TYP001 = "TYP001"

	// ============================================================================
	// Evaluator Errors (EVA###)
	// ============================================================================

	// EVA001 indicates a variable with no resolved definition at eval time
	EVA001 = "EVA001"

	// EVA002 indicates two resources declaring the same relation path
	EVA002 = "EVA002"

	// EVA003 indicates an evaluated value of the wrong shape for its context
	EVA003 = "EVA003"

	// ============================================================================
	// Annotation Errors (ANN###)
	// ============================================================================

	// ANN001 indicates malformed YAML in an annotation fragment
	ANN001 = "ANN001"

	// ============================================================================
	// Config Errors (CFG###)
	// ============================================================================

	// CFG001 indicates a malformed TOML config file
	CFG001 = "CFG001"

	// CFG002 indicates a required [api] field is missing
	CFG002 = "CFG002"

	// ============================================================================
	// OpenAPI Generation Errors (GEN###)
	// ============================================================================

	// GEN001 indicates a spec model value the renderer cannot express in OpenAPI
	GEN001 = "GEN001"
)

// ErrorInfo provides structured information about an error code.
type ErrorInfo struct {
	Code        string
	Phase       string
	Category    string
	Description string
}

// ErrorRegistry maps error codes to their information.
var ErrorRegistry = map[string]ErrorInfo{
	LDR001: {LDR001, "loader", "io", "Module file not found or unreadable"},
	LDR002: {LDR002, "loader", "dependency", "Circular module dependency"},
	LDR003: {LDR003, "loader", "resolution", "Import resolves to no known module"},
	LDR004: {LDR004, "loader", "namespace", "Duplicate module locator"},

	PAR001: {PAR001, "parser", "syntax", "Unexpected or missing token"},

	RES001: {RES001, "resolve", "scope", "Identifier not in scope"},
	RES002: {RES002, "resolve", "scope", "Unknown module alias"},
	RES003: {RES003, "resolve", "scope", "Name not found in qualified module"},

	INF001: {INF001, "infer", "unification", "Unification failure"},
	INF002: {INF002, "infer", "unification", "Occurs check failed"},
	INF003: {INF003, "infer", "completeness", "Incomplete type inference"},

	TYP001: {TYP001, "typecheck", "wellformed", "Well-formedness rule violated"},

	EVA001: {EVA001, "eval", "scope", "Unresolved variable at evaluation time"},
	EVA002: {EVA002, "eval", "conflict", "Duplicate relation path"},
	EVA003: {EVA003, "eval", "shape", "Value of unexpected shape"},

	ANN001: {ANN001, "annotation", "syntax", "Malformed annotation YAML"},

	CFG001: {CFG001, "config", "syntax", "Malformed TOML config"},
	CFG002: {CFG002, "config", "missing", "Required config field missing"},

	GEN001: {GEN001, "openapi", "unsupported", "Value not representable in OpenAPI"},
}

// GetErrorInfo returns information about an error code.
func GetErrorInfo(code string) (ErrorInfo, bool) {
	info, exists := ErrorRegistry[code]
	return info, exists
}

// IsLoaderError checks if the error code is a loader error.
func IsLoaderError(code string) bool {
	info, exists := GetErrorInfo(code)
	return exists && info.Phase == "loader"
}

// IsResolveError checks if the error code is a resolver error.
func IsResolveError(code string) bool {
	info, exists := GetErrorInfo(code)
	return exists && info.Phase == "resolve"
}

// IsInferError checks if the error code is an inference error.
func IsInferError(code string) bool {
	info, exists := GetErrorInfo(code)
	return exists && info.Phase == "infer"
}

// IsTypeError checks if the error code is a type checking error.
func IsTypeError(code string) bool {
	info, exists := GetErrorInfo(code)
	return exists && info.Phase == "typecheck"
}

// IsEvalError checks if the error code is an evaluation error.
func IsEvalError(code string) bool {
	info, exists := GetErrorInfo(code)
	return exists && info.Phase == "eval"
}
