package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Invariant violations (K001-K099)
	// ============================================

	"K001": {
		Category:   CategoryInvariant,
		Message:    "Fragment is already mounted",
		Suggestion: "Detach the fragment before mounting it again.",
	},
	"K002": {
		Category:   CategoryInvariant,
		Message:    "Parent index out of range",
		Suggestion: "A parent index must refer to a node added earlier to the same builder.",
	},
	"K003": {
		Category: CategoryInvariant,
		Message:  "Node has no parent",
	},
	"K004": {
		Category:   CategoryInvariant,
		Message:    "Unknown dependency id",
		Suggestion: "Add the id to the component's Dependencies() list.",
	},
	"K005": {
		Category:   CategoryInvariant,
		Message:    "Conflicting component borrow",
		Suggestion: "Do not mutate a component from inside a closure that is reading it.",
	},
	"K006": {
		Category: CategoryInvariant,
		Message:  "Builder already consumed",
	},

	// ============================================
	// Host boundary (K100-K199)
	// ============================================

	"K101": {
		Category: CategoryHost,
		Message:  "Host node creation failed",
	},
	"K102": {
		Category: CategoryHost,
		Message:  "Host insert failed",
	},
	"K103": {
		Category: CategoryHost,
		Message:  "Host remove failed",
	},
	"K104": {
		Category: CategoryHost,
		Message:  "Host text update failed",
	},
	"K105": {
		Category: CategoryHost,
		Message:  "Host listener binding failed",
	},

	// ============================================
	// Protocol and transport (K200-K299)
	// ============================================

	"K201": {
		Category: CategoryProtocol,
		Message:  "Malformed frame",
	},
	"K202": {
		Category: CategoryProtocol,
		Message:  "Unknown node id",
	},
	"K203": {
		Category:   CategoryProtocol,
		Message:    "Unknown component",
		Suggestion: "Register the component factory with the server.",
	},

	// ============================================
	// Configuration and storage (K300-K399)
	// ============================================

	"K301": {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},
	"K302": {
		Category: CategoryConfig,
		Message:  "Configuration file unreadable",
	},
	"K303": {
		Category: CategoryConfig,
		Message:  "Snapshot store failed",
	},
}

// GetAllCodes returns all registered error codes.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
