package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
	Example    string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Binding Errors (H100-H109)
	// ============================================

	"H100": {
		Category: CategoryBinding,
		Message:  "Binding setup failed",
	},
	"H101": {
		Category:   CategoryBinding,
		Message:    "Malformed bind expression",
		Detail:     "A bind attribute must have the form property.path=name or property.path=name:Type.",
		Suggestion: "Check for a missing '=' or an empty property or state name",
		Example:    `<p hx-bind="innerText=count:Number">0</p>`,
	},
	"H102": {
		Category:   CategoryBinding,
		Message:    "Unknown coercion type",
		Detail:     "The type after ':' in a bind attribute must be a registered coercion.",
		Suggestion: "Use one of Number, Boolean, String, Int or JSON",
	},
	"H103": {
		Category:   CategoryBinding,
		Message:    "State declared twice",
		Detail:     "Two typed bindings under the same state owner seed the same name. Only one binding may carry the type; the others read the value.",
		Suggestion: "Drop the ':Type' suffix from all but one binding",
		Example: `<div hx-state>
  <input hx-bind="value=count:Number" value="0">
  <span hx-bind="innerText=count"></span>
</div>`,
	},
	"H104": {
		Category:   CategoryBinding,
		Message:    "No state owner",
		Detail:     "The element is not inside an element carrying the state attribute.",
		Suggestion: "Add hx-state to an ancestor of the element",
	},
	"H105": {
		Category:   CategoryBinding,
		Message:    "Unknown state name",
		Detail:     "The state name is read before any typed binding declared it in the owner.",
		Suggestion: "Declare the name with a typed binding, e.g. innerText=count:Number",
	},
	"H106": {
		Category: CategoryBinding,
		Message:  "State store already attached",
	},
	"H107": {
		Category:   CategoryBinding,
		Message:    "Property path not found",
		Detail:     "An intermediate segment of the property path does not exist or is not an object. Intermediate objects are never created.",
		Suggestion: "Bind to an existing object such as style or dataset",
	},

	// ============================================
	// Expression Errors (H110-H119)
	// ============================================

	"H110": {
		Category:   CategoryExpression,
		Message:    "Effect expression failed",
		Suggestion: "Check the effect syntax for the configured engine",
	},
	"H111": {
		Category:   CategoryExpression,
		Message:    "Effect expression timed out",
		Suggestion: "Raise effects.timeout or simplify the script",
	},
	"H112": {
		Category:   CategoryExpression,
		Message:    "Unknown expression engine",
		Suggestion: "Use one of expr, cel or js",
	},

	// ============================================
	// Config Errors (H120-H129)
	// ============================================

	"H120": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
	},
	"H121": {
		Category:   CategoryConfig,
		Message:    "Configuration file not found",
		Suggestion: "Create hxstate.json or hxstate.yaml, or pass --config",
	},
	"H122": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},

	// ============================================
	// Source Errors (H130-H139)
	// ============================================

	"H130": {
		Category:   CategorySource,
		Message:    "Unsupported document location",
		Suggestion: "Use a file path, '-' for stdin or s3://bucket/key",
	},
	"H131": {
		Category:   CategorySource,
		Message:    "S3 is not configured",
		Suggestion: "Set source.s3.region in the config file",
	},
	"H132": {
		Category: CategorySource,
		Message:  "Document too large",
	},
	"H133": {
		Category: CategorySource,
		Message:  "Document could not be loaded",
	},

	// ============================================
	// Server and CLI Errors (H140-H149)
	// ============================================

	"H140": {
		Category: CategoryServer,
		Message:  "Server failed",
	},
	"H141": {
		Category: CategoryCLI,
		Message:  "Invalid arguments",
	},
	"H199": {
		Category: CategoryCLI,
		Message:  "Command failed",
	},
}

// Lookup returns the template for a code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
