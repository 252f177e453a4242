package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// Upload errors (E001-E019)

	"E001": {
		Category: CategoryUpload,
		Message:  "No file selected",
		Detail:   "A resume file must be chosen before the form can be submitted. Nothing was sent.",
	},
	"E002": {
		Category: CategoryUpload,
		Message:  "Upload rejected by server",
		Detail:   "The server answered the upload with a non-2xx status.",
	},
	"E003": {
		Category: CategoryUpload,
		Message:  "Upload server unreachable",
		Detail:   "The request never reached the server, so no response was received.",
	},
	"E004": {
		Category: CategoryUpload,
		Message:  "Selected file could not be read",
		Detail:   "The file was selected but its contents could not be read. Nothing was sent.",
	},
	"E005": {
		Category: CategoryUpload,
		Message:  "Invalid S3 location",
		Detail:   "S3 selections must look like s3://bucket/key.",
	},

	// Configuration errors (E120-E139)

	"E120": {
		Category: CategoryConfig,
		Message:  "Invalid resumeup.json",
		Detail:   "The resumeup.json configuration file is malformed.",
	},
	"E121": {
		Category: CategoryConfig,
		Message:  "Missing required configuration",
		Detail:   "A required configuration value is not set.",
	},
	"E122": {
		Category: CategoryConfig,
		Message:  "Invalid server URL",
		Detail:   "The server must be an absolute http or https URL.",
	},
	"E123": {
		Category: CategoryConfig,
		Message:  "Invalid timeout",
		Detail:   "The request timeout must be a positive Go duration such as 30s.",
	},
	"E124": {
		Category: CategoryConfig,
		Message:  "Invalid path",
		Detail:   "Endpoint and results paths must start with /.",
	},

	// CLI errors (E140-E159)

	"E140": {
		Category: CategoryCLI,
		Message:  "Configuration already exists",
		Detail:   "A resumeup.json file already exists in this directory.",
	},
	"E141": {
		Category: CategoryCLI,
		Message:  "No resumeup.json found",
		Detail:   "No resumeup.json was found in this directory or any parent directory.",
	},
	"E142": {
		Category: CategoryCLI,
		Message:  "Invalid arguments",
		Detail:   "The command was called with arguments it does not accept.",
	},
}

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
