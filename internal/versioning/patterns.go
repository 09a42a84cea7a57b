package versioning

// PatternPreset pairs a capture regex with its replacement template for
// a well-known generic file shape.
type PatternPreset struct {
	Pattern     string
	Replacement string
}

// CommonPatterns are ready-made generic-handler configurations for file
// types that carry versions outside structured documents.
var CommonPatterns = map[string]PatternPreset{
	"c_header": {
		Pattern:     `(#define\s+VERSION\s+["']?)([^"']+)(["']?)`,
		Replacement: `${1}{version}${3}`,
	},
	"cmake": {
		Pattern:     `(VERSION\s+)([^\s)]+)`,
		Replacement: `${1}{version}`,
	},
	"dockerfile": {
		Pattern:     `(LABEL\s+version\s*=\s*["']?)([^"']+)(["']?)`,
		Replacement: `${1}{version}${3}`,
	},
	"makefile": {
		Pattern:     `(VERSION\s*[:=]\s*)([^\s]+)`,
		Replacement: `${1}{version}`,
	},
	"shell_script": {
		Pattern:     `(VERSION\s*=\s*["']?)([^"']+)(["']?)`,
		Replacement: `${1}{version}${3}`,
	},
}
