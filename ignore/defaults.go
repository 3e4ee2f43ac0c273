package ignore

// DefaultPatterns are always excluded from archives and from the inbox.
// They cover dependency trees, build output and editor or OS leftovers
// that generated projects sometimes carry along.
var DefaultPatterns = []string{
	// Version control
	".git",
	".svn",
	".hg",

	// Dependencies
	"node_modules",
	"bower_components",
	".pnp.*",

	// Build output
	"dist",
	".next",
	".nuxt",
	".output",
	".vite",
	".cache",
	".parcel-cache",
	"coverage",

	// Editor leftovers
	"*.swp",
	"*.swo",
	"*~",
	"*.tmp",
	".#*",

	// OS files
	".DS_Store",
	"Thumbs.db",
	"desktop.ini",

	// Noise
	"*.log",
	"*.map",
}

// skipDirs are directory names never descended into.
var skipDirs = map[string]bool{
	".git": true, ".svn": true, ".hg": true,
	"node_modules": true, ".next": true, ".nuxt": true,
	".cache": true, ".parcel-cache": true, ".vite": true,
}
