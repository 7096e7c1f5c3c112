package config

// DefaultDatasetGlobs match the file extensions the loader understands.
var DefaultDatasetGlobs = []string{
	"**/*.json",
	"**/*.json.gz",
}

// DefaultExcludes are glob patterns skipped during dataset discovery.
var DefaultExcludes = []string{
	"**/.*",
	"node_modules/**",
	"package.json",
	"package-lock.json",
	"tsconfig.json",
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Title:    "molscope",
		Host:     "127.0.0.1",
		Port:     8080,
		DataDir:  ".",
		Datasets: DefaultDatasetGlobs,
		Exclude:  DefaultExcludes,
		Database: ".molscope.db",
		Convert: ConvertConfig{
			Cutoff:   3.5,
			Compress: false,
		},
	}
}
