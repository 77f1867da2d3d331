package api

// ChartMetadata is the typed view of the well-known Chart.yaml keys. It is only
// used for reading; rewrites go through a yaml.Node tree so that keys this
// struct does not know about survive untouched.
type ChartMetadata struct {
	APIVersion  string `yaml:"apiVersion"`
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	AppVersion  string `yaml:"appVersion"`
	Description string `yaml:"description,omitempty"`
	Type        string `yaml:"type,omitempty"`
}
