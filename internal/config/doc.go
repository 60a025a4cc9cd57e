// Package config defines how workflow descriptions are loaded. It declares
// the format-agnostic Loader interface and routes a path to the concrete
// loader registered for its file extension.
//
// The workflow.Graph a Loader returns is the single input of the validator
// and the dag builder. Concrete loaders, such as for HCL or JSON and YAML,
// live in separate packages.
package config
