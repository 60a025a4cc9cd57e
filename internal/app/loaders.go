package app

import (
	"github.com/vk/traverse/internal/config"
	"github.com/vk/traverse/internal/hcl"
	"github.com/vk/traverse/internal/yamljson"
)

// coreLoaders is the definitive list of workflow formats compiled into the
// traverse binary, keyed by file extension.
func coreLoaders() config.ByExtension {
	yj := yamljson.NewLoader()
	return config.ByExtension{
		".hcl":  hcl.NewLoader(),
		".json": yamljson.NewJSONLoader(),
		".yaml": yj,
		".yml":  yj,
	}
}
