package extension

import (
	"fmt"

	"github.com/toyz/tether/internal/symbols"
	"github.com/toyz/tether/internal/utils"
)

// Registry holds extensions by name, consulted in registration order
type Registry struct {
	*utils.BaseRegistry[string, Extension]
}

// NewRegistry creates an empty extension registry
func NewRegistry() *Registry {
	base := utils.NewBaseRegistry[string, Extension]("extension", "extension name")
	base.SetValidator(utils.ChainValidators[string, Extension](
		utils.NotEmptyKeyValidator[Extension]("extension name"),
		utils.NoDuplicateValidator[string, Extension]("extension name"),
		func(name string, ext Extension, _ map[string]Extension) error {
			if ext == nil {
				return fmt.Errorf("extension '%s' is nil", name)
			}
			return nil
		},
	))
	return &Registry{BaseRegistry: base}
}

// Extensions returns the registered extensions in registration order
func (r *Registry) Extensions() []Extension {
	return r.Values()
}

// Find returns the first extension applicable to the request
func (r *Registry) Find(table symbols.Table, typ symbols.TypeRef, tags symbols.TagSet) (name string, gen Generator, ok bool) {
	r.ForEach(func(extName string, ext Extension) bool {
		if g, applies := ext.DependencyGenerator(table, typ, tags); applies {
			name, gen, ok = extName, g, true
			return false
		}
		return true
	})
	return name, gen, ok
}
