package allowlist

import (
	"sort"

	"github.com/datastax/query-plan-apis/types"
)

// Options configures how resources are registered
type Options struct {
	// Operators are the filter operators the server accepts in resource declarations
	Operators      types.OperatorSet
	DefaultPerPage int
}

func DefaultOptions() Options {
	return Options{
		Operators:      types.AllOperatorSet(),
		DefaultPerPage: DefaultPerPage,
	}
}

// Registry holds the validated resources. It is never modified after NewRegistry returns
// and can be read from any number of goroutines.
type Registry struct {
	resources map[string]*Resource
	names     []string
}

// NewRegistry validates every resource and builds its lookup indexes. The first invalid
// declaration is returned as a *ConfigurationError.
func NewRegistry(opts Options, resources ...Resource) (*Registry, error) {
	if opts.DefaultPerPage <= 0 {
		opts.DefaultPerPage = DefaultPerPage
	}
	if opts.DefaultPerPage > MaxPerPage {
		opts.DefaultPerPage = MaxPerPage
	}

	registry := &Registry{
		resources: make(map[string]*Resource, len(resources)),
		names:     make([]string, 0, len(resources)),
	}

	for i := range resources {
		resource := resources[i]
		if _, ok := registry.resources[resource.Name]; ok {
			return nil, NewConfigurationError(resource.Name, "", "duplicate resource")
		}
		if err := resource.validate(opts.Operators); err != nil {
			return nil, err
		}
		if resource.PerPage == 0 {
			resource.PerPage = opts.DefaultPerPage
		}
		resource.buildIndexes()
		registry.resources[resource.Name] = &resource
		registry.names = append(registry.names, resource.Name)
	}

	sort.Strings(registry.names)
	return registry, nil
}

func (r *Registry) Resource(name string) (*Resource, bool) {
	resource, ok := r.resources[name]
	return resource, ok
}

// Names returns the registered resource names sorted alphabetically
func (r *Registry) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}
