package server

import (
	"sync"

	"github.com/google/uuid"

	"github.com/matzehuels/pointlayer/pkg/cache"
	"github.com/matzehuels/pointlayer/pkg/config"
	"github.com/matzehuels/pointlayer/pkg/errors"
	"github.com/matzehuels/pointlayer/pkg/layer"
	"github.com/matzehuels/pointlayer/pkg/pipeline"
	"github.com/matzehuels/pointlayer/pkg/table"
)

// instance is one layer held by the server. Its mutex serializes passes:
// a PointLayer is not safe for concurrent use.
type instance struct {
	mu sync.Mutex

	id    string
	file  *config.File // nil selects detected columns
	keyer cache.Keyer

	layer    *layer.PointLayer
	dataset  *table.Dataset
	sameData bool
	// lastFilter is the filter of the latest pass; a different one is a new row source.
	lastFilter []int

	// last is the latest formatting pass and the options it ran with.
	last     *layer.Descriptor
	lastOpts pipeline.Options
}

// Registry maps layer IDs to instances.
type Registry struct {
	mu        sync.RWMutex
	instances map[string]*instance
	keyer     cache.Keyer
}

// NewRegistry creates an empty registry. Cache keys of each instance are
// scoped under its ID.
func NewRegistry(keyer cache.Keyer) *Registry {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Registry{instances: make(map[string]*instance), keyer: keyer}
}

// Create registers a new instance and returns its ID.
func (r *Registry) Create(f *config.File) string {
	id := uuid.NewString()
	inst := &instance{
		id:    id,
		file:  f,
		keyer: cache.NewScopedKeyer(r.keyer, "layer:"+id+":"),
	}
	r.mu.Lock()
	r.instances[id] = inst
	r.mu.Unlock()
	return id
}

// Get returns the instance for id.
func (r *Registry) Get(id string) (*instance, error) {
	if err := errors.ValidateLayerID(id); err != nil {
		return nil, err
	}
	r.mu.RLock()
	inst, ok := r.instances[id]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.New(errors.ErrCodeLayerNotFound, "layer %s not found", id)
	}
	return inst, nil
}

// Delete discards the instance for id.
func (r *Registry) Delete(id string) error {
	if err := errors.ValidateLayerID(id); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.instances[id]; !ok {
		return errors.New(errors.ErrCodeLayerNotFound, "layer %s not found", id)
	}
	delete(r.instances, id)
	return nil
}

// Len returns the number of live instances.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.instances)
}
