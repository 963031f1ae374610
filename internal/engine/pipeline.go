package engine

import (
	"context"
	"fmt"
)

// ResourceEntry holds a resource with its ID for ordered resolution.
type ResourceEntry struct {
	ID       string
	Resource Resource
}

// Pipeline holds the collectors a job's resources depend on plus the ordered
// list of resources to resolve into archive entries. Run returns an ordered
// []Entry rather than a map, because entries must appear in the archive in
// the same order their resources were declared, and a map does not preserve
// insertion order.
type Pipeline struct {
	name       string
	collectors map[string]Collector
	resources  []ResourceEntry
}

func NewPipeline(name string) *Pipeline {
	return &Pipeline{
		name:       name,
		collectors: make(map[string]Collector),
	}
}

func (p *Pipeline) AddCollector(id string, collector Collector) error {
	if _, ok := p.collectors[id]; ok {
		return fmt.Errorf("collector %s already exists", id)
	}

	p.collectors[id] = collector
	return nil
}

func (p *Pipeline) AddResource(id string, resource Resource) error {
	for _, entry := range p.resources {
		if entry.ID == id {
			return fmt.Errorf("resource %s already exists", id)
		}
	}

	p.resources = append(p.resources, ResourceEntry{ID: id, Resource: resource})
	return nil
}

func (p *Pipeline) Collectors() map[string]Collector {
	return p.collectors
}

func (p *Pipeline) Resources() []ResourceEntry {
	return p.resources
}

func (p *Pipeline) GetCollector(id string) (Collector, bool) {
	collector, ok := p.collectors[id]
	if !ok {
		return nil, false
	}
	return collector, true
}

// Run resolves every resource in job order and returns the ordered entries it
// produced. Resolution is sequential: a slow resource never starts resolving
// ahead of an earlier one, so memory use stays bounded to one entry at a time.
func (p *Pipeline) Run(ctx context.Context) ([]Entry, error) {
	entries := make([]Entry, 0, len(p.resources))

	for _, re := range p.resources {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("context cancelled while running pipeline at resource '%s': %w", re.ID, err)
		}

		entry, err := re.Resource.Resolve(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve resource '%s': %w", re.ID, err)
		}

		entries = append(entries, entry)
	}

	return entries, nil
}
