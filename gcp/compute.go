// Package gcp holds the gateway objects rules go through to reach cloud
// resource state. Gateways own a loader guarding their bulk fetch and
// expose cached queries for per-resource lookups; rules never talk to the
// API client directly.
package gcp

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/cloudlint/go-common/api"
	"github.com/cloudlint/go-common/loader"
)

// Instance is a compute instance as reported by the instances listing.
type Instance struct {
	Name   string `json:"name" msgpack:"name"`
	Zone   string `json:"zone" msgpack:"zone"`
	Status string `json:"status" msgpack:"status"`
}

type instanceList struct {
	Items []Instance `json:"items"`
}

type zoneList struct {
	Items []struct {
		Name string `json:"name"`
	} `json:"items"`
}

// ComputeGateway fetches a project's compute inventory once, no matter how
// many rules ask for it concurrently. Accessors block until the load has
// completed; a failed load fails every accessor the same way.
type ComputeGateway struct {
	client  *api.Client
	project string
	loader  *loader.Loader

	// Written by load, read only after EnsureLoaded.
	instances []Instance
	zones     []string
}

// NewComputeGateway returns a gateway for the given project. Nothing is
// fetched until the first accessor call.
func NewComputeGateway(client *api.Client, project string) *ComputeGateway {
	g := &ComputeGateway{client: client, project: project}
	g.loader = loader.New(g.load)
	return g
}

func (g *ComputeGateway) load(ctx context.Context) error {
	var eg errgroup.Group
	eg.Go(func() error {
		var list zoneList
		err := g.client.Do(ctx, http.MethodGet,
			fmt.Sprintf("/compute/v1/projects/%s/zones", g.project), nil, &list)
		if err != nil {
			return err
		}
		zones := make([]string, 0, len(list.Items))
		for _, z := range list.Items {
			zones = append(zones, z.Name)
		}
		g.zones = zones
		return nil
	})
	eg.Go(func() error {
		var list instanceList
		err := g.client.Do(ctx, http.MethodGet,
			fmt.Sprintf("/compute/v1/projects/%s/aggregated/instances", g.project), nil, &list)
		if err != nil {
			return err
		}
		g.instances = list.Items
		return nil
	})
	return eg.Wait()
}

// Instances returns every compute instance in the project.
func (g *ComputeGateway) Instances(ctx context.Context) ([]Instance, error) {
	if err := g.loader.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	return g.instances, nil
}

// Zones returns the zone names available to the project.
func (g *ComputeGateway) Zones(ctx context.Context) ([]string, error) {
	if err := g.loader.EnsureLoaded(ctx); err != nil {
		return nil, err
	}
	return g.zones, nil
}
