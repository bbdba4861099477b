package gcp

import (
	"context"
	"net/http"
	"time"

	"github.com/cloudlint/go-common/api"
	"github.com/cloudlint/go-common/cache"
)

// Project is the resource-manager view of a project.
type Project struct {
	ProjectID     string `json:"projectId" msgpack:"projectId"`
	Name          string `json:"name" msgpack:"name"`
	ProjectNumber string `json:"projectNumber" msgpack:"projectNumber"`
	State         string `json:"lifecycleState" msgpack:"lifecycleState"`
}

// projectExpire keeps project metadata across runs; it changes rarely.
const projectExpire = 6 * time.Hour

// NewProjectQuery returns the cached lookup of a project's resource-manager
// metadata. Every rule needing project details shares one fetch per project
// ID per TTL window; a permission error is cached and replayed the same
// way, so a forbidden project is reported consistently without hammering
// the API.
func NewProjectQuery(svc *cache.Service, client *api.Client) *cache.Query[*Project] {
	return cache.NewQuery(svc, "gcp.crm.project", cache.QueryConfig{Expire: projectExpire},
		func(ctx context.Context, args ...any) (*Project, error) {
			projectID := args[0].(string)
			var p Project
			if err := client.Do(ctx, http.MethodGet, "/v1/projects/"+projectID, nil, &p); err != nil {
				return nil, err
			}
			return &p, nil
		})
}
