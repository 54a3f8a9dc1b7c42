package workspace

import (
	"context"
	"fmt"
	"strconv"

	"github.com/databricks/databricks-sdk-go/service/catalog"
	"github.com/databricks/databricks-sdk-go/service/dashboards"
	"github.com/databricks/databricks-sdk-go/service/jobs"
	"github.com/databricks/databricks-sdk-go/service/pipelines"

	"github.com/lakehouse-portfolio/workspace-tools/internal/agentbricks"
	"github.com/lakehouse-portfolio/workspace-tools/internal/manifest"
)

// Deleters builds the per-type remote deletion dispatch table. SDK-backed
// types go through the workspace client; Agent Bricks types (genie spaces,
// knowledge assistants, multi-agent supervisors) go through the bespoke HTTP
// client because the SDK has no surface for them.
// A nil sdk or bricks client leaves its types out of the table, so attempts
// to delete them report "unsupported resource type" instead of panicking.
func Deleters(sdk *SDK, bricks *agentbricks.Client) map[manifest.Type]manifest.RemoteDeleter {
	deleters := make(map[manifest.Type]manifest.RemoteDeleter)
	if sdk != nil {
		deleters[manifest.TypeDashboard] = dashboardDeleter{sdk}
		deleters[manifest.TypeJob] = jobDeleter{sdk}
		deleters[manifest.TypePipeline] = pipelineDeleter{sdk}
		deleters[manifest.TypeCatalog] = catalogDeleter{sdk}
		deleters[manifest.TypeSchema] = schemaDeleter{sdk}
		deleters[manifest.TypeVolume] = volumeDeleter{sdk}
	}
	if bricks != nil {
		deleters[manifest.TypeGenieSpace] = genieDeleter{bricks}
		deleters[manifest.TypeKnowledgeAssistant] = tileDeleter{bricks}
		deleters[manifest.TypeMultiAgentSupervisor] = tileDeleter{bricks}
	}
	return deleters
}

type dashboardDeleter struct{ sdk *SDK }

// Delete moves the dashboard to the trash rather than destroying it; that is
// the only deletion the Lakeview API offers.
func (d dashboardDeleter) Delete(ctx context.Context, id string) error {
	return d.sdk.Raw().Lakeview.Trash(ctx, dashboards.TrashDashboardRequest{DashboardId: id})
}

type jobDeleter struct{ sdk *SDK }

func (d jobDeleter) Delete(ctx context.Context, id string) error {
	jobID, err := ParseJobID(id)
	if err != nil {
		return err
	}
	return d.sdk.Raw().Jobs.Delete(ctx, jobs.DeleteJob{JobId: jobID})
}

// ParseJobID converts a tracked job identifier into the integer id the jobs
// API requires.
func ParseJobID(id string) (int64, error) {
	jobID, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("workspace: job id %q is not an integer: %w", id, err)
	}
	return jobID, nil
}

type pipelineDeleter struct{ sdk *SDK }

func (d pipelineDeleter) Delete(ctx context.Context, id string) error {
	return d.sdk.Raw().Pipelines.Delete(ctx, pipelines.DeletePipelineRequest{PipelineId: id})
}

// Unity Catalog objects are addressed by fully qualified name, which is also
// the tracked id.

type catalogDeleter struct{ sdk *SDK }

func (d catalogDeleter) Delete(ctx context.Context, id string) error {
	return d.sdk.Raw().Catalogs.Delete(ctx, catalog.DeleteCatalogRequest{Name: id, Force: true})
}

type schemaDeleter struct{ sdk *SDK }

func (d schemaDeleter) Delete(ctx context.Context, id string) error {
	return d.sdk.Raw().Schemas.Delete(ctx, catalog.DeleteSchemaRequest{FullName: id})
}

type volumeDeleter struct{ sdk *SDK }

func (d volumeDeleter) Delete(ctx context.Context, id string) error {
	return d.sdk.Raw().Volumes.Delete(ctx, catalog.DeleteVolumeRequest{Name: id})
}

type genieDeleter struct{ bricks *agentbricks.Client }

func (d genieDeleter) Delete(ctx context.Context, id string) error {
	return d.bricks.DeleteGenieSpace(ctx, id)
}

type tileDeleter struct{ bricks *agentbricks.Client }

func (d tileDeleter) Delete(ctx context.Context, id string) error {
	return d.bricks.DeleteTile(ctx, id)
}
