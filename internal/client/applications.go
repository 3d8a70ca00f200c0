package client

import (
	"context"
	"net/http"
	"time"

	"github.com/doraapp/dora/internal/cache"
	"github.com/doraapp/dora/internal/model"
)

// Applications returns the user's visa applications, remote-first. A
// successful remote read replaces the mirror wholesale; any failure returns
// the mirror verbatim. The result is never nil.
func (c *Client) Applications(ctx context.Context) ([]model.VisaApplication, Source) {
	var apps []model.VisaApplication
	if err := c.request(ctx, http.MethodGet, "/applications", nil, &apps); err == nil {
		if apps == nil {
			apps = []model.VisaApplication{}
		}
		c.persistApplications(apps)
		return apps, SourceRemote
	}

	return c.localApplications(), SourceLocal
}

// Application fetches one application by id, falling back to a scan of the
// local mirror. ErrNotFound means neither side has the record.
func (c *Client) Application(ctx context.Context, id string) (*model.VisaApplication, Source, error) {
	var app model.VisaApplication
	if err := c.request(ctx, http.MethodGet, "/applications/"+id, nil, &app); err == nil {
		return &app, SourceRemote, nil
	}

	for _, a := range c.localApplications() {
		if a.ID == id {
			return &a, SourceLocal, nil
		}
	}
	return nil, SourceLocal, ErrNotFound
}

// NewApplication describes a create request.
type NewApplication struct {
	DestinationCountry string `json:"destination_country"`
	VisaType           string `json:"visa_type"`
	TotalSteps         int    `json:"total_steps"`
}

// CreateApplication creates an application remote-first. When the backend is
// down it synthesizes a local draft with a fresh id and persists it, so the
// user can keep working offline. It never fails.
func (c *Client) CreateApplication(ctx context.Context, req NewApplication) (*model.VisaApplication, Source) {
	var app model.VisaApplication
	if err := c.request(ctx, http.MethodPost, "/applications", req, &app); err == nil {
		c.persistApplications(prependApplication(app, c.localApplications()))
		return &app, SourceRemote
	}

	totalSteps := req.TotalSteps
	if totalSteps < 1 {
		totalSteps = 1
	}
	now := time.Now().UTC()
	draft := model.VisaApplication{
		ID:                 c.newID(),
		DestinationCountry: req.DestinationCountry,
		VisaType:           req.VisaType,
		Status:             model.AppDraft,
		CurrentStep:        1,
		TotalSteps:         totalSteps,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	c.persistApplications(prependApplication(draft, c.localApplications()))
	return &draft, SourceLocal
}

// ApplicationUpdate carries the fields an update may change. Nil pointers
// leave the field alone.
type ApplicationUpdate struct {
	DestinationCountry *string         `json:"destination_country,omitempty"`
	VisaType           *string         `json:"visa_type,omitempty"`
	Status             *string         `json:"status,omitempty"`
	CurrentStep        *int            `json:"current_step,omitempty"`
	TotalSteps         *int            `json:"total_steps,omitempty"`
	DocumentsInfo      map[string]bool `json:"documents_info,omitempty"`
	SubmittedAt        *time.Time      `json:"submitted_at,omitempty"`
}

// UpdateApplication applies a partial update remote-first; on failure the
// partial is spliced straight into the mirror. ErrNotFound only when no
// local or remote record with the id exists.
func (c *Client) UpdateApplication(ctx context.Context, id string, upd ApplicationUpdate) (*model.VisaApplication, Source, error) {
	var app model.VisaApplication
	if err := c.request(ctx, http.MethodPatch, "/applications/"+id, upd, &app); err == nil {
		c.persistApplications(spliceApplication(app, c.localApplications()))
		return &app, SourceRemote, nil
	}

	apps := c.localApplications()
	for i := range apps {
		if apps[i].ID != id {
			continue
		}
		applyUpdate(&apps[i], upd)
		apps[i].UpdatedAt = time.Now().UTC()
		c.persistApplications(apps)
		local := apps[i]
		return &local, SourceLocal, nil
	}
	return nil, SourceLocal, ErrNotFound
}

// UpdateApplicationStep moves the wizard to a step, deriving progress and
// status: reaching the final step submits and stamps submitted_at; any step
// past the first marks the application in progress.
func (c *Client) UpdateApplicationStep(ctx context.Context, id string, step int, docs map[string]bool) (*model.VisaApplication, Source, error) {
	app, _, err := c.Application(ctx, id)
	if err != nil {
		return nil, SourceLocal, err
	}

	status := model.StatusForStep(step, app.TotalSteps, app.Status)
	upd := ApplicationUpdate{
		CurrentStep:   &step,
		Status:        &status,
		DocumentsInfo: docs,
	}
	if status == model.AppSubmitted && app.SubmittedAt == nil {
		now := time.Now().UTC()
		upd.SubmittedAt = &now
	}
	return c.UpdateApplication(ctx, id, upd)
}

// DeleteApplication removes an application. The mirror entry goes away
// regardless of the remote outcome, so local state never resurrects a
// remotely-deleted record. Delete is idempotent and always reports true.
func (c *Client) DeleteApplication(ctx context.Context, id string) bool {
	c.request(ctx, http.MethodDelete, "/applications/"+id, nil, nil)

	apps := c.localApplications()
	kept := apps[:0]
	for _, a := range apps {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	c.persistApplications(kept)
	return true
}

func (c *Client) localApplications() []model.VisaApplication {
	var apps []model.VisaApplication
	if ok, err := c.cache.Get(cache.KeyApplications, &apps); !ok || err != nil {
		return []model.VisaApplication{}
	}
	return apps
}

func (c *Client) persistApplications(apps []model.VisaApplication) {
	if err := c.cache.Set(cache.KeyApplications, apps); err != nil {
		c.logger.Warn("persist applications mirror", "error", err)
	}
}

func prependApplication(app model.VisaApplication, apps []model.VisaApplication) []model.VisaApplication {
	return append([]model.VisaApplication{app}, apps...)
}

func spliceApplication(app model.VisaApplication, apps []model.VisaApplication) []model.VisaApplication {
	for i := range apps {
		if apps[i].ID == app.ID {
			apps[i] = app
			return apps
		}
	}
	return prependApplication(app, apps)
}

func applyUpdate(app *model.VisaApplication, upd ApplicationUpdate) {
	if upd.DestinationCountry != nil {
		app.DestinationCountry = *upd.DestinationCountry
	}
	if upd.VisaType != nil {
		app.VisaType = *upd.VisaType
	}
	if upd.Status != nil {
		app.Status = *upd.Status
	}
	if upd.TotalSteps != nil {
		app.TotalSteps = *upd.TotalSteps
	}
	if upd.CurrentStep != nil {
		app.CurrentStep = *upd.CurrentStep
	}
	if upd.SubmittedAt != nil {
		app.SubmittedAt = upd.SubmittedAt
	}
	if upd.DocumentsInfo != nil {
		if app.DocumentsInfo == nil {
			app.DocumentsInfo = make(map[string]bool)
		}
		for k, v := range upd.DocumentsInfo {
			app.DocumentsInfo[k] = v
		}
	}
	app.ProgressPercentage = model.Progress(app.CurrentStep, app.TotalSteps)
}
