package resources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-appstore/core"
	"github.com/goliatone/go-appstore/transport"
)

// Apps maps the app endpoints. The transport is held in a named field and
// called explicitly; resources never inherit request verbs.
type Apps struct {
	client *transport.Client
}

func NewApps(client *transport.Client) *Apps {
	return &Apps{client: client}
}

func (a *Apps) List(ctx context.Context) ([]core.App, error) {
	if err := requireClient(a.clientOrNil()); err != nil {
		return nil, err
	}
	items, err := a.client.FetchAll(ctx, "apps", nil)
	if err != nil {
		return nil, err
	}
	apps := make([]core.App, 0, len(items))
	for _, item := range items {
		app, err := appFromResource(item)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, nil
}

func (a *Apps) Get(ctx context.Context, appID string) (core.App, error) {
	if err := requireClient(a.clientOrNil()); err != nil {
		return core.App{}, err
	}
	appID = strings.TrimSpace(appID)
	if appID == "" {
		return core.App{}, core.NewBadInputError("resources: app id is required")
	}
	doc, err := a.client.Request(ctx, http.MethodGet, "apps/"+appID, nil, nil)
	if err != nil {
		return core.App{}, err
	}
	resource, err := doc.Resource()
	if err != nil {
		return core.App{}, err
	}
	return appFromResource(resource)
}

// ByBundleID looks an app up via the bundle id filter.
func (a *Apps) ByBundleID(ctx context.Context, bundleID string) (core.App, error) {
	if err := requireClient(a.clientOrNil()); err != nil {
		return core.App{}, err
	}
	bundleID = strings.TrimSpace(bundleID)
	if bundleID == "" {
		return core.App{}, core.NewBadInputError("resources: bundle id is required")
	}
	query := url.Values{}
	query.Set("filter[bundleId]", bundleID)
	doc, err := a.client.Request(ctx, http.MethodGet, "apps", query, nil)
	if err != nil {
		return core.App{}, err
	}
	items, err := doc.Resources()
	if err != nil {
		return core.App{}, err
	}
	if len(items) == 0 {
		return core.App{}, notFoundError(fmt.Sprintf("resources: no app with bundle id %q", bundleID))
	}
	return appFromResource(items[0])
}

// Update patches app-level attributes.
func (a *Apps) Update(ctx context.Context, appID string, attributes map[string]any) (core.App, error) {
	if err := requireClient(a.clientOrNil()); err != nil {
		return core.App{}, err
	}
	appID = strings.TrimSpace(appID)
	if appID == "" {
		return core.App{}, core.NewBadInputError("resources: app id is required")
	}
	payload := core.WriteDocument{Data: core.WriteResource{
		Type:       "apps",
		ID:         appID,
		Attributes: attributes,
	}}
	doc, err := a.client.Request(ctx, http.MethodPatch, "apps/"+appID, nil, payload)
	if err != nil {
		return core.App{}, err
	}
	resource, err := doc.Resource()
	if err != nil {
		return core.App{}, err
	}
	return appFromResource(resource)
}

// AppInfos lists the app-info containers of an app in server-returned order.
func (a *Apps) AppInfos(ctx context.Context, appID string) ([]core.AppInfo, error) {
	if err := requireClient(a.clientOrNil()); err != nil {
		return nil, err
	}
	appID = strings.TrimSpace(appID)
	if appID == "" {
		return nil, core.NewBadInputError("resources: app id is required")
	}
	doc, err := a.client.Request(ctx, http.MethodGet, "apps/"+appID+"/appInfos", nil, nil)
	if err != nil {
		return nil, err
	}
	items, err := doc.Resources()
	if err != nil {
		return nil, err
	}
	infos := make([]core.AppInfo, 0, len(items))
	for _, item := range items {
		info, err := appInfoFromResource(item)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (a *Apps) clientOrNil() *transport.Client {
	if a == nil {
		return nil
	}
	return a.client
}
