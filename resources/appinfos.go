package resources

import (
	"context"
	"net/http"
	"strings"

	"github.com/goliatone/go-appstore/core"
	"github.com/goliatone/go-appstore/transport"
)

// AppInfos maps the app-info localization endpoints.
type AppInfos struct {
	client *transport.Client
}

func NewAppInfos(client *transport.Client) *AppInfos {
	return &AppInfos{client: client}
}

// Localizations lists every localization of one app-info container,
// following pagination in server order.
func (a *AppInfos) Localizations(ctx context.Context, appInfoID string) ([]core.LocalizationRecord, error) {
	if err := requireClient(a.clientOrNil()); err != nil {
		return nil, err
	}
	appInfoID = strings.TrimSpace(appInfoID)
	if appInfoID == "" {
		return nil, core.NewBadInputError("resources: app info id is required")
	}
	items, err := a.client.FetchAll(ctx, "appInfos/"+appInfoID+"/appInfoLocalizations", nil)
	if err != nil {
		return nil, err
	}
	records := make([]core.LocalizationRecord, 0, len(items))
	for _, item := range items {
		record, err := localizationFromResource(item)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

type createLocalizationAttributes struct {
	Locale string `json:"locale"`
	core.AppInfoLocalizationAttributes
}

// CreateLocalization adds a locale entry to an app-info container.
func (a *AppInfos) CreateLocalization(ctx context.Context, appInfoID string, locale string, attrs core.AppInfoLocalizationAttributes) (core.LocalizationRecord, error) {
	if err := requireClient(a.clientOrNil()); err != nil {
		return core.LocalizationRecord{}, err
	}
	appInfoID = strings.TrimSpace(appInfoID)
	locale = strings.TrimSpace(locale)
	if appInfoID == "" {
		return core.LocalizationRecord{}, core.NewBadInputError("resources: app info id is required")
	}
	if locale == "" {
		return core.LocalizationRecord{}, core.NewBadInputError("resources: locale is required")
	}

	payload := core.WriteDocument{Data: core.WriteResource{
		Type: "appInfoLocalizations",
		Attributes: createLocalizationAttributes{
			Locale:                        locale,
			AppInfoLocalizationAttributes: attrs,
		},
		Relationships: map[string]core.Relationship{
			"appInfo": {Data: core.RelationshipData{Type: "appInfos", ID: appInfoID}},
		},
	}}
	doc, err := a.client.Request(ctx, http.MethodPost, "appInfoLocalizations", nil, payload)
	if err != nil {
		return core.LocalizationRecord{}, err
	}
	resource, err := doc.Resource()
	if err != nil {
		return core.LocalizationRecord{}, err
	}
	return localizationFromResource(resource)
}

// UpdateLocalization patches only the supplied fields; nil fields stay
// untouched server-side.
func (a *AppInfos) UpdateLocalization(ctx context.Context, localizationID string, attrs core.AppInfoLocalizationAttributes) (core.LocalizationRecord, error) {
	if err := requireClient(a.clientOrNil()); err != nil {
		return core.LocalizationRecord{}, err
	}
	localizationID = strings.TrimSpace(localizationID)
	if localizationID == "" {
		return core.LocalizationRecord{}, core.NewBadInputError("resources: localization id is required")
	}

	payload := core.WriteDocument{Data: core.WriteResource{
		Type:       "appInfoLocalizations",
		ID:         localizationID,
		Attributes: attrs,
	}}
	doc, err := a.client.Request(ctx, http.MethodPatch, "appInfoLocalizations/"+localizationID, nil, payload)
	if err != nil {
		return core.LocalizationRecord{}, err
	}
	resource, err := doc.Resource()
	if err != nil {
		return core.LocalizationRecord{}, err
	}
	return localizationFromResource(resource)
}

func (a *AppInfos) DeleteLocalization(ctx context.Context, localizationID string) error {
	if err := requireClient(a.clientOrNil()); err != nil {
		return err
	}
	localizationID = strings.TrimSpace(localizationID)
	if localizationID == "" {
		return core.NewBadInputError("resources: localization id is required")
	}
	_, err := a.client.Request(ctx, http.MethodDelete, "appInfoLocalizations/"+localizationID, nil, nil)
	return err
}

func (a *AppInfos) clientOrNil() *transport.Client {
	if a == nil {
		return nil
	}
	return a.client
}
