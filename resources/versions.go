package resources

import (
	"context"
	"net/http"
	"strings"

	"github.com/goliatone/go-appstore/core"
	"github.com/goliatone/go-appstore/transport"
)

// Order used to decide which version counts as "current" when several exist.
var currentVersionStates = []string{
	"READY_FOR_SALE",
	"PROCESSING_FOR_APP_STORE",
	"PENDING_DEVELOPER_RELEASE",
	"IN_REVIEW",
	"WAITING_FOR_REVIEW",
	"PREPARE_FOR_SUBMISSION",
	"DEVELOPER_REJECTED",
}

// Versions maps the app store version endpoints.
type Versions struct {
	client *transport.Client
}

func NewVersions(client *transport.Client) *Versions {
	return &Versions{client: client}
}

func (v *Versions) List(ctx context.Context, appID string) ([]core.Version, error) {
	if err := requireClient(v.clientOrNil()); err != nil {
		return nil, err
	}
	appID = strings.TrimSpace(appID)
	if appID == "" {
		return nil, core.NewBadInputError("resources: app id is required")
	}
	doc, err := v.client.Request(ctx, http.MethodGet, "apps/"+appID+"/appStoreVersions", nil, nil)
	if err != nil {
		return nil, err
	}
	items, err := doc.Resources()
	if err != nil {
		return nil, err
	}
	versions := make([]core.Version, 0, len(items))
	for _, item := range items {
		version, err := versionFromResource(item)
		if err != nil {
			return nil, err
		}
		versions = append(versions, version)
	}
	return versions, nil
}

func (v *Versions) Get(ctx context.Context, versionID string) (core.Version, error) {
	if err := requireClient(v.clientOrNil()); err != nil {
		return core.Version{}, err
	}
	versionID = strings.TrimSpace(versionID)
	if versionID == "" {
		return core.Version{}, core.NewBadInputError("resources: version id is required")
	}
	doc, err := v.client.Request(ctx, http.MethodGet, "appStoreVersions/"+versionID, nil, nil)
	if err != nil {
		return core.Version{}, err
	}
	resource, err := doc.Resource()
	if err != nil {
		return core.Version{}, err
	}
	return versionFromResource(resource)
}

// Current picks the live or most advanced in-flight version, falling back to
// the first listed one.
func (v *Versions) Current(ctx context.Context, appID string) (core.Version, error) {
	versions, err := v.List(ctx, appID)
	if err != nil {
		return core.Version{}, err
	}
	if len(versions) == 0 {
		return core.Version{}, notFoundError("resources: app has no versions")
	}
	for _, state := range currentVersionStates {
		for _, version := range versions {
			if version.AppStoreState == state {
				return version, nil
			}
		}
	}
	return versions[0], nil
}

type createVersionAttributes struct {
	VersionString string `json:"versionString"`
	Platform      string `json:"platform"`
	Copyright     string `json:"copyright,omitempty"`
	ReleaseType   string `json:"releaseType,omitempty"`
}

func (v *Versions) Create(ctx context.Context, input core.CreateVersionInput) (core.Version, error) {
	if err := requireClient(v.clientOrNil()); err != nil {
		return core.Version{}, err
	}
	appID := strings.TrimSpace(input.AppID)
	versionString := strings.TrimSpace(input.VersionString)
	if appID == "" {
		return core.Version{}, core.NewBadInputError("resources: app id is required")
	}
	if versionString == "" {
		return core.Version{}, core.NewBadInputError("resources: version string is required")
	}
	platform := strings.TrimSpace(input.Platform)
	if platform == "" {
		platform = "IOS"
	}

	payload := core.WriteDocument{Data: core.WriteResource{
		Type: "appStoreVersions",
		Attributes: createVersionAttributes{
			VersionString: versionString,
			Platform:      platform,
			Copyright:     strings.TrimSpace(input.Copyright),
			ReleaseType:   strings.TrimSpace(input.ReleaseType),
		},
		Relationships: map[string]core.Relationship{
			"app": {Data: core.RelationshipData{Type: "apps", ID: appID}},
		},
	}}
	doc, err := v.client.Request(ctx, http.MethodPost, "appStoreVersions", nil, payload)
	if err != nil {
		return core.Version{}, err
	}
	resource, err := doc.Resource()
	if err != nil {
		return core.Version{}, err
	}
	return versionFromResource(resource)
}

// VersionLocalization is one per-locale entry of an app store version.
type VersionLocalization struct {
	ID         string
	Locale     string
	Attributes core.VersionLocalizationAttributes
}

// Localizations lists the per-locale entries of one version.
func (v *Versions) Localizations(ctx context.Context, versionID string) ([]VersionLocalization, error) {
	if err := requireClient(v.clientOrNil()); err != nil {
		return nil, err
	}
	versionID = strings.TrimSpace(versionID)
	if versionID == "" {
		return nil, core.NewBadInputError("resources: version id is required")
	}
	items, err := v.client.FetchAll(ctx, "appStoreVersions/"+versionID+"/appStoreVersionLocalizations", nil)
	if err != nil {
		return nil, err
	}
	records := make([]VersionLocalization, 0, len(items))
	for _, item := range items {
		var attrs struct {
			Locale string `json:"locale"`
			core.VersionLocalizationAttributes
		}
		if err := item.DecodeAttributes(&attrs); err != nil {
			return nil, err
		}
		records = append(records, VersionLocalization{
			ID:         item.ID,
			Locale:     attrs.Locale,
			Attributes: attrs.VersionLocalizationAttributes,
		})
	}
	return records, nil
}

type createVersionLocalizationAttributes struct {
	Locale string `json:"locale"`
	core.VersionLocalizationAttributes
}

func (v *Versions) CreateLocalization(ctx context.Context, versionID string, locale string, attrs core.VersionLocalizationAttributes) (VersionLocalization, error) {
	if err := requireClient(v.clientOrNil()); err != nil {
		return VersionLocalization{}, err
	}
	versionID = strings.TrimSpace(versionID)
	locale = strings.TrimSpace(locale)
	if versionID == "" {
		return VersionLocalization{}, core.NewBadInputError("resources: version id is required")
	}
	if locale == "" {
		return VersionLocalization{}, core.NewBadInputError("resources: locale is required")
	}

	payload := core.WriteDocument{Data: core.WriteResource{
		Type: "appStoreVersionLocalizations",
		Attributes: createVersionLocalizationAttributes{
			Locale:                        locale,
			VersionLocalizationAttributes: attrs,
		},
		Relationships: map[string]core.Relationship{
			"appStoreVersion": {Data: core.RelationshipData{Type: "appStoreVersions", ID: versionID}},
		},
	}}
	doc, err := v.client.Request(ctx, http.MethodPost, "appStoreVersionLocalizations", nil, payload)
	if err != nil {
		return VersionLocalization{}, err
	}
	resource, err := doc.Resource()
	if err != nil {
		return VersionLocalization{}, err
	}
	var decoded struct {
		Locale string `json:"locale"`
		core.VersionLocalizationAttributes
	}
	if err := resource.DecodeAttributes(&decoded); err != nil {
		return VersionLocalization{}, err
	}
	return VersionLocalization{ID: resource.ID, Locale: decoded.Locale, Attributes: decoded.VersionLocalizationAttributes}, nil
}

func (v *Versions) UpdateLocalization(ctx context.Context, localizationID string, attrs core.VersionLocalizationAttributes) (VersionLocalization, error) {
	if err := requireClient(v.clientOrNil()); err != nil {
		return VersionLocalization{}, err
	}
	localizationID = strings.TrimSpace(localizationID)
	if localizationID == "" {
		return VersionLocalization{}, core.NewBadInputError("resources: localization id is required")
	}

	payload := core.WriteDocument{Data: core.WriteResource{
		Type:       "appStoreVersionLocalizations",
		ID:         localizationID,
		Attributes: attrs,
	}}
	doc, err := v.client.Request(ctx, http.MethodPatch, "appStoreVersionLocalizations/"+localizationID, nil, payload)
	if err != nil {
		return VersionLocalization{}, err
	}
	resource, err := doc.Resource()
	if err != nil {
		return VersionLocalization{}, err
	}
	var decoded struct {
		Locale string `json:"locale"`
		core.VersionLocalizationAttributes
	}
	if err := resource.DecodeAttributes(&decoded); err != nil {
		return VersionLocalization{}, err
	}
	return VersionLocalization{ID: resource.ID, Locale: decoded.Locale, Attributes: decoded.VersionLocalizationAttributes}, nil
}

func (v *Versions) clientOrNil() *transport.Client {
	if v == nil {
		return nil
	}
	return v.client
}
