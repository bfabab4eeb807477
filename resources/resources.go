package resources

import (
	"net/http"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-appstore/core"
	"github.com/goliatone/go-appstore/transport"
)

func requireClient(client *transport.Client) error {
	if client == nil {
		return core.NewInternalError("resources: transport client is required")
	}
	return nil
}

func notFoundError(message string) error {
	return goerrors.New(message, goerrors.CategoryNotFound).
		WithCode(http.StatusNotFound).
		WithTextCode(core.AppStoreErrorNotFound)
}

func appFromResource(resource core.Resource) (core.App, error) {
	var attrs struct {
		Name          string `json:"name"`
		BundleID      string `json:"bundleId"`
		SKU           string `json:"sku"`
		PrimaryLocale string `json:"primaryLocale"`
	}
	if err := resource.DecodeAttributes(&attrs); err != nil {
		return core.App{}, err
	}
	return core.App{
		ID:            resource.ID,
		Name:          attrs.Name,
		BundleID:      attrs.BundleID,
		SKU:           attrs.SKU,
		PrimaryLocale: attrs.PrimaryLocale,
	}, nil
}

func appInfoFromResource(resource core.Resource) (core.AppInfo, error) {
	var attrs struct {
		AppStoreState string `json:"appStoreState"`
		State         string `json:"state"`
	}
	if err := resource.DecodeAttributes(&attrs); err != nil {
		return core.AppInfo{}, err
	}
	appStoreState := attrs.AppStoreState
	if appStoreState == "" {
		appStoreState = attrs.State
	}
	return core.AppInfo{
		ID:            resource.ID,
		AppStoreState: appStoreState,
		State:         core.AppInfoStateFromAppStoreState(appStoreState),
	}, nil
}

func localizationFromResource(resource core.Resource) (core.LocalizationRecord, error) {
	var attrs struct {
		Locale string `json:"locale"`
		core.AppInfoLocalizationAttributes
	}
	if err := resource.DecodeAttributes(&attrs); err != nil {
		return core.LocalizationRecord{}, err
	}
	return core.LocalizationRecord{
		ID:         resource.ID,
		Locale:     attrs.Locale,
		Attributes: attrs.AppInfoLocalizationAttributes,
	}, nil
}

func versionFromResource(resource core.Resource) (core.Version, error) {
	var attrs struct {
		VersionString string `json:"versionString"`
		Platform      string `json:"platform"`
		AppStoreState string `json:"appStoreState"`
		ReleaseType   string `json:"releaseType"`
	}
	if err := resource.DecodeAttributes(&attrs); err != nil {
		return core.Version{}, err
	}
	return core.Version{
		ID:            resource.ID,
		VersionString: attrs.VersionString,
		Platform:      attrs.Platform,
		AppStoreState: attrs.AppStoreState,
		ReleaseType:   attrs.ReleaseType,
	}, nil
}
