package query

import (
	"fmt"
	"strings"
)

const (
	TypeGetApp            = "appstore.query.apps.get"
	TypeGetAppByBundleID  = "appstore.query.apps.get_by_bundle_id"
	TypeListLocalizations = "appstore.query.localizations.list"
	TypeCurrentVersion    = "appstore.query.versions.current"
)

type GetAppMessage struct {
	AppID string
}

func (GetAppMessage) Type() string { return TypeGetApp }

func (m GetAppMessage) Validate() error {
	if strings.TrimSpace(m.AppID) == "" {
		return fmt.Errorf("query: app id is required")
	}
	return nil
}

type GetAppByBundleIDMessage struct {
	BundleID string
}

func (GetAppByBundleIDMessage) Type() string { return TypeGetAppByBundleID }

func (m GetAppByBundleIDMessage) Validate() error {
	if strings.TrimSpace(m.BundleID) == "" {
		return fmt.Errorf("query: bundle id is required")
	}
	return nil
}

type ListLocalizationsMessage struct {
	AppInfoID string
}

func (ListLocalizationsMessage) Type() string { return TypeListLocalizations }

func (m ListLocalizationsMessage) Validate() error {
	if strings.TrimSpace(m.AppInfoID) == "" {
		return fmt.Errorf("query: app info id is required")
	}
	return nil
}

type CurrentVersionMessage struct {
	AppID string
}

func (CurrentVersionMessage) Type() string { return TypeCurrentVersion }

func (m CurrentVersionMessage) Validate() error {
	if strings.TrimSpace(m.AppID) == "" {
		return fmt.Errorf("query: app id is required")
	}
	return nil
}
