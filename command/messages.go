package command

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-appstore/core"
)

const (
	TypeSyncLocalizations = "appstore.command.localizations.sync"
	TypeCreateVersion     = "appstore.command.versions.create"
	TypeUpdateApp         = "appstore.command.apps.update"
)

type SyncLocalizationsMessage struct {
	AppID   string
	Desired map[string]core.AppInfoLocalizationAttributes
}

func (SyncLocalizationsMessage) Type() string { return TypeSyncLocalizations }

func (m SyncLocalizationsMessage) Validate() error {
	if strings.TrimSpace(m.AppID) == "" {
		return fmt.Errorf("command: app id is required")
	}
	if len(m.Desired) == 0 {
		return fmt.Errorf("command: at least one locale is required")
	}
	for locale := range m.Desired {
		if strings.TrimSpace(locale) == "" {
			return fmt.Errorf("command: locale keys must not be empty")
		}
	}
	return nil
}

type CreateVersionMessage struct {
	Input core.CreateVersionInput
}

func (CreateVersionMessage) Type() string { return TypeCreateVersion }

func (m CreateVersionMessage) Validate() error {
	if strings.TrimSpace(m.Input.AppID) == "" {
		return fmt.Errorf("command: app id is required")
	}
	if strings.TrimSpace(m.Input.VersionString) == "" {
		return fmt.Errorf("command: version string is required")
	}
	return nil
}

type UpdateAppMessage struct {
	AppID      string
	Attributes map[string]any
}

func (UpdateAppMessage) Type() string { return TypeUpdateApp }

func (m UpdateAppMessage) Validate() error {
	if strings.TrimSpace(m.AppID) == "" {
		return fmt.Errorf("command: app id is required")
	}
	if len(m.Attributes) == 0 {
		return fmt.Errorf("command: at least one attribute is required")
	}
	return nil
}
