package command

import (
	"context"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-appstore/core"
)

// MutatingService is the write surface the commands delegate to.
type MutatingService interface {
	SyncLocalizations(ctx context.Context, appID string, desired map[string]core.AppInfoLocalizationAttributes) (map[string]core.SyncOutcome, error)
	CreateVersion(ctx context.Context, input core.CreateVersionInput) (core.Version, error)
	UpdateApp(ctx context.Context, appID string, attributes map[string]any) (core.App, error)
}

type SyncLocalizationsCommand struct {
	service MutatingService
}

func NewSyncLocalizationsCommand(service MutatingService) *SyncLocalizationsCommand {
	return &SyncLocalizationsCommand{service: service}
}

func (c *SyncLocalizationsCommand) Execute(ctx context.Context, msg SyncLocalizationsMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: sync localizations service is required")
	}
	out, err := c.service.SyncLocalizations(ctx, msg.AppID, msg.Desired)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type CreateVersionCommand struct {
	service MutatingService
}

func NewCreateVersionCommand(service MutatingService) *CreateVersionCommand {
	return &CreateVersionCommand{service: service}
}

func (c *CreateVersionCommand) Execute(ctx context.Context, msg CreateVersionMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: create version service is required")
	}
	out, err := c.service.CreateVersion(ctx, msg.Input)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UpdateAppCommand struct {
	service MutatingService
}

func NewUpdateAppCommand(service MutatingService) *UpdateAppCommand {
	return &UpdateAppCommand{service: service}
}

func (c *UpdateAppCommand) Execute(ctx context.Context, msg UpdateAppMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: update app service is required")
	}
	out, err := c.service.UpdateApp(ctx, msg.AppID, msg.Attributes)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
