package appstore

import (
	"fmt"

	appstorecommand "github.com/goliatone/go-appstore/command"
	appstorequery "github.com/goliatone/go-appstore/query"
)

// CommandQueryService is the combined surface the dispatch handlers delegate
// to. *Client satisfies it.
type CommandQueryService interface {
	appstorecommand.MutatingService
	appstorequery.AppReader
	appstorequery.LocalizationReader
	appstorequery.VersionReader
}

type Commands struct {
	SyncLocalizations *appstorecommand.SyncLocalizationsCommand
	CreateVersion     *appstorecommand.CreateVersionCommand
	UpdateApp         *appstorecommand.UpdateAppCommand
}

type Queries struct {
	GetApp            *appstorequery.GetAppQuery
	GetAppByBundleID  *appstorequery.GetAppByBundleIDQuery
	ListLocalizations *appstorequery.ListLocalizationsQuery
	CurrentVersion    *appstorequery.CurrentVersionQuery
}

// Facade packages the command and query handlers around one service so hosts
// can register them with a dispatcher in a single pass.
type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

func NewFacade(service CommandQueryService) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("appstore: command/query service is required")
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		SyncLocalizations: appstorecommand.NewSyncLocalizationsCommand(service),
		CreateVersion:     appstorecommand.NewCreateVersionCommand(service),
		UpdateApp:         appstorecommand.NewUpdateAppCommand(service),
	}
	facade.queries = Queries{
		GetApp:            appstorequery.NewGetAppQuery(service),
		GetAppByBundleID:  appstorequery.NewGetAppByBundleIDQuery(service),
		ListLocalizations: appstorequery.NewListLocalizationsQuery(service),
		CurrentVersion:    appstorequery.NewCurrentVersionQuery(service),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}

var _ CommandQueryService = (*Client)(nil)
