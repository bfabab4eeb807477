package query

import (
	"context"

	"github.com/goliatone/go-appstore/core"
)

// AppReader is the read surface for app lookups.
type AppReader interface {
	GetApp(ctx context.Context, appID string) (core.App, error)
	AppByBundleID(ctx context.Context, bundleID string) (core.App, error)
}

// LocalizationReader lists the stored localizations of an app info record.
type LocalizationReader interface {
	ListLocalizations(ctx context.Context, appInfoID string) ([]core.LocalizationRecord, error)
}

// VersionReader resolves the version currently closest to the store front.
type VersionReader interface {
	CurrentVersion(ctx context.Context, appID string) (core.Version, error)
}

type GetAppQuery struct {
	reader AppReader
}

func NewGetAppQuery(reader AppReader) *GetAppQuery {
	return &GetAppQuery{reader: reader}
}

func (q *GetAppQuery) Query(ctx context.Context, msg GetAppMessage) (core.App, error) {
	if q == nil || q.reader == nil {
		return core.App{}, queryDependencyError("query: app reader is required")
	}
	return q.reader.GetApp(ctx, msg.AppID)
}

type GetAppByBundleIDQuery struct {
	reader AppReader
}

func NewGetAppByBundleIDQuery(reader AppReader) *GetAppByBundleIDQuery {
	return &GetAppByBundleIDQuery{reader: reader}
}

func (q *GetAppByBundleIDQuery) Query(ctx context.Context, msg GetAppByBundleIDMessage) (core.App, error) {
	if q == nil || q.reader == nil {
		return core.App{}, queryDependencyError("query: app reader is required")
	}
	return q.reader.AppByBundleID(ctx, msg.BundleID)
}

type ListLocalizationsQuery struct {
	reader LocalizationReader
}

func NewListLocalizationsQuery(reader LocalizationReader) *ListLocalizationsQuery {
	return &ListLocalizationsQuery{reader: reader}
}

func (q *ListLocalizationsQuery) Query(ctx context.Context, msg ListLocalizationsMessage) ([]core.LocalizationRecord, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: localization reader is required")
	}
	return q.reader.ListLocalizations(ctx, msg.AppInfoID)
}

type CurrentVersionQuery struct {
	reader VersionReader
}

func NewCurrentVersionQuery(reader VersionReader) *CurrentVersionQuery {
	return &CurrentVersionQuery{reader: reader}
}

func (q *CurrentVersionQuery) Query(ctx context.Context, msg CurrentVersionMessage) (core.Version, error) {
	if q == nil || q.reader == nil {
		return core.Version{}, queryDependencyError("query: version reader is required")
	}
	return q.reader.CurrentVersion(ctx, msg.AppID)
}
