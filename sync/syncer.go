package sync

import (
	"context"
	"strings"
	stdsync "sync"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-appstore/core"
)

const defaultMaxConcurrent = 4

// AppInfoSource lists an app's app-info containers in server-returned order.
type AppInfoSource interface {
	AppInfos(ctx context.Context, appID string) ([]core.AppInfo, error)
}

// LocalizationStore reads and writes localization entries of one app-info
// container.
type LocalizationStore interface {
	Localizations(ctx context.Context, appInfoID string) ([]core.LocalizationRecord, error)
	CreateLocalization(ctx context.Context, appInfoID string, locale string, attrs core.AppInfoLocalizationAttributes) (core.LocalizationRecord, error)
	UpdateLocalization(ctx context.Context, localizationID string, attrs core.AppInfoLocalizationAttributes) (core.LocalizationRecord, error)
}

// Syncer reconciles a desired locale → fields mapping against the editable
// app-info container of an app. Discovery is a strict barrier: no write is
// issued until the container and its existing localizations are known.
// Per-locale writes are independent; a failing locale never aborts the rest.
type Syncer struct {
	Apps          AppInfoSource
	Localizations LocalizationStore
	Logger        core.Logger
	MaxConcurrent int
}

func NewSyncer(apps AppInfoSource, localizations LocalizationStore) *Syncer {
	_, logger := core.ResolveLogger("appstore.sync", nil, nil)
	return &Syncer{
		Apps:          apps,
		Localizations: localizations,
		Logger:        logger,
		MaxConcurrent: defaultMaxConcurrent,
	}
}

// SyncLocalizations returns one outcome per requested locale. Only discovery
// failures and cancellation produce a non-nil error; on cancellation the
// outcomes gathered so far are still returned, with unstarted and in-flight
// locales marked cancelled.
func (s *Syncer) SyncLocalizations(
	ctx context.Context,
	appID string,
	desired map[string]core.AppInfoLocalizationAttributes,
) (map[string]core.SyncOutcome, error) {
	if s == nil || s.Apps == nil || s.Localizations == nil {
		return nil, core.NewInternalError("sync: syncer requires app info and localization access")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	appID = strings.TrimSpace(appID)
	if appID == "" {
		return nil, core.NewBadInputError("sync: app id is required")
	}
	if len(desired) == 0 {
		return map[string]core.SyncOutcome{}, nil
	}

	target, err := s.discoverEditableAppInfo(ctx, appID)
	if err != nil {
		return nil, err
	}

	existing, err := s.Localizations.Localizations(ctx, target.ID)
	if err != nil {
		return nil, err
	}
	byLocale := make(map[string]core.LocalizationRecord, len(existing))
	for _, record := range existing {
		locale := strings.TrimSpace(record.Locale)
		if locale == "" {
			continue
		}
		if _, ok := byLocale[locale]; ok {
			continue
		}
		byLocale[locale] = record
	}

	outcomes := make(map[string]core.SyncOutcome, len(desired))
	var mu stdsync.Mutex
	record := func(outcome core.SyncOutcome) {
		mu.Lock()
		outcomes[outcome.Locale] = outcome
		mu.Unlock()
	}

	var group errgroup.Group
	group.SetLimit(s.maxConcurrent())
	for locale, attrs := range desired {
		locale, attrs := strings.TrimSpace(locale), attrs
		group.Go(func() error {
			if locale == "" {
				record(core.SyncOutcome{Locale: locale, Err: core.NewBadInputError("sync: locale is required")})
				return nil
			}
			if err := ctx.Err(); err != nil {
				record(core.SyncOutcome{Locale: locale, Err: core.NewCancelledError(err)})
				return nil
			}
			record(s.syncLocale(ctx, target.ID, locale, attrs, byLocale))
			return nil
		})
	}
	_ = group.Wait()

	if err := ctx.Err(); err != nil {
		return outcomes, core.NewCancelledError(err)
	}
	return outcomes, nil
}

// discoverEditableAppInfo selects the container writes go to. Zero editable
// containers fails the whole call; more than one is anomalous, so the first
// in server order wins and the rest are logged.
func (s *Syncer) discoverEditableAppInfo(ctx context.Context, appID string) (core.AppInfo, error) {
	infos, err := s.Apps.AppInfos(ctx, appID)
	if err != nil {
		return core.AppInfo{}, err
	}

	editable := make([]core.AppInfo, 0, len(infos))
	for _, info := range infos {
		if info.Editable() {
			editable = append(editable, info)
		}
	}
	if len(editable) == 0 {
		return core.AppInfo{}, core.NewNotEditableError(appID)
	}
	if len(editable) > 1 && s.Logger != nil {
		ids := make([]string, 0, len(editable))
		for _, info := range editable {
			ids = append(ids, info.ID)
		}
		s.Logger.Warn("multiple editable app info containers, using first in server order",
			"app_id", appID,
			"app_info_ids", strings.Join(ids, ","),
		)
	}
	return editable[0], nil
}

func (s *Syncer) syncLocale(
	ctx context.Context,
	appInfoID string,
	locale string,
	attrs core.AppInfoLocalizationAttributes,
	existing map[string]core.LocalizationRecord,
) core.SyncOutcome {
	if current, ok := existing[locale]; ok {
		updated, err := s.Localizations.UpdateLocalization(ctx, current.ID, attrs)
		if err != nil {
			return failedOutcome(locale, core.SyncActionUpdated, err)
		}
		return core.SyncOutcome{
			Locale:         locale,
			Success:        true,
			Action:         core.SyncActionUpdated,
			LocalizationID: updated.ID,
		}
	}

	created, err := s.Localizations.CreateLocalization(ctx, appInfoID, locale, attrs)
	if err != nil {
		return failedOutcome(locale, core.SyncActionCreated, err)
	}
	return core.SyncOutcome{
		Locale:         locale,
		Success:        true,
		Action:         core.SyncActionCreated,
		LocalizationID: created.ID,
	}
}

func failedOutcome(locale string, action core.SyncAction, err error) core.SyncOutcome {
	if core.IsCancelled(err) {
		err = core.NewCancelledError(err)
	}
	return core.SyncOutcome{Locale: locale, Action: action, Err: err}
}

func (s *Syncer) maxConcurrent() int {
	if s != nil && s.MaxConcurrent > 0 {
		return s.MaxConcurrent
	}
	return defaultMaxConcurrent
}
