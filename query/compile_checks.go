package query

import (
	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-appstore/core"
)

var (
	_ gocmd.Querier[GetAppMessage, core.App]                             = (*GetAppQuery)(nil)
	_ gocmd.Querier[GetAppByBundleIDMessage, core.App]                   = (*GetAppByBundleIDQuery)(nil)
	_ gocmd.Querier[ListLocalizationsMessage, []core.LocalizationRecord] = (*ListLocalizationsQuery)(nil)
	_ gocmd.Querier[CurrentVersionMessage, core.Version]                 = (*CurrentVersionQuery)(nil)
)
