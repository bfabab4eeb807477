package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[SyncLocalizationsMessage] = (*SyncLocalizationsCommand)(nil)
	_ gocmd.Commander[CreateVersionMessage]     = (*CreateVersionCommand)(nil)
	_ gocmd.Commander[UpdateAppMessage]         = (*UpdateAppCommand)(nil)
)
