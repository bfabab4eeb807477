package command

import (
	"context"
	"fmt"
	"testing"

	gocmd "github.com/goliatone/go-command"

	"github.com/goliatone/go-appstore/core"
)

type stubMutatingService struct {
	syncFn   func(ctx context.Context, appID string, desired map[string]core.AppInfoLocalizationAttributes) (map[string]core.SyncOutcome, error)
	createFn func(ctx context.Context, input core.CreateVersionInput) (core.Version, error)
	updateFn func(ctx context.Context, appID string, attributes map[string]any) (core.App, error)
}

func (s stubMutatingService) SyncLocalizations(ctx context.Context, appID string, desired map[string]core.AppInfoLocalizationAttributes) (map[string]core.SyncOutcome, error) {
	if s.syncFn == nil {
		return nil, fmt.Errorf("unexpected sync call")
	}
	return s.syncFn(ctx, appID, desired)
}

func (s stubMutatingService) CreateVersion(ctx context.Context, input core.CreateVersionInput) (core.Version, error) {
	if s.createFn == nil {
		return core.Version{}, fmt.Errorf("unexpected create call")
	}
	return s.createFn(ctx, input)
}

func (s stubMutatingService) UpdateApp(ctx context.Context, appID string, attributes map[string]any) (core.App, error) {
	if s.updateFn == nil {
		return core.App{}, fmt.Errorf("unexpected update call")
	}
	return s.updateFn(ctx, appID, attributes)
}

func TestSyncLocalizationsCommand_ExecuteDelegatesAndStoresResult(t *testing.T) {
	expected := map[string]core.SyncOutcome{
		"en-US": {Locale: "en-US", Success: true, Action: core.SyncActionCreated, LocalizationID: "loc_en"},
	}
	called := false

	svc := stubMutatingService{
		syncFn: func(_ context.Context, appID string, desired map[string]core.AppInfoLocalizationAttributes) (map[string]core.SyncOutcome, error) {
			called = true
			if appID != "app_1" {
				t.Fatalf("expected app_1, got %q", appID)
			}
			if _, ok := desired["en-US"]; !ok {
				t.Fatalf("expected en-US in desired set")
			}
			return expected, nil
		},
	}

	cmd := NewSyncLocalizationsCommand(svc)
	collector := gocmd.NewResult[map[string]core.SyncOutcome]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err := cmd.Execute(ctx, SyncLocalizationsMessage{
		AppID: "app_1",
		Desired: map[string]core.AppInfoLocalizationAttributes{
			"en-US": {Name: core.String("Example")},
		},
	})
	if err != nil {
		t.Fatalf("execute sync: %v", err)
	}
	if !called {
		t.Fatalf("expected sync service invocation")
	}
	result, ok := collector.Load()
	if !ok {
		t.Fatalf("expected result to be stored")
	}
	if outcome := result["en-US"]; !outcome.Success || outcome.LocalizationID != "loc_en" {
		t.Fatalf("unexpected result %#v", result)
	}
}

func TestCreateVersionCommand_ExecuteStoresVersion(t *testing.T) {
	svc := stubMutatingService{
		createFn: func(_ context.Context, input core.CreateVersionInput) (core.Version, error) {
			if input.VersionString != "2.0" {
				t.Fatalf("unexpected input %#v", input)
			}
			return core.Version{ID: "v_new", VersionString: "2.0"}, nil
		},
	}

	cmd := NewCreateVersionCommand(svc)
	collector := gocmd.NewResult[core.Version]()
	ctx := gocmd.ContextWithResult(context.Background(), collector)

	err := cmd.Execute(ctx, CreateVersionMessage{Input: core.CreateVersionInput{AppID: "app_1", VersionString: "2.0"}})
	if err != nil {
		t.Fatalf("execute create version: %v", err)
	}
	result, ok := collector.Load()
	if !ok || result.ID != "v_new" {
		t.Fatalf("unexpected result %#v ok=%v", result, ok)
	}
}

func TestUpdateAppCommand_ExecutePropagatesError(t *testing.T) {
	svc := stubMutatingService{
		updateFn: func(context.Context, string, map[string]any) (core.App, error) {
			return core.App{}, core.NewNotEditableError("app_1")
		},
	}

	cmd := NewUpdateAppCommand(svc)
	err := cmd.Execute(context.Background(), UpdateAppMessage{AppID: "app_1", Attributes: map[string]any{"primaryLocale": "de-DE"}})
	if !core.IsNotEditable(err) {
		t.Fatalf("expected not editable error, got %v", err)
	}
}

func TestCommands_NilServiceReturnsDependencyError(t *testing.T) {
	var syncCmd *SyncLocalizationsCommand
	if err := syncCmd.Execute(context.Background(), SyncLocalizationsMessage{}); core.TextCode(err) != core.AppStoreErrorInternal {
		t.Fatalf("expected internal error, got %v", err)
	}

	createCmd := NewCreateVersionCommand(nil)
	if err := createCmd.Execute(context.Background(), CreateVersionMessage{}); core.TextCode(err) != core.AppStoreErrorInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestCommandMessages_Validate(t *testing.T) {
	valid := SyncLocalizationsMessage{
		AppID:   "app_1",
		Desired: map[string]core.AppInfoLocalizationAttributes{"en-US": {}},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid message, got %v", err)
	}
	if err := (SyncLocalizationsMessage{Desired: valid.Desired}).Validate(); err == nil {
		t.Fatalf("expected missing app id to fail")
	}
	if err := (SyncLocalizationsMessage{AppID: "app_1"}).Validate(); err == nil {
		t.Fatalf("expected empty desired set to fail")
	}
	if err := (SyncLocalizationsMessage{AppID: "app_1", Desired: map[string]core.AppInfoLocalizationAttributes{" ": {}}}).Validate(); err == nil {
		t.Fatalf("expected blank locale key to fail")
	}

	if err := (CreateVersionMessage{Input: core.CreateVersionInput{AppID: "app_1"}}).Validate(); err == nil {
		t.Fatalf("expected missing version string to fail")
	}
	if err := (UpdateAppMessage{AppID: "app_1"}).Validate(); err == nil {
		t.Fatalf("expected empty attributes to fail")
	}

	if got := valid.Type(); got != TypeSyncLocalizations {
		t.Fatalf("unexpected message type %q", got)
	}
}
