package resources

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/goliatone/go-appstore/core"
)

func TestCategories_AllFiltersPlatform(t *testing.T) {
	doer := &scriptedDoer{steps: []scriptedStep{
		{status: http.StatusOK, body: `{"data":[` +
			`{"type":"appCategories","id":"GAMES","attributes":{"displayName":"Games","platforms":["IOS","MAC_OS"]}},` +
			`{"type":"appCategories","id":"PHOTO_AND_VIDEO","attributes":{"displayName":"Photo & Video","platforms":["IOS"]}}]}`},
	}}
	categories := NewCategories(testTransport(doer))

	all, err := categories.All(context.Background(), "MAC_OS")
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(all))
	}
	if all[0].ID != "GAMES" || all[0].DisplayName != "Games" {
		t.Fatalf("unexpected category %#v", all[0])
	}
	if len(all[0].Platforms) != 2 || all[0].Platforms[1] != "MAC_OS" {
		t.Fatalf("unexpected platforms %#v", all[0].Platforms)
	}
	params := doer.requests[0].URL.Query()
	if got := params.Get("filter[platforms]"); got != "MAC_OS" {
		t.Fatalf("expected platform filter, got %q", got)
	}
	if got := params.Get("limit"); got != "200" {
		t.Fatalf("expected limit 200, got %q", got)
	}
}

func TestCategories_AllDefaultsToIOS(t *testing.T) {
	doer := &scriptedDoer{steps: []scriptedStep{
		{status: http.StatusOK, body: `{"data":[]}`},
	}}
	categories := NewCategories(testTransport(doer))

	if _, err := categories.All(context.Background(), "  "); err != nil {
		t.Fatalf("all: %v", err)
	}
	if got := doer.requests[0].URL.Query().Get("filter[platforms]"); got != CategoryPlatformIOS {
		t.Fatalf("expected IOS default, got %q", got)
	}
}

func TestCategories_ByDisplayName(t *testing.T) {
	body := `{"data":[` +
		`{"type":"appCategories","id":"GAMES","attributes":{"displayName":"Games"}},` +
		`{"type":"appCategories","id":"PHOTO_AND_VIDEO","attributes":{"displayName":"Photo & Video"}}]}`

	t.Run("found", func(t *testing.T) {
		doer := &scriptedDoer{steps: []scriptedStep{{status: http.StatusOK, body: body}}}
		categories := NewCategories(testTransport(doer))

		category, err := categories.ByDisplayName(context.Background(), "Photo & Video", "")
		if err != nil {
			t.Fatalf("by display name: %v", err)
		}
		if category.ID != "PHOTO_AND_VIDEO" {
			t.Fatalf("unexpected category %#v", category)
		}
	})

	t.Run("missing", func(t *testing.T) {
		doer := &scriptedDoer{steps: []scriptedStep{{status: http.StatusOK, body: body}}}
		categories := NewCategories(testTransport(doer))

		if _, err := categories.ByDisplayName(context.Background(), "Weather", ""); !core.IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("requires name", func(t *testing.T) {
		categories := NewCategories(testTransport(&scriptedDoer{}))
		if _, err := categories.ByDisplayName(context.Background(), " ", ""); core.TextCode(err) != core.AppStoreErrorBadInput {
			t.Fatalf("expected bad input error, got %v", err)
		}
	})
}

func TestCategories_AppCategoriesSideLoads(t *testing.T) {
	doer := &scriptedDoer{steps: []scriptedStep{
		{status: http.StatusOK, body: `{"data":{"type":"appInfos","id":"info_1",` +
			`"attributes":{"primarySubcategoryOne":"PUZZLE","primarySubcategoryTwo":"ARCADE"},` +
			`"relationships":{` +
			`"primaryCategory":{"data":{"type":"appCategories","id":"GAMES"}},` +
			`"secondaryCategory":{"data":{"type":"appCategories","id":"ENTERTAINMENT"}}}},` +
			`"included":[` +
			`{"type":"appCategories","id":"GAMES","attributes":{"displayName":"Games","platforms":["IOS"]}}]}`},
	}}
	categories := NewCategories(testTransport(doer))

	assignment, err := categories.AppCategories(context.Background(), "info_1")
	if err != nil {
		t.Fatalf("app categories: %v", err)
	}
	if assignment.Primary == nil || assignment.Primary.ID != "GAMES" || assignment.Primary.DisplayName != "Games" {
		t.Fatalf("unexpected primary %#v", assignment.Primary)
	}
	// ENTERTAINMENT was not side-loaded, so only its id survives.
	if assignment.Secondary == nil || assignment.Secondary.ID != "ENTERTAINMENT" || assignment.Secondary.DisplayName != "" {
		t.Fatalf("unexpected secondary %#v", assignment.Secondary)
	}
	if assignment.PrimarySubcategoryOne != "PUZZLE" || assignment.PrimarySubcategoryTwo != "ARCADE" {
		t.Fatalf("unexpected subcategories %#v", assignment)
	}
	if assignment.SecondarySubcategoryOne != "" || assignment.SecondarySubcategoryTwo != "" {
		t.Fatalf("unexpected secondary subcategories %#v", assignment)
	}

	params := doer.requests[0].URL.Query()
	if got := params.Get("fields[appInfos]"); got != appInfoCategoryFields {
		t.Fatalf("unexpected fields param %q", got)
	}
	if got := params.Get("include"); got != "primaryCategory,secondaryCategory" {
		t.Fatalf("unexpected include param %q", got)
	}
	if got := doer.requests[0].URL.Path; got != "/v1/appInfos/info_1" {
		t.Fatalf("unexpected path %q", got)
	}
}

func TestCategories_AppCategoriesUnassigned(t *testing.T) {
	doer := &scriptedDoer{steps: []scriptedStep{
		{status: http.StatusOK, body: `{"data":{"type":"appInfos","id":"info_1",` +
			`"relationships":{"primaryCategory":{"data":null},"secondaryCategory":{"data":null}}}}`},
	}}
	categories := NewCategories(testTransport(doer))

	assignment, err := categories.AppCategories(context.Background(), "info_1")
	if err != nil {
		t.Fatalf("app categories: %v", err)
	}
	if assignment.Primary != nil || assignment.Secondary != nil {
		t.Fatalf("expected no assignment, got %#v", assignment)
	}
}

func TestCategories_UpdateSendsEnvelope(t *testing.T) {
	doer := &scriptedDoer{steps: []scriptedStep{
		{status: http.StatusOK, body: `{"data":{"type":"appInfos","id":"info_1",` +
			`"attributes":{"appStoreState":"PREPARE_FOR_SUBMISSION"}}}`},
	}}
	categories := NewCategories(testTransport(doer))

	info, err := categories.Update(context.Background(), "info_1", core.CategorySelection{
		PrimaryCategoryID:     "GAMES",
		PrimarySubcategoryOne: core.String("PUZZLE"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if info.ID != "info_1" || !info.Editable() {
		t.Fatalf("unexpected app info %#v", info)
	}
	if got := doer.requests[0].Method; got != http.MethodPatch {
		t.Fatalf("expected PATCH, got %q", got)
	}
	if got := doer.requests[0].URL.Path; got != "/v1/appInfos/info_1" {
		t.Fatalf("unexpected path %q", got)
	}

	var envelope struct {
		Data struct {
			Type       string         `json:"type"`
			ID         string         `json:"id"`
			Attributes map[string]any `json:"attributes"`
			Relations  map[string]struct {
				Data core.RelationshipData `json:"data"`
			} `json:"relationships"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(doer.bodies[0]), &envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if envelope.Data.Type != "appInfos" || envelope.Data.ID != "info_1" {
		t.Fatalf("unexpected envelope %#v", envelope.Data)
	}
	if got := envelope.Data.Attributes["primarySubcategoryOne"]; got != "PUZZLE" {
		t.Fatalf("unexpected attributes %#v", envelope.Data.Attributes)
	}
	if _, present := envelope.Data.Attributes["primarySubcategoryTwo"]; present {
		t.Fatalf("unset subcategory leaked into payload: %#v", envelope.Data.Attributes)
	}
	primary, ok := envelope.Data.Relations["primaryCategory"]
	if !ok || primary.Data.Type != "appCategories" || primary.Data.ID != "GAMES" {
		t.Fatalf("unexpected relationships %#v", envelope.Data.Relations)
	}
	if _, present := envelope.Data.Relations["secondaryCategory"]; present {
		t.Fatalf("secondary relationship leaked into payload: %#v", envelope.Data.Relations)
	}
}

func TestCategories_UpdateRejectsEmptySelection(t *testing.T) {
	categories := NewCategories(testTransport(&scriptedDoer{}))
	if _, err := categories.Update(context.Background(), "info_1", core.CategorySelection{}); core.TextCode(err) != core.AppStoreErrorBadInput {
		t.Fatalf("expected bad input error, got %v", err)
	}
}
