package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-appstore/core"
	"github.com/goliatone/go-appstore/transport"
)

// Valid platform values for the appCategories filter.
const (
	CategoryPlatformIOS   = "IOS"
	CategoryPlatformMacOS = "MAC_OS"
	CategoryPlatformTVOS  = "TV_OS"
)

const appInfoCategoryFields = "primaryCategory,secondaryCategory,primarySubcategoryOne,primarySubcategoryTwo,secondarySubcategoryOne,secondarySubcategoryTwo"

// Categories maps the app category endpoints: the appCategories listing and
// the category relationships on app-info containers.
type Categories struct {
	client *transport.Client
}

func NewCategories(client *transport.Client) *Categories {
	return &Categories{client: client}
}

// All lists the categories available on one platform. An empty platform
// defaults to IOS.
func (c *Categories) All(ctx context.Context, platform string) ([]core.Category, error) {
	if err := requireClient(c.clientOrNil()); err != nil {
		return nil, err
	}
	platform = strings.TrimSpace(platform)
	if platform == "" {
		platform = CategoryPlatformIOS
	}
	query := url.Values{}
	query.Set("filter[platforms]", platform)
	query.Set("limit", "200")
	items, err := c.client.FetchAll(ctx, "appCategories", query)
	if err != nil {
		return nil, err
	}
	categories := make([]core.Category, 0, len(items))
	for _, item := range items {
		category, err := categoryFromResource(item)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, nil
}

// ByDisplayName finds a category by its display name, e.g. "Photo & Video".
func (c *Categories) ByDisplayName(ctx context.Context, displayName string, platform string) (core.Category, error) {
	if err := requireClient(c.clientOrNil()); err != nil {
		return core.Category{}, err
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return core.Category{}, core.NewBadInputError("resources: category display name is required")
	}
	categories, err := c.All(ctx, platform)
	if err != nil {
		return core.Category{}, err
	}
	for _, category := range categories {
		if category.DisplayName == displayName {
			return category, nil
		}
	}
	return core.Category{}, notFoundError(fmt.Sprintf("resources: no category named %q", displayName))
}

// AppCategories reads the category assignment of one app-info container,
// side-loading the primary and secondary category records.
func (c *Categories) AppCategories(ctx context.Context, appInfoID string) (core.AppCategories, error) {
	if err := requireClient(c.clientOrNil()); err != nil {
		return core.AppCategories{}, err
	}
	appInfoID = strings.TrimSpace(appInfoID)
	if appInfoID == "" {
		return core.AppCategories{}, core.NewBadInputError("resources: app info id is required")
	}
	query := url.Values{}
	query.Set("fields[appInfos]", appInfoCategoryFields)
	query.Set("include", "primaryCategory,secondaryCategory")
	doc, err := c.client.Request(ctx, http.MethodGet, "appInfos/"+appInfoID, query, nil)
	if err != nil {
		return core.AppCategories{}, err
	}
	resource, err := doc.Resource()
	if err != nil {
		return core.AppCategories{}, err
	}

	var attrs struct {
		PrimarySubcategoryOne   string `json:"primarySubcategoryOne"`
		PrimarySubcategoryTwo   string `json:"primarySubcategoryTwo"`
		SecondarySubcategoryOne string `json:"secondarySubcategoryOne"`
		SecondarySubcategoryTwo string `json:"secondarySubcategoryTwo"`
	}
	if err := resource.DecodeAttributes(&attrs); err != nil {
		return core.AppCategories{}, err
	}
	assignment := core.AppCategories{
		PrimarySubcategoryOne:   attrs.PrimarySubcategoryOne,
		PrimarySubcategoryTwo:   attrs.PrimarySubcategoryTwo,
		SecondarySubcategoryOne: attrs.SecondarySubcategoryOne,
		SecondarySubcategoryTwo: attrs.SecondarySubcategoryTwo,
	}

	primaryID, secondaryID, err := categoryRelationships(resource)
	if err != nil {
		return core.AppCategories{}, err
	}
	included := categoryLookup(doc.Included)
	if primaryID != "" {
		assignment.Primary = includedCategory(included, primaryID)
	}
	if secondaryID != "" {
		assignment.Secondary = includedCategory(included, secondaryID)
	}
	return assignment, nil
}

type categoryUpdateAttributes struct {
	PrimarySubcategoryOne   *string `json:"primarySubcategoryOne,omitempty"`
	PrimarySubcategoryTwo   *string `json:"primarySubcategoryTwo,omitempty"`
	SecondarySubcategoryOne *string `json:"secondarySubcategoryOne,omitempty"`
	SecondarySubcategoryTwo *string `json:"secondarySubcategoryTwo,omitempty"`
}

// Update patches the category assignment of one app-info container. Omitted
// parts of the selection stay untouched server-side.
func (c *Categories) Update(ctx context.Context, appInfoID string, selection core.CategorySelection) (core.AppInfo, error) {
	if err := requireClient(c.clientOrNil()); err != nil {
		return core.AppInfo{}, err
	}
	appInfoID = strings.TrimSpace(appInfoID)
	if appInfoID == "" {
		return core.AppInfo{}, core.NewBadInputError("resources: app info id is required")
	}
	if selection.Empty() {
		return core.AppInfo{}, core.NewBadInputError("resources: category selection is empty")
	}

	data := core.WriteResource{
		Type: "appInfos",
		ID:   appInfoID,
		Attributes: categoryUpdateAttributes{
			PrimarySubcategoryOne:   selection.PrimarySubcategoryOne,
			PrimarySubcategoryTwo:   selection.PrimarySubcategoryTwo,
			SecondarySubcategoryOne: selection.SecondarySubcategoryOne,
			SecondarySubcategoryTwo: selection.SecondarySubcategoryTwo,
		},
	}
	relationships := map[string]core.Relationship{}
	if id := strings.TrimSpace(selection.PrimaryCategoryID); id != "" {
		relationships["primaryCategory"] = core.Relationship{Data: core.RelationshipData{Type: "appCategories", ID: id}}
	}
	if id := strings.TrimSpace(selection.SecondaryCategoryID); id != "" {
		relationships["secondaryCategory"] = core.Relationship{Data: core.RelationshipData{Type: "appCategories", ID: id}}
	}
	if len(relationships) > 0 {
		data.Relationships = relationships
	}

	doc, err := c.client.Request(ctx, http.MethodPatch, "appInfos/"+appInfoID, nil, core.WriteDocument{Data: data})
	if err != nil {
		return core.AppInfo{}, err
	}
	resource, err := doc.Resource()
	if err != nil {
		return core.AppInfo{}, err
	}
	return appInfoFromResource(resource)
}

func (c *Categories) clientOrNil() *transport.Client {
	if c == nil {
		return nil
	}
	return c.client
}

func categoryFromResource(resource core.Resource) (core.Category, error) {
	var attrs struct {
		DisplayName string   `json:"displayName"`
		Platforms   []string `json:"platforms"`
	}
	if err := resource.DecodeAttributes(&attrs); err != nil {
		return core.Category{}, err
	}
	return core.Category{
		ID:          resource.ID,
		DisplayName: attrs.DisplayName,
		Platforms:   attrs.Platforms,
	}, nil
}

func categoryRelationships(resource core.Resource) (primaryID string, secondaryID string, err error) {
	if len(resource.Relationships) == 0 {
		return "", "", nil
	}
	var relationships struct {
		PrimaryCategory struct {
			Data *core.RelationshipData `json:"data"`
		} `json:"primaryCategory"`
		SecondaryCategory struct {
			Data *core.RelationshipData `json:"data"`
		} `json:"secondaryCategory"`
	}
	if err := json.Unmarshal(resource.Relationships, &relationships); err != nil {
		return "", "", fmt.Errorf("resources: decode %s relationships: %w", resource.Type, err)
	}
	if relationships.PrimaryCategory.Data != nil {
		primaryID = relationships.PrimaryCategory.Data.ID
	}
	if relationships.SecondaryCategory.Data != nil {
		secondaryID = relationships.SecondaryCategory.Data.ID
	}
	return primaryID, secondaryID, nil
}

func categoryLookup(included []core.Resource) map[string]core.Resource {
	lookup := make(map[string]core.Resource, len(included))
	for _, item := range included {
		if item.Type == "appCategories" {
			lookup[item.ID] = item
		}
	}
	return lookup
}

func includedCategory(lookup map[string]core.Resource, id string) *core.Category {
	item, ok := lookup[id]
	if !ok {
		return &core.Category{ID: id}
	}
	category, err := categoryFromResource(item)
	if err != nil {
		return &core.Category{ID: id}
	}
	return &category
}
