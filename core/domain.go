package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Credentials carries the App Store Connect API key material supplied once
// at client construction. The private key is never logged or serialized.
type Credentials struct {
	KeyID         string
	IssuerID      string
	PrivateKeyPEM []byte
}

func (c Credentials) Validate() error {
	if strings.TrimSpace(c.KeyID) == "" {
		return fmt.Errorf("core: credentials key id is required")
	}
	if strings.TrimSpace(c.IssuerID) == "" {
		return fmt.Errorf("core: credentials issuer id is required")
	}
	if len(c.PrivateKeyPEM) == 0 {
		return fmt.Errorf("core: credentials private key is required")
	}
	return nil
}

// Token is a signed bearer credential. Superseded, never mutated, on renewal.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Fresh reports whether the token still has at least margin of validity left.
func (t Token) Fresh(now time.Time, margin time.Duration) bool {
	if strings.TrimSpace(t.Value) == "" {
		return false
	}
	return t.ExpiresAt.After(now.Add(margin))
}

// Resource is one record in the API's data envelope convention.
type Resource struct {
	Type          string          `json:"type"`
	ID            string          `json:"id,omitempty"`
	Attributes    json.RawMessage `json:"attributes,omitempty"`
	Relationships json.RawMessage `json:"relationships,omitempty"`
}

func (r Resource) DecodeAttributes(target any) error {
	if len(r.Attributes) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Attributes, target); err != nil {
		return fmt.Errorf("core: decode %s attributes: %w", r.Type, err)
	}
	return nil
}

// PageLinks carries cursor pagination links from a list response.
type PageLinks struct {
	Self string `json:"self,omitempty"`
	Next string `json:"next,omitempty"`
}

// APIError is one entry of the API's errors array.
type APIError struct {
	Status string          `json:"status,omitempty"`
	Code   string          `json:"code,omitempty"`
	Title  string          `json:"title,omitempty"`
	Detail string          `json:"detail,omitempty"`
	Source *APIErrorSource `json:"source,omitempty"`
}

type APIErrorSource struct {
	Pointer   string `json:"pointer,omitempty"`
	Parameter string `json:"parameter,omitempty"`
}

// Document is a decoded API response body. Data holds either a single
// resource object or an array, depending on the endpoint. Included carries
// side-loaded relationship targets requested via the include parameter.
type Document struct {
	Data     json.RawMessage `json:"data,omitempty"`
	Included []Resource      `json:"included,omitempty"`
	Links    PageLinks       `json:"links,omitempty"`
	Errors   []APIError      `json:"errors,omitempty"`
}

func (d Document) Resource() (Resource, error) {
	if len(d.Data) == 0 {
		return Resource{}, fmt.Errorf("core: document has no data")
	}
	var resource Resource
	if err := json.Unmarshal(d.Data, &resource); err != nil {
		return Resource{}, fmt.Errorf("core: decode resource: %w", err)
	}
	return resource, nil
}

func (d Document) Resources() ([]Resource, error) {
	if len(d.Data) == 0 {
		return []Resource{}, nil
	}
	var resources []Resource
	if err := json.Unmarshal(d.Data, &resources); err != nil {
		return nil, fmt.Errorf("core: decode resource list: %w", err)
	}
	return resources, nil
}

// WriteDocument is the request-side data envelope.
type WriteDocument struct {
	Data WriteResource `json:"data"`
}

type WriteResource struct {
	Type          string                  `json:"type"`
	ID            string                  `json:"id,omitempty"`
	Attributes    any                     `json:"attributes,omitempty"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
}

type Relationship struct {
	Data RelationshipData `json:"data"`
}

type RelationshipData struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// App is the subset of app attributes this library works with.
type App struct {
	ID            string
	Name          string
	BundleID      string
	SKU           string
	PrimaryLocale string
}

// AppInfoState classifies an app-info container's lifecycle state by whether
// metadata writes are accepted.
type AppInfoState string

const (
	AppInfoStateEditable AppInfoState = "EDITABLE"
	AppInfoStateLocked   AppInfoState = "LOCKED"
)

// Remote lifecycle states whose app-info containers accept metadata writes.
const (
	AppStoreStatePrepareForSubmission = "PREPARE_FOR_SUBMISSION"
	AppStoreStateDeveloperRejected    = "DEVELOPER_REJECTED"
	AppStoreStateMetadataRejected     = "METADATA_REJECTED"
)

func AppInfoStateFromAppStoreState(appStoreState string) AppInfoState {
	switch strings.TrimSpace(strings.ToUpper(appStoreState)) {
	case AppStoreStatePrepareForSubmission, AppStoreStateDeveloperRejected, AppStoreStateMetadataRejected:
		return AppInfoStateEditable
	default:
		return AppInfoStateLocked
	}
}

// AppInfo is a container grouping per-locale localization entries for one
// app, with a lifecycle state gating editability.
type AppInfo struct {
	ID            string
	AppStoreState string
	State         AppInfoState
}

func (i AppInfo) Editable() bool {
	return i.State == AppInfoStateEditable
}

// AppInfoLocalizationAttributes are the writable fields of one app-info
// localization. Nil means "leave untouched"; a pointer to the empty string
// means "set empty".
type AppInfoLocalizationAttributes struct {
	Name              *string `json:"name,omitempty"`
	Subtitle          *string `json:"subtitle,omitempty"`
	PrivacyPolicyURL  *string `json:"privacyPolicyUrl,omitempty"`
	PrivacyPolicyText *string `json:"privacyPolicyText,omitempty"`
}

func (a AppInfoLocalizationAttributes) Empty() bool {
	return a.Name == nil && a.Subtitle == nil && a.PrivacyPolicyURL == nil && a.PrivacyPolicyText == nil
}

// VersionLocalizationAttributes are the writable fields of one app-store
// version localization.
type VersionLocalizationAttributes struct {
	Description     *string `json:"description,omitempty"`
	Keywords        *string `json:"keywords,omitempty"`
	MarketingURL    *string `json:"marketingUrl,omitempty"`
	PromotionalText *string `json:"promotionalText,omitempty"`
	SupportURL      *string `json:"supportUrl,omitempty"`
	WhatsNew        *string `json:"whatsNew,omitempty"`
}

// LocalizationRecord is one localization entry keyed by locale within an
// app-info container.
type LocalizationRecord struct {
	ID         string
	Locale     string
	Attributes AppInfoLocalizationAttributes
}

// Version is one app store version record.
type Version struct {
	ID            string
	VersionString string
	Platform      string
	AppStoreState string
	ReleaseType   string
}

type CreateVersionInput struct {
	AppID         string
	VersionString string
	Platform      string
	Copyright     string
	ReleaseType   string
}

// Category is one App Store category or subcategory record.
type Category struct {
	ID          string
	DisplayName string
	Platforms   []string
}

// AppCategories is the category assignment read from one app-info
// container. Primary and Secondary are nil when the relationship is unset
// or the listing did not side-load the record.
type AppCategories struct {
	Primary                 *Category
	Secondary               *Category
	PrimarySubcategoryOne   string
	PrimarySubcategoryTwo   string
	SecondarySubcategoryOne string
	SecondarySubcategoryTwo string
}

// CategorySelection is a desired category assignment. Empty ids leave the
// matching relationship untouched. Nil subcategory fields stay untouched;
// subcategories only apply to the Games and Magazines & Newspapers
// categories, with at most two per category.
type CategorySelection struct {
	PrimaryCategoryID       string
	SecondaryCategoryID     string
	PrimarySubcategoryOne   *string
	PrimarySubcategoryTwo   *string
	SecondarySubcategoryOne *string
	SecondarySubcategoryTwo *string
}

func (s CategorySelection) Empty() bool {
	return strings.TrimSpace(s.PrimaryCategoryID) == "" &&
		strings.TrimSpace(s.SecondaryCategoryID) == "" &&
		s.PrimarySubcategoryOne == nil &&
		s.PrimarySubcategoryTwo == nil &&
		s.SecondarySubcategoryOne == nil &&
		s.SecondarySubcategoryTwo == nil
}

// SyncAction records which write a locale sync performed.
type SyncAction string

const (
	SyncActionCreated SyncAction = "CREATED"
	SyncActionUpdated SyncAction = "UPDATED"
)

// SyncOutcome is the per-locale result of a bulk localization sync. Every
// requested locale gets exactly one outcome entry.
type SyncOutcome struct {
	Locale         string
	Success        bool
	Action         SyncAction
	LocalizationID string
	Err            error
}

func (o SyncOutcome) String() string {
	if o.Success {
		return fmt.Sprintf("%s: %s (%s)", o.Locale, o.Action, o.LocalizationID)
	}
	if o.Err != nil {
		return fmt.Sprintf("%s: failed: %v", o.Locale, o.Err)
	}
	return fmt.Sprintf("%s: failed", o.Locale)
}

// String pins a string value for an optional attribute field.
func String(value string) *string {
	return &value
}
