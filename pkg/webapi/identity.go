package webapi

import (
	"fmt"
	"net/url"
	"strings"
)

// IdentityKind tags the variant held by an Identity.
type IdentityKind int

const (
	IdentityWebID IdentityKind = iota + 1
	IdentityPath
	IdentityCustom
)

func (k IdentityKind) String() string {
	switch k {
	case IdentityWebID:
		return "webId"
	case IdentityPath:
		return "path"
	case IdentityCustom:
		return "custom"
	}
	return fmt.Sprintf("IdentityKind(%d)", int(k))
}

// Identity names one remote resource: a WebId, a database/tag path, or a
// custom endpoint. The zero value is invalid.
type Identity struct {
	kind     IdentityKind
	webID    string
	database string
	tag      string
	url      string
}

// ByWebID identifies a resource by its WebId.
func ByWebID(webID string) Identity {
	return Identity{kind: IdentityWebID, webID: webID}
}

// ByPath identifies a point by database and tag.
func ByPath(database, tag string) Identity {
	return Identity{kind: IdentityPath, database: database, tag: tag}
}

// Custom identifies a resource by a URL relative to the server base URL or
// an absolute http(s) URL.
func Custom(target string) Identity {
	return Identity{kind: IdentityCustom, url: target}
}

func (i Identity) Kind() IdentityKind { return i.kind }
func (i Identity) WebID() string      { return i.webID }
func (i Identity) Database() string   { return i.database }
func (i Identity) Tag() string        { return i.tag }
func (i Identity) URL() string        { return i.url }

func (i Identity) String() string {
	switch i.kind {
	case IdentityWebID:
		return "webId:" + i.webID
	case IdentityPath:
		return "path:" + PointPath(i.database, i.tag)
	case IdentityCustom:
		return "custom:" + i.url
	}
	return "invalid"
}

// PointPath builds the hierarchical point path `\\database\tag`.
func PointPath(database, tag string) string {
	return `\\` + database + `\` + tag
}

// componentUnescaper restores the characters url.QueryEscape encodes but
// URI components leave as is. A literal '%' is always emitted as %25, so
// these sequences can only come from the characters themselves.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeComponent percent-encodes s for use as a query parameter value, the
// way URI components are encoded: spaces become %20 and !'()* are kept.
func EncodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}

// PointLookupPath returns the relative URL that looks up a point by path.
func PointLookupPath(database, tag string) string {
	return "/points?path=" + EncodeComponent(PointPath(database, tag))
}
