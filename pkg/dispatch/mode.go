package dispatch

import (
	"fmt"
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/sensetecnic/webapi-bridge/pkg/webapi"
)

// WriteMode selects how a Writer addresses its target.
type WriteMode string

const (
	WriteByWebID WriteMode = "webId"
	WriteByPath  WriteMode = "path"
	WriteCustom  WriteMode = "custom"
)

// WriteModes lists every valid WriteMode.
var WriteModes = []WriteMode{WriteByWebID, WriteByPath, WriteCustom}

// QueryMode selects what a Querier reads.
type QueryMode string

const (
	QueryByWebID             QueryMode = "webId"
	QueryByPath              QueryMode = "path"
	QueryCustom              QueryMode = "custom"
	QueryListAllAssetDb      QueryMode = "listAllAssetDb"
	QueryListAllDataServers  QueryMode = "listAllDataServers"
	QueryListAllAssetServers QueryMode = "listAllAssetServers"
	QueryListAllPoints       QueryMode = "listAllPoints"
)

// QueryModes lists every valid QueryMode.
var QueryModes = []QueryMode{
	QueryByWebID,
	QueryByPath,
	QueryCustom,
	QueryListAllAssetDb,
	QueryListAllDataServers,
	QueryListAllAssetServers,
	QueryListAllPoints,
}

// ParseWriteMode accepts a mode name in camel, snake or kebab case, e.g.
// "webId", "web_id" or "WEB-ID".
func ParseWriteMode(s string) (WriteMode, error) {
	name := normalizeMode(s)
	for _, m := range WriteModes {
		if string(m) == name {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown write method %q", s)
}

// ParseQueryMode accepts a mode name in camel, snake or kebab case, e.g.
// "listAllPoints" or "list_all_points".
func ParseQueryMode(s string) (QueryMode, error) {
	name := normalizeMode(s)
	for _, m := range QueryModes {
		if string(m) == name {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown query method %q", s)
}

// TakesTimeWindow reports whether a start or end time affects a query in
// mode m reading dataType. Only stream reads by WebId or path take one.
func (m QueryMode) TakesTimeWindow(dataType string) bool {
	if m != QueryByWebID && m != QueryByPath {
		return false
	}
	return dataType != webapi.DataTypeAttributes && dataType != webapi.DataTypeSelf
}

func normalizeMode(s string) string {
	return strcase.ToLowerCamel(strings.TrimSpace(s))
}

// SortOrder orders the items of a custom list query by name.
type SortOrder int

const (
	SortDescending SortOrder = iota
	SortAscending
)

// ParseSortOrder accepts "1", "asc" or "ascending" for ascending order and
// "", "0", "desc" or "descending" for descending order.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "asc", "ascending":
		return SortAscending, nil
	case "", "0", "desc", "descending":
		return SortDescending, nil
	}
	return SortDescending, fmt.Errorf("unknown sort order %q", s)
}

func (o SortOrder) String() string {
	if o == SortAscending {
		return "Ascending"
	}
	return "Descending"
}

// QuerySuffix returns the sort parameters appended to custom queries.
func (o SortOrder) QuerySuffix() string {
	return "sortField=Name&sortOrder=" + o.String()
}

// appendQuery joins suffix to target with '?' or '&'.
func appendQuery(target, suffix string) string {
	if strings.Contains(target, "?") {
		return target + "&" + suffix
	}
	return target + "?" + suffix
}
