package dispatch

import (
	"context"
	"net/http"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/sensetecnic/webapi-bridge/pkg/webapi"
)

// Server is the remote surface a node talks to. *webapi.Client implements it.
type Server interface {
	Query(ctx context.Context, id webapi.Identity, opts webapi.QueryOptions) (any, error)
	Write(ctx context.Context, id webapi.Identity, method string, body any) (any, error)
	ListAllAssetServers(ctx context.Context) (any, error)
	ListAllDataServers(ctx context.Context) (any, error)
	ListAllAssetDatabases(ctx context.Context) ([]any, error)
	ListAllPoints(ctx context.Context) ([]any, error)
}

var _ Server = (*webapi.Client)(nil)

// Node handles invocations for one configured writer or querier.
type Node interface {
	Name() string
	Validate() error
	Handle(ctx context.Context, msg Message) (any, error)
}

// WriteConfig configures a Writer.
type WriteConfig struct {
	Server Server
	Mode   WriteMode

	// RequestMethod is the HTTP method for writes. Default: POST
	RequestMethod string

	WebID     string
	Database  string
	Tag       string
	CustomURL string
}

// Writer sends message payloads to the historian.
type Writer struct {
	name   string
	cfg    WriteConfig
	logger hclog.Logger
}

var _ Node = (*Writer)(nil)

// NewWriter returns a Writer named name. A nil logger discards output.
func NewWriter(name string, cfg WriteConfig, logger hclog.Logger) *Writer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Writer{
		name:   name,
		cfg:    cfg,
		logger: logger.Named("writer").With("node", name),
	}
}

func (w *Writer) Name() string { return w.name }

// Validate reports configuration problems detectable before any message
// arrives.
func (w *Writer) Validate() error {
	checks := []check{
		serverCheck(webapi.CodeAuthMethodMissing, w.cfg.Server),
		writeModeCheck(w.cfg.Mode),
	}
	return runChecks("Writer", append(checks, w.targetChecks()...)...)
}

func (w *Writer) targetChecks() []check {
	switch w.cfg.Mode {
	case WriteByWebID:
		return []check{webIDCheck(w.cfg.WebID)}
	case WriteByPath:
		return pathChecks(w.cfg.Database, w.cfg.Tag)
	}
	return nil
}

// Handle writes msg.Payload to the configured target. Configuration errors
// are reported without contacting the server.
func (w *Writer) Handle(ctx context.Context, msg Message) (any, error) {
	const op = "Write"

	if err := runChecks(op, serverCheck(webapi.CodeClientUndefined, w.cfg.Server)); err != nil {
		return nil, err
	}
	if err := runChecks(op, writeModeCheck(w.cfg.Mode)); err != nil {
		return nil, err
	}
	if !msg.HasPayload {
		return nil, webapi.NewConfigError(op, webapi.CodeCheckMsgFormat)
	}
	if err := runChecks(op, w.targetChecks()...); err != nil {
		return nil, err
	}

	method := strings.ToUpper(w.cfg.RequestMethod)
	if method == "" {
		method = http.MethodPost
	}

	var id webapi.Identity
	switch w.cfg.Mode {
	case WriteByWebID:
		id = webapi.ByWebID(w.cfg.WebID)
	case WriteByPath:
		id = webapi.ByPath(w.cfg.Database, w.cfg.Tag)
	case WriteCustom:
		id = webapi.Custom(w.cfg.CustomURL)
	default:
		return nil, webapi.NewConfigError(op, webapi.CodeWriteMethodMissing)
	}

	w.logger.Debug("writing", "msg_id", msg.ID, "target", id.String(), "method", method)
	return w.cfg.Server.Write(ctx, id, method, msg.Payload)
}

// QueryConfig configures a Querier.
type QueryConfig struct {
	Server Server
	Mode   QueryMode

	WebID     string
	DataType  string
	StartTime string
	EndTime   string

	Database string
	Tag      string

	CustomURL string
	Order     SortOrder
}

// Querier reads from the historian when triggered.
type Querier struct {
	name   string
	cfg    QueryConfig
	logger hclog.Logger
}

var _ Node = (*Querier)(nil)

// NewQuerier returns a Querier named name. A nil logger discards output.
func NewQuerier(name string, cfg QueryConfig, logger hclog.Logger) *Querier {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Querier{
		name:   name,
		cfg:    cfg,
		logger: logger.Named("querier").With("node", name),
	}
}

func (q *Querier) Name() string { return q.name }

// Validate reports configuration problems detectable before any message
// arrives.
func (q *Querier) Validate() error {
	checks := []check{
		serverCheck(webapi.CodeAuthMethodMissing, q.cfg.Server),
		queryModeCheck(q.cfg.Mode),
	}
	return runChecks("Querier", append(checks, q.targetChecks()...)...)
}

func (q *Querier) targetChecks() []check {
	switch q.cfg.Mode {
	case QueryByWebID:
		return []check{webIDCheck(q.cfg.WebID)}
	case QueryByPath:
		return pathChecks(q.cfg.Database, q.cfg.Tag)
	}
	return nil
}

// Handle runs the configured query. The message only triggers it.
func (q *Querier) Handle(ctx context.Context, msg Message) (any, error) {
	const op = "Query"

	if err := runChecks(op, serverCheck(webapi.CodeClientUndefined, q.cfg.Server)); err != nil {
		return nil, err
	}
	if err := runChecks(op, queryModeCheck(q.cfg.Mode)); err != nil {
		return nil, err
	}
	if err := runChecks(op, q.targetChecks()...); err != nil {
		return nil, err
	}

	q.logger.Debug("querying", "msg_id", msg.ID, "mode", q.cfg.Mode)

	opts := webapi.QueryOptions{
		DataType:  q.cfg.DataType,
		StartTime: q.cfg.StartTime,
		EndTime:   q.cfg.EndTime,
	}

	s := q.cfg.Server
	switch q.cfg.Mode {
	case QueryByWebID:
		return s.Query(ctx, webapi.ByWebID(q.cfg.WebID), opts)
	case QueryByPath:
		return s.Query(ctx, webapi.ByPath(q.cfg.Database, q.cfg.Tag), opts)
	case QueryCustom:
		target := appendQuery(q.cfg.CustomURL, q.cfg.Order.QuerySuffix())
		return s.Query(ctx, webapi.Custom(target), opts)
	case QueryListAllAssetServers:
		return s.ListAllAssetServers(ctx)
	case QueryListAllDataServers:
		return s.ListAllDataServers(ctx)
	case QueryListAllAssetDb:
		return wrapList(s.ListAllAssetDatabases(ctx))
	case QueryListAllPoints:
		return wrapList(s.ListAllPoints(ctx))
	}
	return nil, webapi.NewConfigError(op, webapi.CodeQueryMethodMissing)
}

// wrapList keeps a failed fan-out from surfacing as a typed nil slice.
func wrapList(items []any, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return items, nil
}
