package dispatch

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/sensetecnic/webapi-bridge/pkg/webapi"
)

// check pairs a value and its rules with the error code reported when the
// rules fail.
type check struct {
	code  string
	field string
	value interface{}
	rules []validation.Rule
}

// runChecks validates checks in order and returns a ConfigError for the
// first that fails.
func runChecks(op string, checks ...check) error {
	for _, c := range checks {
		if err := validation.Validate(c.value, c.rules...); err != nil {
			return webapi.NewConfigErrorf(op, c.code, "%s %w", c.field, err)
		}
	}
	return nil
}

func serverCheck(code string, s Server) check {
	return check{code: code, field: "server", value: s, rules: []validation.Rule{validation.NotNil}}
}

func writeModeCheck(m WriteMode) check {
	values := make([]interface{}, len(WriteModes))
	for i, v := range WriteModes {
		values[i] = v
	}
	return check{
		code:  webapi.CodeWriteMethodMissing,
		field: "method",
		value: m,
		rules: []validation.Rule{validation.Required, validation.In(values...)},
	}
}

func queryModeCheck(m QueryMode) check {
	values := make([]interface{}, len(QueryModes))
	for i, v := range QueryModes {
		values[i] = v
	}
	return check{
		code:  webapi.CodeQueryMethodMissing,
		field: "method",
		value: m,
		rules: []validation.Rule{validation.Required, validation.In(values...)},
	}
}

func webIDCheck(webID string) check {
	return check{code: webapi.CodeWebIDMissing, field: "web_id", value: webID, rules: []validation.Rule{validation.Required}}
}

func pathChecks(database, tag string) []check {
	return []check{
		{code: webapi.CodePathElementMissing, field: "database", value: database, rules: []validation.Rule{validation.Required}},
		{code: webapi.CodePathElementMissing, field: "tag", value: tag, rules: []validation.Rule{validation.Required}},
	}
}
