package webapi

import "encoding/base64"

// AuthMethod selects how requests are authenticated.
type AuthMethod string

const (
	AuthBasic     AuthMethod = "basic"
	AuthAnonymous AuthMethod = "anonymous"
)

// Credentials is the username/password pair used by basic authentication.
type Credentials struct {
	Username string `hcl:"username,optional" json:"username"`
	Password string `hcl:"password,optional" json:"-"`
}

// AuthHeader computes the Authorization header value for method.
//
// Basic authentication with absent credentials yields an empty value and no
// error; callers decide whether that is acceptable. Anonymous access always
// yields an empty value, meaning no header is sent.
func AuthHeader(method AuthMethod, creds *Credentials) (string, error) {
	switch method {
	case AuthBasic:
		if creds == nil || creds.Username == "" {
			return "", nil
		}
		enc := base64.StdEncoding.EncodeToString([]byte(creds.Username + ":" + creds.Password))
		return "Basic " + enc, nil
	case AuthAnonymous:
		return "", nil
	default:
		return "", NewConfigErrorf("AuthHeader", CodeAuthMethodMissing,
			"unsupported authentication method %q", method)
	}
}
