package endpoint

import "strings"

// JoinPath joins a root path and an endpoint subpath with exactly one
// separator between them. The result always starts with "/".
//
//	JoinPath("/api/", "/users/:id") == "/api/users/:id"
//	JoinPath("/api", "")            == "/api"
//	JoinPath("", "users")           == "/users"
func JoinPath(root, sub string) string {
	root = strings.TrimRight(root, "/")
	sub = strings.TrimLeft(sub, "/")

	switch {
	case sub == "":
		if root == "" {
			return "/"
		}
		return ensureLeadingSlash(root)
	case root == "":
		return "/" + sub
	default:
		return ensureLeadingSlash(root) + "/" + sub
	}
}

func ensureLeadingSlash(p string) string {
	if strings.HasPrefix(p, "/") {
		return p
	}
	return "/" + p
}
