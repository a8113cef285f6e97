package ctxutil

// AuditMeta carries the metadata needed to record who did what to an org's
// scheduling data. It lives in ctxutil so both server and mcp packages can
// populate it without circular imports.
type AuditMeta struct {
	RequestID  string
	OrgID      string
	ActorID    string
	ActorRole  string
	HTTPMethod string
	Endpoint   string
}
