package core

import "context"

// Permission is an access-control predicate attached to a registered task.
// The core instantiates and carries permissions; consulting them when a job
// is about to run is the execution layer's business.
type Permission interface {
	Allows(ctx context.Context, job *Job) bool
}

// PermissionFactory is a zero-argument permission constructor. Registrations
// take factories rather than instances so each RegisteredJob owns a fresh
// predicate set.
type PermissionFactory func() Permission
