package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/hirehub/internal/app/system/httpjson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ServiceKeyHeader carries the shared key presented by trusted internal
// callers (billing webhooks, identity sync).
const ServiceKeyHeader = "X-Service-Key"

// ServiceNameHeader optionally names the calling service for logs.
const ServiceNameHeader = "X-Service-Name"

// ErrServiceIdentityRequired is returned by operations that may only run on
// behalf of a trusted service.
var ErrServiceIdentityRequired = errors.New("trusted service identity required")

// ServiceIdentity is proof that the request was authenticated as a trusted
// internal caller. The zero value is not trusted. Production code obtains a
// trusted identity only from RequireService; WithTestService and
// WithTestServiceRequest mint one without a key and exist for tests alone,
// like WithTestUser for sessions. Taking a ServiceIdentity parameter keeps
// the trust boundary visible in every signature.
type ServiceIdentity struct {
	name    string
	trusted bool
}

// Name returns the caller-declared service name.
func (s ServiceIdentity) Name() string { return s.name }

// Trusted reports whether the identity came from a verified service key.
func (s ServiceIdentity) Trusted() bool { return s.trusted }

// Check returns ErrServiceIdentityRequired for an untrusted identity.
func (s ServiceIdentity) Check() error {
	if !s.trusted {
		return ErrServiceIdentityRequired
	}
	return nil
}

const serviceKey ctxKey = "serviceIdentity"

// ServiceFromContext returns the identity stored by RequireService.
func ServiceFromContext(ctx context.Context) ServiceIdentity {
	s, _ := ctx.Value(serviceKey).(ServiceIdentity)
	return s
}

// ServiceFrom returns the service identity for r (zero if none).
func ServiceFrom(r *http.Request) ServiceIdentity {
	return ServiceFromContext(r.Context())
}

// WithTestService returns a trusted identity without verifying a key.
// Tests only; handlers must use ServiceFrom.
func WithTestService(name string) ServiceIdentity {
	return ServiceIdentity{name: name, trusted: true}
}

// WithTestServiceRequest returns a copy of r carrying a trusted identity,
// as RequireService would attach. Tests only.
func WithTestServiceRequest(r *http.Request, name string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), serviceKey, WithTestService(name)))
}

// ServiceKeys verifies presented service keys against a bcrypt hash.
type ServiceKeys struct {
	hash []byte
	log  *zap.Logger
}

// NewServiceKeys returns a verifier for the given bcrypt hash. An empty hash
// disables every internal route.
func NewServiceKeys(hash string, logger *zap.Logger) (*ServiceKeys, error) {
	hash = strings.TrimSpace(hash)
	if hash != "" {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, err
		}
	} else {
		logger.Warn("service_key_hash is empty; internal routes will reject all callers")
	}
	return &ServiceKeys{hash: []byte(hash), log: logger}, nil
}

// Verify reports whether key matches the configured hash.
func (k *ServiceKeys) Verify(key string) bool {
	if len(k.hash) == 0 || key == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword(k.hash, []byte(key)) == nil
}

// RequireService rejects requests without a valid service key and attaches a
// trusted ServiceIdentity to the rest.
func (k *ServiceKeys) RequireService(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(ServiceKeyHeader)
		if !k.Verify(key) {
			k.log.Warn("service key rejected",
				zap.String("path", r.URL.Path),
				zap.String("service", r.Header.Get(ServiceNameHeader)))
			httpjson.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		name := r.Header.Get(ServiceNameHeader)
		if name == "" {
			name = "internal"
		}
		id := ServiceIdentity{name: name, trusted: true}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), serviceKey, id)))
	})
}
