package idp

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// googleCertsURL serves the x509 certificates Firebase signs ID tokens with,
// keyed by kid and rotated regularly.
const googleCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

// Identity is the verified subject extracted from a Firebase ID token.
type Identity struct {
	UID           string
	Email         string
	EmailVerified bool
}

// Verifier validates Firebase ID tokens for a single project. It is
// constructed once at startup and passed by handle to whatever needs it;
// there is no package-level state.
type Verifier struct {
	projectID string
	parser    *jwt.Parser
	keyfunc   jwt.Keyfunc
}

// NewVerifier creates a Verifier backed by Google's public signing
// certificates, fetched lazily and cached per their Cache-Control headers.
func NewVerifier(projectID string) *Verifier {
	certs := &certSource{
		client: &http.Client{Timeout: 10 * time.Second},
		url:    googleCertsURL,
	}
	return NewVerifierWithKeyfunc(projectID, certs.keyfunc)
}

// NewVerifierWithKeyfunc creates a Verifier with a custom key source.
// Used by tests to avoid the network fetch.
func NewVerifierWithKeyfunc(projectID string, keyfunc jwt.Keyfunc) *Verifier {
	return &Verifier{
		projectID: projectID,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{"RS256"}),
			jwt.WithIssuer("https://securetoken.google.com/"+projectID),
			jwt.WithAudience(projectID),
			jwt.WithExpirationRequired(),
		),
		keyfunc: keyfunc,
	}
}

type firebaseClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// Verify parses and validates an ID token and returns the identity it
// asserts. Any parse, signature, or claim failure is returned as a single
// wrapped error; callers treat all of them as unauthorized.
func (v *Verifier) Verify(idToken string) (*Identity, error) {
	claims := &firebaseClaims{}

	token, err := v.parser.ParseWithClaims(idToken, claims, v.keyfunc)
	if err != nil {
		return nil, fmt.Errorf("invalid id token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid id token")
	}

	uid := claims.Subject
	if uid == "" {
		return nil, fmt.Errorf("invalid id token: missing subject")
	}

	return &Identity{
		UID:           uid,
		Email:         claims.Email,
		EmailVerified: claims.EmailVerified,
	}, nil
}

// certSource fetches and caches Google's token-signing certificates.
type certSource struct {
	client *http.Client
	url    string

	mu      sync.Mutex
	keys    map[string]*rsa.PublicKey
	expires time.Time
}

func (cs *certSource) keyfunc(token *jwt.Token) (interface{}, error) {
	kid, _ := token.Header["kid"].(string)
	if kid == "" {
		return nil, fmt.Errorf("token missing kid header")
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.keys == nil || time.Now().After(cs.expires) {
		if err := cs.refresh(); err != nil {
			return nil, err
		}
	}

	key, ok := cs.keys[kid]
	if !ok {
		// kid may belong to a freshly rotated cert; refresh once more
		if err := cs.refresh(); err != nil {
			return nil, err
		}
		if key, ok = cs.keys[kid]; !ok {
			return nil, fmt.Errorf("unknown signing key %q", kid)
		}
	}

	return key, nil
}

// refresh re-fetches the certificate set. Caller holds cs.mu.
func (cs *certSource) refresh() error {
	resp, err := cs.client.Get(cs.url)
	if err != nil {
		return fmt.Errorf("failed to fetch signing certs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch signing certs: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read signing certs: %w", err)
	}

	var pemCerts map[string]string
	if err := json.Unmarshal(body, &pemCerts); err != nil {
		return fmt.Errorf("failed to decode signing certs: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(pemCerts))
	for kid, pemCert := range pemCerts {
		block, _ := pem.Decode([]byte(pemCert))
		if block == nil {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			continue
		}
		if pub, ok := cert.PublicKey.(*rsa.PublicKey); ok {
			keys[kid] = pub
		}
	}

	if len(keys) == 0 {
		return fmt.Errorf("no usable signing certs in response")
	}

	cs.keys = keys
	cs.expires = time.Now().Add(parseMaxAge(resp.Header.Get("Cache-Control")))
	return nil
}

// parseMaxAge extracts max-age from a Cache-Control header, defaulting to an
// hour when absent or malformed.
func parseMaxAge(header string) time.Duration {
	for _, directive := range strings.Split(header, ",") {
		directive = strings.TrimSpace(directive)
		if value, ok := strings.CutPrefix(directive, "max-age="); ok {
			if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
				return time.Duration(seconds) * time.Second
			}
		}
	}
	return time.Hour
}
