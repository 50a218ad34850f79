package jwtx

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a token and gives you back the claims if it's legit.
type Verifier interface {
	Verify(token string) (Token, error)
}

var (
	// ErrInvalidToken covers bad signatures, wrong issuer, wrong algorithm
	// and expiry. The wrapped cause says which.
	ErrInvalidToken = errors.New("jwtx: invalid token")

	// ErrMalformedPayload means the signature checked out but the payload
	// could not be decoded into a Claims value.
	ErrMalformedPayload = errors.New("jwtx: malformed payload")
)

// Verify checks signature, algorithm, issuer and expiry, then strictly
// decodes the payload into typed claims.
func (h *HS256) Verify(tokenStr string) (Token, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(h.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(h.now),
	)

	mc := jwt.MapClaims{}
	tok, err := parser.ParseWithClaims(tokenStr, mc, func(t *jwt.Token) (any, error) {
		return h.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) && h.signedByUs(tokenStr) {
			return Token{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
		}
		return Token{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !tok.Valid {
		return Token{}, ErrInvalidToken
	}

	return decodeClaims(mc)
}

// signedByUs reports whether tokenStr carries a valid HS256 signature under
// our secret, whatever its payload holds. It separates a payload we signed
// but cannot decode from a forged or corrupted token.
func (h *HS256) signedByUs(tokenStr string) bool {
	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 {
		return false
	}

	rawHeader, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return false
	}
	var header struct {
		Alg string `json:"alg"`
	}
	if json.Unmarshal(rawHeader, &header) != nil || header.Alg != jwt.SigningMethodHS256.Alg() {
		return false
	}

	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return false
	}
	return jwt.SigningMethodHS256.Verify(parts[0]+"."+parts[1], sig, h.secret) == nil
}

// decodeClaims turns the loosely typed map into a Token, rejecting any
// field that is present with the wrong shape.
func decodeClaims(mc jwt.MapClaims) (Token, error) {
	var (
		out Token
		err error
	)

	out.Subject, err = subjectOf(mc["sub"])
	if err != nil {
		return Token{}, err
	}

	if out.Email, err = stringOf(mc, "email", true); err != nil {
		return Token{}, err
	}
	if out.Name, err = stringOf(mc, "name", false); err != nil {
		return Token{}, err
	}
	if out.Role, err = stringOf(mc, "role", false); err != nil {
		return Token{}, err
	}

	out.Issuer, _ = mc["iss"].(string)
	if iat, _ := mc.GetIssuedAt(); iat != nil {
		out.IssuedAt = iat.Time
	}
	if exp, _ := mc.GetExpirationTime(); exp != nil {
		out.ExpiresAt = exp.Time
	}

	return out, nil
}

func subjectOf(v any) (int64, error) {
	switch s := v.(type) {
	case float64:
		if s != math.Trunc(s) || math.IsInf(s, 0) || math.IsNaN(s) {
			return 0, fmt.Errorf("%w: sub is not an integer", ErrMalformedPayload)
		}
		if s >= math.MaxInt64 || s < math.MinInt64 {
			return 0, fmt.Errorf("%w: sub %g is out of range", ErrMalformedPayload, s)
		}
		return int64(s), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: sub %q is not numeric", ErrMalformedPayload, s)
		}
		return n, nil
	case nil:
		return 0, fmt.Errorf("%w: missing sub", ErrMalformedPayload)
	default:
		return 0, fmt.Errorf("%w: sub has type %T", ErrMalformedPayload, v)
	}
}

// stringOf reads a string claim. Numbers and booleans are coerced to their
// text form, objects and arrays are rejected.
func stringOf(mc jwt.MapClaims, key string, required bool) (string, error) {
	v, ok := mc[key]
	if !ok || v == nil {
		if required {
			return "", fmt.Errorf("%w: missing %s", ErrMalformedPayload, key)
		}
		return "", nil
	}

	switch s := v.(type) {
	case string:
		return s, nil
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(s), nil
	default:
		return "", fmt.Errorf("%w: %s has type %T", ErrMalformedPayload, key, v)
	}
}

// IsExpired reports whether err was caused by an elapsed exp claim.
func IsExpired(err error) bool {
	return errors.Is(err, jwt.ErrTokenExpired)
}

var (
	_ Signer   = (*HS256)(nil)
	_ Verifier = (*HS256)(nil)
)
