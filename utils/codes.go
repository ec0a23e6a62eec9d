package utils

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"
)

// EnvOrDefault returns the trimmed env value or def when unset/blank.
func EnvOrDefault(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

const keyCodeCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateKeyCode returns an n-character code for a room key card.
// rand.Int keeps the distribution uniform over the charset.
func GenerateKeyCode(n int) (string, error) {
	if n <= 0 {
		return "", errors.New("invalid length")
	}
	var sb strings.Builder
	alphaLen := big.NewInt(int64(len(keyCodeCharset)))
	for i := 0; i < n; i++ {
		num, err := rand.Int(rand.Reader, alphaLen)
		if err != nil {
			return "", err
		}
		sb.WriteByte(keyCodeCharset[num.Int64()])
	}
	return sb.String(), nil
}

// GenerateKeyCodes returns count distinct formatted key codes ("XXXX-XXXX").
func GenerateKeyCodes(count int) ([]string, error) {
	seen := make(map[string]struct{}, count)
	out := make([]string, 0, count)
	for len(out) < count {
		raw, err := GenerateKeyCode(8)
		if err != nil {
			return nil, err
		}
		code := raw[:4] + "-" + raw[4:]
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out, nil
}

// DisplayNumber formats a sequence value as PREFIX-000042.
func DisplayNumber(prefix string, n int64) string {
	return fmt.Sprintf("%s-%06d", prefix, n)
}

// MaskEmail hides most of the local part and the first domain label,
// for log lines.
func MaskEmail(email string) string {
	email = strings.TrimSpace(email)
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}
	local := parts[0]
	domain := parts[1]

	maskedLocal := local
	if len(local) > 2 {
		maskedLocal = local[:1] + strings.Repeat("*", len(local)-2) + local[len(local)-1:]
	} else if len(local) == 2 {
		maskedLocal = local[:1] + "*"
	}

	domainParts := strings.Split(domain, ".")
	if len(domainParts) >= 2 && len(domainParts[0]) > 1 {
		domainParts[0] = domainParts[0][:1] + strings.Repeat("*", len(domainParts[0])-1)
	}

	return maskedLocal + "@" + strings.Join(domainParts, ".")
}
