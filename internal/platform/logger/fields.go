package logger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"sync"
)

type fieldRule int

const (
	ruleKeep fieldRule = iota
	ruleRedact
	ruleHash
	ruleChannel
)

// Credentials and learner-authored profile text never reach the log.
var redactedParts = []string{
	"token", "authorization", "password", "secret", "cookie",
	"email", "bio", "nickname",
}

// Ids that resolve to one learner are hashed so lines still correlate.
// Catalog ids (module_id, chapter_id, lesson_id) stay readable.
var hashedKeys = map[string]bool{
	"user_id":         true,
	"actor_id":        true,
	"session_id":      true,
	"enrollment_id":   true,
	"achievement_id":  true,
	"notification_id": true,
	"subscription_id": true,
	"award_key":       true,
}

const userChannelPrefix = "user:"

var (
	redactOnce       sync.Once
	redactionEnabled bool
	hashSalt         string
)

func ruleFor(key string) fieldRule {
	if key == "" {
		return ruleKeep
	}
	for _, part := range redactedParts {
		if strings.Contains(key, part) {
			return ruleRedact
		}
	}
	if hashedKeys[key] || strings.HasSuffix(key, "_user_id") {
		return ruleHash
	}
	if key == "channel" {
		return ruleChannel
	}
	return ruleKeep
}

func sanitizeKVs(kv []interface{}) []interface{} {
	if len(kv) == 0 || !redactionOn() {
		return kv
	}
	out := make([]interface{}, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		name := toString(kv[i])
		out = append(out, name, sanitizeValue(normalizeKey(name), kv[i+1]))
	}
	return out
}

// normalizeKey folds userId, UserID and user-id onto user_id.
func normalizeKey(k string) string {
	k = strings.TrimSpace(k)
	var b strings.Builder
	prevLower := false
	for _, r := range k {
		switch {
		case r == '-' || r == ' ':
			b.WriteByte('_')
			prevLower = false
		case r >= 'A' && r <= 'Z':
			if prevLower {
				b.WriteByte('_')
			}
			b.WriteRune(r + ('a' - 'A'))
			prevLower = false
		default:
			b.WriteRune(r)
			prevLower = r >= 'a' && r <= 'z' || r >= '0' && r <= '9'
		}
	}
	return b.String()
}

func sanitizeValue(key string, val interface{}) interface{} {
	switch ruleFor(key) {
	case ruleRedact:
		return "[REDACTED]"
	case ruleHash:
		return hashValue(val)
	case ruleChannel:
		if s, ok := val.(string); ok && strings.HasPrefix(s, userChannelPrefix) {
			return userChannelPrefix + hashValue(strings.TrimPrefix(s, userChannelPrefix))
		}
		return val
	}
	if m, ok := val.(map[string]interface{}); ok {
		out := make(map[string]interface{}, len(m))
		for k, v := range m {
			out[k] = sanitizeValue(normalizeKey(k), v)
		}
		return out
	}
	if s, ok := val.(string); ok && looksLikeJWT(s) {
		return "[REDACTED]"
	}
	return val
}

func hashValue(val interface{}) string {
	raw := toString(val)
	if raw == "" {
		return ""
	}
	h := sha256.New()
	if hashSalt != "" {
		_, _ = h.Write([]byte(hashSalt))
	}
	_, _ = h.Write([]byte(raw))
	return "hash:" + hex.EncodeToString(h.Sum(nil))[:12]
}

func looksLikeJWT(s string) bool {
	parts := strings.Split(s, ".")
	return len(parts) == 3 && len(parts[0]) > 10 && len(parts[1]) > 10
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

func redactionOn() bool {
	redactOnce.Do(func() {
		switch strings.TrimSpace(strings.ToLower(os.Getenv("LOG_REDACTION_ENABLED"))) {
		case "0", "false", "no", "off":
			redactionEnabled = false
		default:
			redactionEnabled = true
		}
		hashSalt = strings.TrimSpace(os.Getenv("LOG_HASH_SALT"))
	})
	return redactionEnabled
}
