package plugin

import (
	"crypto/md5"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/fathomsearch/fathom/modules/result"
	"github.com/fathomsearch/fathom/modules/search"
)

// Hasher answers "md5 <text>" style queries with the digest, skipping the
// engines entirely.
type Hasher struct{}

func (Hasher) Name() string        { return "hash" }
func (Hasher) Description() string { return "Computes cryptographic digests of text" }

var hashAlgos = map[string]func(string) string{
	"md5": func(s string) string {
		sum := md5.Sum([]byte(s))
		return hex.EncodeToString(sum[:])
	},
	"sha256": func(s string) string {
		sum := sha256.Sum256([]byte(s))
		return hex.EncodeToString(sum[:])
	},
	"sha512": func(s string) string {
		sum := sha512.Sum512([]byte(s))
		return hex.EncodeToString(sum[:])
	},
}

func (Hasher) PreSearch(q *search.Query) PreResult {
	fields := strings.Fields(q.CleanQuery)
	if len(fields) < 2 {
		return Continue
	}

	algo := strings.ReplaceAll(strings.ToLower(fields[0]), "-", "")
	fn, ok := hashAlgos[algo]
	if !ok {
		return Continue
	}

	text := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(q.CleanQuery), fields[0]))
	return PreResult{
		Verdict: VerdictSkip,
		Answer: &result.Answer{
			Text:   fmt.Sprintf("%s hash of %q: %s", strings.ToUpper(algo), text, fn(text)),
			Engine: "hash",
		},
	}
}
