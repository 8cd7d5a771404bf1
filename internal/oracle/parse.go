package oracle

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var answerRegex = regexp.MustCompile(`(?is)<answer>(.*?)</answer>`)

// extractAnswer pulls the demarcated answer region out of a free-form reply.
func extractAnswer(response string) (string, bool) {
	m := answerRegex.FindStringSubmatch(response)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// pair preserves the order in which keys appeared in the reply. Question
// batches rely on this: ties in EIG are broken by original batch order.
type pair struct {
	key   string
	value string
}

// parsePairs reads a key->string-value object literal. The primary parse is
// strict JSON; on failure it falls back to a permissive literal parse that
// accepts single-quoted strings, bare numeric keys and trailing commas, which
// models routinely emit despite the format instructions.
func parsePairs(content string) ([]pair, error) {
	pairs, jsonErr := parseJSONPairs(content)
	if jsonErr == nil {
		return pairs, nil
	}
	pairs, looseErr := parseLoosePairs(content)
	if looseErr == nil {
		return pairs, nil
	}
	return nil, fmt.Errorf("strict parse: %v; fallback parse: %v", jsonErr, looseErr)
}

func parseJSONPairs(content string) ([]pair, error) {
	dec := json.NewDecoder(strings.NewReader(content))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object literal, got %v", tok)
	}

	var pairs []pair
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected string key, got %v", keyTok)
		}
		valTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		val, ok := valTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected string value for key %q, got %v", key, valTok)
		}
		pairs = append(pairs, pair{key: key, value: val})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return pairs, nil
}

// parseLoosePairs scans a Python-style dict literal: {1: 'coconut', 2: "kiwi"}.
func parseLoosePairs(content string) ([]pair, error) {
	s := strings.TrimSpace(content)
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return nil, fmt.Errorf("not a dict literal")
	}
	s = s[1 : len(s)-1]

	var pairs []pair
	i := 0
	for {
		key, next, ok := readToken(s, i, ":")
		if !ok {
			break
		}
		if next >= len(s) || s[next] != ':' {
			return nil, fmt.Errorf("expected ':' after key %q", key)
		}
		val, next, ok := readToken(s, next+1, ",}")
		if !ok {
			return nil, fmt.Errorf("missing value for key %q", key)
		}
		pairs = append(pairs, pair{key: key, value: val})
		i = next
		if i < len(s) && s[i] == ',' {
			i++
		}
	}
	if len(pairs) == 0 {
		return nil, fmt.Errorf("empty dict literal")
	}
	return pairs, nil
}

// readToken reads one quoted or bare token starting at i, stopping a bare
// token at any byte in stop. Returns the token, the index of the terminator
// and whether a token was found.
func readToken(s string, i int, stop string) (string, int, bool) {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	if i >= len(s) {
		return "", i, false
	}

	if s[i] == '\'' || s[i] == '"' {
		quote := s[i]
		j := i + 1
		for j < len(s) && s[j] != quote {
			if s[j] == '\\' {
				j++
			}
			j++
		}
		if j >= len(s) {
			return "", i, false
		}
		tok := strings.ReplaceAll(s[i+1:j], `\`+string(quote), string(quote))
		j++
		for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n' || s[j] == '\r') {
			j++
		}
		return tok, j, true
	}

	j := i
	for j < len(s) && !strings.ContainsRune(stop, rune(s[j])) {
		j++
	}
	tok := strings.TrimSpace(s[i:j])
	if tok == "" {
		return "", j, false
	}
	return tok, j, true
}

// parseStringList returns the object literal's values in document order.
func parseStringList(content string) ([]string, error) {
	pairs, err := parsePairs(content)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, p.value)
	}
	return out, nil
}

// parseStringMap returns the object literal as a plain map.
func parseStringMap(content string) (map[string]string, error) {
	pairs, err := parsePairs(content)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		out[p.key] = p.value
	}
	return out, nil
}
