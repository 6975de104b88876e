package permission

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// InputKind tags the wire shape a caller submits permissions in. The
// caller declares the kind explicitly; the server never sniffs shapes.
type InputKind string

const (
	// KindList is a flat array of "module:key" / "module:key:level" tokens.
	KindList InputKind = "list"
	// KindLegacy is the old nested object keyed by the administrator or
	// manager role-name sentinels.
	KindLegacy InputKind = "legacy"
	// KindStandard is an already-canonical Permission Object.
	KindStandard InputKind = "standard"
)

// Input is the tagged union accepted at the API boundary.
type Input struct {
	Kind  InputKind       `json:"kind"`
	Value json.RawMessage `json:"value"`
}

// Normalize converts any accepted input shape to the canonical Permission
// Object. Unknown kinds are an error, not a guess.
func (in Input) Normalize() (Set, error) {
	switch in.Kind {
	case KindList:
		var tokens []string
		if err := json.Unmarshal(in.Value, &tokens); err != nil {
			return nil, fmt.Errorf("decode permission list: %w", err)
		}
		return FromStringList(tokens), nil

	case KindLegacy:
		var legacy map[string]interface{}
		if err := json.Unmarshal(in.Value, &legacy); err != nil {
			return nil, fmt.Errorf("decode legacy permissions: %w", err)
		}
		return FromLegacy(legacy), nil

	case KindStandard:
		var set Set
		if err := json.Unmarshal(in.Value, &set); err != nil {
			return nil, fmt.Errorf("decode permission object: %w", err)
		}
		return Standardize(set), nil

	default:
		return nil, fmt.Errorf("unknown permission input kind %q", in.Kind)
	}
}

// FromStringList converts flat permission tokens to a canonical set.
// "module:key" enables a flag or grants full scope on an access key;
// "module:key:level" grants the named scope. Unknown tokens are skipped.
func FromStringList(tokens []string) Set {
	set := Default()
	for _, tok := range tokens {
		parts := strings.Split(tok, ":")
		switch len(parts) {
		case 2:
			module, key := parts[0], parts[1]
			if isFlagKey(module, key) {
				set[module][key] = true
			} else if isAccessKey(module, key) {
				set[module][key] = AccessAll
			}
		case 3:
			module, key := parts[0], parts[1]
			lvl := AccessLevel(parts[2])
			if isAccessKey(module, key) && lvl.Valid() {
				set[module][key] = lvl
			}
		}
	}
	return set
}

// ToStringList flattens a canonical set back to permission tokens. Flags
// emit "module:key" when true; access keys emit "module:key:level" for
// any level other than none. Output is sorted for stable round-trips.
func ToStringList(set Set) []string {
	var tokens []string
	for module, ms := range schema {
		for _, k := range ms.flags {
			if set.Flag(module, k) {
				tokens = append(tokens, module+":"+k)
			}
		}
		for _, k := range ms.access {
			if lvl := set.Access(module, k); lvl != AccessNone {
				tokens = append(tokens, module+":"+k+":"+string(lvl))
			}
		}
	}
	sort.Strings(tokens)
	return tokens
}

// FromLegacy converts the old nested object keyed by role-name sentinels.
// An administrator key wins over manager; anything else yields the
// default object.
func FromLegacy(legacy map[string]interface{}) Set {
	if truthy(legacy["administrator"]) {
		return Template(TemplateAdministrator)
	}
	if truthy(legacy["manager"]) {
		return Template(TemplateManager)
	}
	return Default()
}

// Standardize fills gaps in a submitted Permission Object against the
// canonical schema: missing modules and keys get the default value,
// unknown modules and keys are dropped, levels are validated.
func Standardize(in Set) Set {
	set := Default()
	if in == nil {
		return set
	}
	for module, ms := range schema {
		src, ok := in[module]
		if !ok {
			continue
		}
		for _, k := range ms.access {
			switch v := src[k].(type) {
			case AccessLevel:
				if v.Valid() {
					set[module][k] = v
				}
			case string:
				if lvl := AccessLevel(v); lvl.Valid() {
					set[module][k] = lvl
				}
			}
		}
		for _, k := range ms.flags {
			if b, ok := src[k].(bool); ok {
				set[module][k] = b
			}
		}
	}
	return set
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case map[string]interface{}:
		return len(t) > 0
	case string:
		return t != ""
	default:
		return false
	}
}
