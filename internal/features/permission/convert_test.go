package permission

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestNormalizeKinds(t *testing.T) {
	tests := []struct {
		name    string
		input   Input
		check   func(t *testing.T, set Set)
		wantErr bool
	}{
		{
			name:  "list kind",
			input: Input{Kind: KindList, Value: json.RawMessage(`["sales:view","sales:applyDiscounts","inventory:edit:department"]`)},
			check: func(t *testing.T, set Set) {
				if got := set.Access("sales", "view"); got != AccessAll {
					t.Errorf("sales.view: expected all, got %s", got)
				}
				if !set.Flag("sales", "applyDiscounts") {
					t.Error("sales.applyDiscounts: expected true")
				}
				if got := set.Access("inventory", "edit"); got != AccessDepartment {
					t.Errorf("inventory.edit: expected department, got %s", got)
				}
			},
		},
		{
			name:  "legacy administrator",
			input: Input{Kind: KindLegacy, Value: json.RawMessage(`{"administrator": true}`)},
			check: func(t *testing.T, set Set) {
				if !reflect.DeepEqual(set, Template(TemplateAdministrator)) {
					t.Error("administrator sentinel should yield the administrator template")
				}
			},
		},
		{
			name:  "legacy manager",
			input: Input{Kind: KindLegacy, Value: json.RawMessage(`{"manager": {"anything": true}}`)},
			check: func(t *testing.T, set Set) {
				if !reflect.DeepEqual(set, Template(TemplateManager)) {
					t.Error("manager sentinel should yield the manager template")
				}
			},
		},
		{
			name:  "legacy unrecognized",
			input: Input{Kind: KindLegacy, Value: json.RawMessage(`{"cashier": true}`)},
			check: func(t *testing.T, set Set) {
				if !reflect.DeepEqual(set, Default()) {
					t.Error("unrecognized legacy keys should yield the default object")
				}
			},
		},
		{
			name:  "standard kind",
			input: Input{Kind: KindStandard, Value: json.RawMessage(`{"sales": {"view": "self", "applyDiscounts": true}}`)},
			check: func(t *testing.T, set Set) {
				if got := set.Access("sales", "view"); got != AccessSelf {
					t.Errorf("sales.view: expected self, got %s", got)
				}
				if !set.Flag("sales", "applyDiscounts") {
					t.Error("sales.applyDiscounts: expected true")
				}
				// Gaps get filled from the default.
				if got := set.Access("staff", "view"); got != AccessNone {
					t.Errorf("staff.view: expected none, got %s", got)
				}
			},
		},
		{
			name:    "unknown kind",
			input:   Input{Kind: "guess", Value: json.RawMessage(`{}`)},
			wantErr: true,
		},
		{
			name:    "malformed list payload",
			input:   Input{Kind: KindList, Value: json.RawMessage(`{"not":"a list"}`)},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := tt.input.Normalize()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			tt.check(t, set)
		})
	}
}

func TestStringListRoundTrip(t *testing.T) {
	tokens := []string{
		"inventory:adjustStock",
		"inventory:view:all",
		"sales:applyDiscounts",
		"sales:edit:self",
		"sales:view:department",
	}

	set := FromStringList(tokens)
	got := ToStringList(set)

	if !reflect.DeepEqual(got, tokens) {
		t.Errorf("round trip mismatch:\n in: %v\nout: %v", tokens, got)
	}
}

func TestFromStringListSkipsUnknownTokens(t *testing.T) {
	set := FromStringList([]string{
		"warehouse:view",       // unknown module
		"sales:teleport",       // unknown key
		"sales:view:imaginary", // invalid level
		"sales:view:self",
	})

	if got := set.Access("sales", "view"); got != AccessSelf {
		t.Errorf("sales.view: expected self, got %s", got)
	}
	if _, ok := set["warehouse"]; ok {
		t.Error("unknown module should not be created")
	}
	if !reflect.DeepEqual(ToStringList(set), []string{"sales:view:self"}) {
		t.Errorf("unexpected tokens: %v", ToStringList(set))
	}
}

func TestStandardizeDropsUnknownAndInvalid(t *testing.T) {
	in := Set{
		"sales": Module{
			"view":     "all",
			"teleport": true,    // unknown key
			"edit":     "wrong", // invalid level
		},
		"warehouse": Module{"view": "all"}, // unknown module
	}

	set := Standardize(in)

	if got := set.Access("sales", "view"); got != AccessAll {
		t.Errorf("sales.view: expected all, got %s", got)
	}
	if got := set.Access("sales", "edit"); got != AccessNone {
		t.Errorf("sales.edit: expected none, got %s", got)
	}
	if _, ok := set["warehouse"]; ok {
		t.Error("unknown module survived standardization")
	}
	if _, ok := set["sales"]["teleport"]; ok {
		t.Error("unknown key survived standardization")
	}
}

func TestStandardizeNilYieldsDefault(t *testing.T) {
	if !reflect.DeepEqual(Standardize(nil), Default()) {
		t.Error("nil input should standardize to the default object")
	}
}
