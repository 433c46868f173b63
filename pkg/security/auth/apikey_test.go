package auth

import "testing"

func TestValidate(t *testing.T) {
	validator := NewAPIKeyValidator([]*APIKeyInfo{
		{Key: "sk-enabled", UserID: "user-1", Role: RoleAdmin, Enabled: true},
		{Key: "sk-disabled", UserID: "user-2", Enabled: false},
	})

	info, err := validator.Validate("sk-enabled")
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if info.UserID != "user-1" || info.Role != RoleAdmin {
		t.Errorf("unexpected info %+v", info)
	}

	if _, err := validator.Validate("sk-disabled"); err == nil {
		t.Error("Validate() expected error for disabled key")
	}
	if _, err := validator.Validate("sk-unknown"); err == nil {
		t.Error("Validate() expected error for unknown key")
	}
}

func TestAddRemove(t *testing.T) {
	validator := NewAPIKeyValidator(nil)

	validator.Add(&APIKeyInfo{Key: "sk-new", UserID: "user-3", Enabled: true})
	if _, err := validator.Validate("sk-new"); err != nil {
		t.Fatalf("Validate() after Add error = %v", err)
	}

	validator.Remove("sk-new")
	if _, err := validator.Validate("sk-new"); err == nil {
		t.Error("Validate() expected error after Remove")
	}

	if got := len(validator.List()); got != 0 {
		t.Errorf("List() returned %d keys, want 0", got)
	}
}
