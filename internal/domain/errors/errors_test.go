package errors

import (
	"errors"
	"testing"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"ErrDependencyNotSynced", ErrDependencyNotSynced, "parent entity not synced"},
		{"ErrUnknownEntityType", ErrUnknownEntityType, "unknown entity type"},
		{"ErrUnknownOperation", ErrUnknownOperation, "unknown operation"},
		{"ErrUnknownRemoteKind", ErrUnknownRemoteKind, "unknown remote entity kind"},
		{"ErrRemoteCall", ErrRemoteCall, "remote call failed"},
		{"ErrCollectionMissing", ErrCollectionMissing, "remote collection missing"},
		{"ErrDrainInProgress", ErrDrainInProgress, "drain already in progress"},
		{"ErrTaskNotFound", ErrTaskNotFound, "sync task not found"},
		{"ErrEntityNotFound", ErrEntityNotFound, "entity not found"},
		{"ErrTaskImmutable", ErrTaskImmutable, "completed task is immutable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSyncError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *SyncError
		want string
	}{
		{
			name: "with cause",
			err:  NewError(CodeDependency, "activity create blocked", ErrDependencyNotSynced),
			want: "[DEPENDENCY] activity create blocked: parent entity not synced",
		},
		{
			name: "without cause",
			err:  NewError(CodeStorage, "queue row missing", nil),
			want: "[STORAGE] queue row missing",
		},
		{
			name: "remote error",
			err:  NewError(CodeRemote, "create space", ErrRemoteCall),
			want: "[REMOTE] create space: remote call failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSyncError_Unwrap(t *testing.T) {
	cause := ErrTaskNotFound
	err := NewError(CodeStorage, "task lookup failed", cause)

	unwrapped := err.Unwrap()
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestSyncError_Unwrap_Nil(t *testing.T) {
	err := NewError(CodeMapping, "mapping failed", nil)

	unwrapped := err.Unwrap()
	if unwrapped != nil {
		t.Errorf("Unwrap() = %v, want nil", unwrapped)
	}
}

func TestNewError(t *testing.T) {
	err := NewError(CodeRemote, "remote call failed", ErrRemoteCall)

	if err.Code != CodeRemote {
		t.Errorf("Code = %v, want %v", err.Code, CodeRemote)
	}
	if err.Message != "remote call failed" {
		t.Errorf("Message = %v, want %v", err.Message, "remote call failed")
	}
	if err.Cause != ErrRemoteCall {
		t.Errorf("Cause = %v, want %v", err.Cause, ErrRemoteCall)
	}
	if err.Context == nil {
		t.Error("Context should be initialized, got nil")
	}
}

func TestWithContext(t *testing.T) {
	err := NewError(CodeDependency, "parent missing", nil)
	err = WithContext(err, "entity_type", "sub_program")
	err = WithContext(err, "entity_id", int64(9))

	if err.Context["entity_type"] != "sub_program" {
		t.Errorf("Context[entity_type] = %v, want %v", err.Context["entity_type"], "sub_program")
	}
	if err.Context["entity_id"] != int64(9) {
		t.Errorf("Context[entity_id] = %v, want 9", err.Context["entity_id"])
	}
}

func TestWithContext_NilContext(t *testing.T) {
	// Create error with nil context to test initialization
	err := &SyncError{
		Code:    CodeMapping,
		Message: "test",
		Context: nil,
	}

	err = WithContext(err, "key", "value")

	if err.Context == nil {
		t.Error("Context should be initialized after WithContext")
	}
	if err.Context["key"] != "value" {
		t.Errorf("Context[key] = %v, want %v", err.Context["key"], "value")
	}
}

func TestErrorsIs(t *testing.T) {
	wrapped := NewError(CodeDependency, "parent not synced", ErrDependencyNotSynced)

	if !errors.Is(wrapped, ErrDependencyNotSynced) {
		t.Error("errors.Is should return true for wrapped sentinel error")
	}

	if errors.Is(wrapped, ErrRemoteCall) {
		t.Error("errors.Is should return false for different sentinel error")
	}
}

func TestErrorsAs(t *testing.T) {
	wrapped := NewError(CodeRemote, "API error", ErrRemoteCall)

	var syncErr *SyncError
	if !errors.As(wrapped, &syncErr) {
		t.Error("errors.As should return true for SyncError")
	}

	if syncErr.Code != CodeRemote {
		t.Errorf("Code = %v, want %v", syncErr.Code, CodeRemote)
	}
}

func TestErrorCodes(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{CodeDependency, "DEPENDENCY"},
		{CodeMapping, "MAPPING"},
		{CodeRemote, "REMOTE"},
		{CodeStorage, "STORAGE"},
		{CodeConfig, "CONFIG"},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if string(tt.code) != tt.want {
				t.Errorf("got %q, want %q", string(tt.code), tt.want)
			}
		})
	}
}

func TestChainedContext(t *testing.T) {
	err := NewError(CodeDependency, "create blocked", ErrDependencyNotSynced)
	err = WithContext(err, "entity_type", "component")
	err = WithContext(err, "entity_id", int64(12))
	err = WithContext(err, "parent_type", "sub_program")

	if len(err.Context) != 3 {
		t.Errorf("Context length = %d, want 3", len(err.Context))
	}
	if err.Context["entity_type"] != "component" {
		t.Errorf("Context[entity_type] = %v, want component", err.Context["entity_type"])
	}
	if err.Context["entity_id"] != int64(12) {
		t.Errorf("Context[entity_id] = %v, want 12", err.Context["entity_id"])
	}
	if err.Context["parent_type"] != "sub_program" {
		t.Errorf("Context[parent_type] = %v, want sub_program", err.Context["parent_type"])
	}
}
