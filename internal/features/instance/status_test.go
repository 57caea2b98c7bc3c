package instance

import "testing"

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		name string
		from InstanceStatus
		to   InstanceStatus
		want bool
	}{
		{"Draft To Processing", StatusDraft, StatusProcessing, true},
		{"Processing To Completed", StatusProcessing, StatusCompleted, true},
		{"Processing To Error", StatusProcessing, StatusError, true},
		{"Completed To Exported", StatusCompleted, StatusExported, true},
		{"Error Retry", StatusError, StatusProcessing, true},
		{"Draft To Completed", StatusDraft, StatusCompleted, false},
		{"Draft To Exported", StatusDraft, StatusExported, false},
		{"Completed To Processing", StatusCompleted, StatusProcessing, false},
		{"Exported Is Terminal", StatusExported, StatusProcessing, false},
		{"Exported To Error", StatusExported, StatusError, false},
		{"Error To Completed", StatusError, StatusCompleted, false},
		{"Unknown Status", InstanceStatus("ARCHIVED"), StatusProcessing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}

			err := ValidateTransition(tt.from, tt.to)
			if tt.want && err != nil {
				t.Errorf("ValidateTransition() unexpected error: %v", err)
			}
			if !tt.want && err == nil {
				t.Errorf("ValidateTransition() accepted %s -> %s", tt.from, tt.to)
			}
		})
	}
}

func TestEditableAndDeletable(t *testing.T) {
	editable := map[InstanceStatus]bool{
		StatusDraft:      true,
		StatusError:      true,
		StatusProcessing: false,
		StatusCompleted:  false,
		StatusExported:   false,
	}
	for status, want := range editable {
		if got := status.IsEditable(); got != want {
			t.Errorf("IsEditable(%s) = %v, want %v", status, got, want)
		}
	}

	for _, status := range []InstanceStatus{StatusProcessing, StatusCompleted, StatusExported, StatusError} {
		if status.IsDeletable() {
			t.Errorf("IsDeletable(%s) = true, want false", status)
		}
	}
	if !StatusDraft.IsDeletable() {
		t.Error("IsDeletable(DRAFT) = false, want true")
	}
}
