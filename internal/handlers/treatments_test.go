package handlers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dentia/clinic-api/internal/models"
)

func TestTreatmentResponseStatus(t *testing.T) {
	tests := []struct {
		internal models.TreatmentStatus
		public   string
	}{
		{models.TreatmentScheduled, "pending"},
		{models.TreatmentInProgress, "pending"},
		{models.TreatmentCompleted, "completed"},
		{models.TreatmentCancelled, "cancelled"},
	}

	for _, tt := range tests {
		treatment := &models.Treatment{
			ID:            uuid.New(),
			Status:        tt.internal,
			TreatmentDate: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
			PriceCents:    150_000,
		}

		data, err := json.Marshal(toTreatmentResponse(treatment))
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		var out map[string]any
		if err := json.Unmarshal(data, &out); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if out["status"] != tt.public {
			t.Errorf("status for %s = %v, want %s", tt.internal, out["status"], tt.public)
		}
		if out["price_cents"] != float64(150_000) {
			t.Errorf("price_cents = %v", out["price_cents"])
		}
	}
}
